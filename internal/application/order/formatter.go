// Package order turns a cart into the text message a customer sends to the
// store, and into the deep-link that opens the messaging app with it.
package order

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hapkiduki/apnacart/internal/domain/entity"
)

// ErrEmptyCart is returned when rendering a cart that has no lines.
var ErrEmptyCart = errors.New("cart is empty")

const (
	defaultStoreName = "ApnaCart"
	defaultPhone     = "919100018181"
	whatsAppBaseURL  = "https://wa.me/"
)

// Options configures a Formatter.
type Options struct {
	// StoreName appears in the message title.
	StoreName string

	// WhatsAppNumber is the store's number in international format, digits only.
	WhatsAppNumber string

	// Closing is the last line of the message.
	Closing string
}

// Formatter renders order messages.
type Formatter struct {
	storeName string
	phone     string
	closing   string
}

// Handoff is a rendered order ready to be sent.
type Handoff struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// NewFormatter creates a Formatter. Empty options take the storefront defaults.
func NewFormatter(opts Options) *Formatter {
	f := &Formatter{
		storeName: defaultStoreName,
		phone:     defaultPhone,
		closing:   "Please confirm this order and provide delivery details.",
	}
	if opts.StoreName != "" {
		f.storeName = opts.StoreName
	}
	if phone := digitsOnly(opts.WhatsAppNumber); phone != "" {
		f.phone = phone
	}
	if opts.Closing != "" {
		f.closing = opts.Closing
	}
	return f
}

// Render produces the order summary for a cart.
// Lines appear in the order they were first added.
//
// Parameters:
//   - cart: the cart to summarise
//
// Returns:
//   - string: the multi-line message
//   - error: entity.ErrNoCartSelected or ErrEmptyCart
func (f *Formatter) Render(cart *entity.Cart) (string, error) {
	if !cart.Size().IsSet() {
		return "", entity.ErrNoCartSelected
	}
	if cart.IsEmpty() {
		return "", ErrEmptyCart
	}

	label := cart.Policy().Label(cart.Size())
	total := cart.TotalWeight().Total()
	lines := cart.Lines()

	var b strings.Builder
	fmt.Fprintf(&b, "🛒 *%s Order*\n\n", f.storeName)
	fmt.Fprintf(&b, "*Cart Type:* %s\n", label)
	fmt.Fprintf(&b, "*Total Weight:* %s\n", total)
	fmt.Fprintf(&b, "*Items Count:* %d\n\n", cart.ItemCount())

	b.WriteString("*Selected Vegetables:*\n")
	for _, line := range lines {
		b.WriteString(FormatLine(line))
		b.WriteByte('\n')
	}

	b.WriteString("\n*Order Summary:*\n")
	fmt.Fprintf(&b, "• Cart Type: %s\n", label)
	fmt.Fprintf(&b, "• Total Weight: %s\n", total)
	fmt.Fprintf(&b, "• Items: %d\n", len(lines))
	fmt.Fprintf(&b, "• Individual Items: %d\n\n", cart.ItemCount())
	b.WriteString(f.closing)

	return b.String(), nil
}

// Handoff renders the message and builds the wa.me deep-link carrying it.
func (f *Formatter) Handoff(cart *entity.Cart) (Handoff, error) {
	msg, err := f.Render(cart)
	if err != nil {
		return Handoff{}, err
	}
	return Handoff{Message: msg, URL: f.Link(msg)}, nil
}

// Link returns the deep-link that opens a chat with the store prefilled with text.
func (f *Formatter) Link(text string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return whatsAppBaseURL + f.phone + "?text=" + escaped
}

// FormatLine renders one cart line as "<name> – <weight> x<quantity>".
func FormatLine(line entity.CartLine) string {
	return fmt.Sprintf("%s – %s x%d", line.Item.Name, line.WeightToken, line.Quantity)
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
