package valueobject

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a monetary currency using ISO 4217 codes.
type Currency string

// Supported currencies in the system.
const (
	CurrencyINR Currency = "INR" // Indian Rupee
	CurrencyUSD Currency = "USD" // US Dollar
	CurrencyEUR Currency = "EUR" // Euro
	CurrencyGBP Currency = "GBP" // British Pound
	CurrencyAED Currency = "AED" // UAE Dirham
)

// Money errors define domain-specific error conditions.
var (
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrNegativeAmount  = errors.New("money amount cannot be negative")
)

var currencySymbols = map[Currency]string{
	CurrencyINR: "₹",
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencyGBP: "£",
	CurrencyAED: "AED ",
}

// ParseCurrency validates an ISO 4217 code. Empty input means INR.
func ParseCurrency(raw string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if c == "" {
		return CurrencyINR, nil
	}
	if _, ok := currencySymbols[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, raw)
	}
	return c, nil
}

// Money is a price in the smallest currency unit (paise for INR).
//
// Example usage:
//
//	price, _ := valueobject.NewMoneyFromMajor(349, valueobject.CurrencyINR)
//	price.Format() // "₹349"
type Money struct {
	// Amount in smallest currency unit (e.g., paise)
	Amount int64 `json:"amount"`

	// Currency using ISO 4217 code
	Currency Currency `json:"currency"`
}

// NewMoney creates a Money from minor units.
func NewMoney(amount int64, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

// NewMoneyFromMajor converts a major-unit amount (e.g. 349.50 rupees),
// rounding half away from zero to the nearest minor unit.
//
// Parameters:
//   - amount: amount in major units, not negative
//   - currency: ISO 4217 currency code
//
// Returns:
//   - Money: the price
//   - error: ErrNegativeAmount or ErrInvalidCurrency
func NewMoneyFromMajor(amount float64, currency Currency) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeAmount
	}
	if _, ok := currencySymbols[currency]; !ok {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	minor := decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
	return NewMoney(minor, currency), nil
}

// IsZero checks if the Money amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// Major returns the amount in major units.
func (m Money) Major() decimal.Decimal {
	return decimal.New(m.Amount, -2)
}

// Float returns the amount in major units as a float, for JSON responses.
func (m Money) Float() float64 {
	f, _ := m.Major().Float64()
	return f
}

// String returns a formatted string representation of the Money.
//
// Returns:
//   - string: Formatted string (e.g., "INR 349.00")
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Currency, m.Major().StringFixed(2))
}

// Format returns the money with its currency symbol. Whole amounts drop
// the decimals: "₹349", "₹349.50".
func (m Money) Format() string {
	symbol, ok := currencySymbols[m.Currency]
	if !ok {
		symbol = string(m.Currency) + " "
	}
	if m.Amount%100 == 0 {
		return symbol + m.Major().StringFixed(0)
	}
	return symbol + m.Major().StringFixed(2)
}
