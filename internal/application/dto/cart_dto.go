package dto

import (
	"time"

	"github.com/hapkiduki/apnacart/internal/domain/entity"
	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
)

// SelectSizeRequest chooses the cart size.
type SelectSizeRequest struct {
	Size string `json:"size"`
}

// AddItemRequest adds one pack of a catalog vegetable.
type AddItemRequest struct {
	VegetableID int `json:"vegetableId"`
}

// UpdateQuantityRequest sets the number of packs for a line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartLineResponse is one cart line.
type CartLineResponse struct {
	VegetableID int     `json:"vegetableId"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Weight      string  `json:"weight"`
	UnitWeight  float64 `json:"unitWeightKg"`
	Quantity    int     `json:"quantity"`
	LineWeight  string  `json:"lineWeight"`
}

// CartResponse is the full cart view.
type CartResponse struct {
	ID          string             `json:"id"`
	Size        string             `json:"size"`
	Label       string             `json:"label"`
	Capacity    float64            `json:"capacityKg"`
	TotalWeight float64            `json:"totalWeightKg"`
	Total       string             `json:"total"`
	Remaining   string             `json:"remaining"`
	AtCapacity  bool               `json:"atCapacity"`
	ItemCount   int                `json:"itemCount"`
	Price       *PriceResponse     `json:"price,omitempty"`
	Lines       []CartLineResponse `json:"lines"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// NewCartResponse maps a cart to its response shape.
func NewCartResponse(c *entity.Cart) CartResponse {
	lines := c.Lines()
	out := CartResponse{
		ID:          c.ID().String(),
		Size:        string(c.Size()),
		Label:       c.Policy().Label(c.Size()),
		Capacity:    c.Capacity().Kilograms(),
		TotalWeight: c.TotalWeight().Kilograms(),
		Total:       c.TotalWeight().Total(),
		Remaining:   c.RemainingWeight(),
		AtCapacity:  c.IsAtCapacity(),
		ItemCount:   c.ItemCount(),
		Lines:       make([]CartLineResponse, 0, len(lines)),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, CartLineResponse{
			VegetableID: l.ID,
			Name:        l.Item.Name,
			ImageURL:    l.Item.ImageURL,
			Weight:      l.WeightToken.String(),
			UnitWeight:  l.UnitWeight.Kilograms(),
			Quantity:    l.Quantity,
			LineWeight:  l.LineWeight().String(),
		})
	}
	return out
}

// CapacityCheckResponse answers whether a weight still fits.
type CapacityCheckResponse struct {
	Weight      string `json:"weight"`
	CanAdd      bool   `json:"canAdd"`
	WouldExceed bool   `json:"wouldExceed"`
	Remaining   string `json:"remaining"`
}

// CheckoutResponse carries the rendered order and its deep-link.
type CheckoutResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// PriceResponse is a price in major units plus its display form.
type PriceResponse struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Display  string  `json:"display"`
}

// NewPriceResponse maps a Money value.
func NewPriceResponse(m valueobject.Money) *PriceResponse {
	return &PriceResponse{
		Amount:   m.Float(),
		Currency: string(m.Currency),
		Display:  m.Format(),
	}
}

// CartPlanResponse describes a selectable cart size.
type CartPlanResponse struct {
	Size       string         `json:"size"`
	Label      string         `json:"label"`
	CapacityKg float64        `json:"capacityKg"`
	Capacity   string         `json:"capacity"`
	Price      *PriceResponse `json:"price,omitempty"`
}

// NewCartPlanResponses maps cart plans.
func NewCartPlanResponses(plans []entity.CartPlan) []CartPlanResponse {
	out := make([]CartPlanResponse, 0, len(plans))
	for _, p := range plans {
		resp := CartPlanResponse{
			Size:       string(p.Size),
			Label:      p.Label,
			CapacityKg: p.Capacity.Kilograms(),
			Capacity:   p.Capacity.Total(),
		}
		if p.HasPrice {
			resp.Price = NewPriceResponse(p.Price)
		}
		out = append(out, resp)
	}
	return out
}
