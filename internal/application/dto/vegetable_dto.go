package dto

import (
	"time"

	"github.com/hapkiduki/apnacart/internal/domain/entity"
)

// CreateVegetableRequest is the payload for adding a vegetable to the catalog.
type CreateVegetableRequest struct {
	// Name is the display name, e.g. "Tomato".
	Name string `json:"name"`

	// WeightUnit is the pack size: 250g, 500g or 1kg.
	WeightUnit string `json:"weightUnit"`

	// ImageURL is optional; when empty the image is linked automatically.
	ImageURL string `json:"imageUrl,omitempty"`
}

// Validate reports missing fields the way the admin form expects.
func (r CreateVegetableRequest) Validate() []ValidationError {
	var errs []ValidationError
	if r.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "Name is required"})
	}
	if r.WeightUnit == "" {
		errs = append(errs, ValidationError{Field: "weightUnit", Message: "Weight unit is required"})
	}
	return errs
}

// UpdateVegetableRequest is the payload for editing a vegetable.
type UpdateVegetableRequest = CreateVegetableRequest

// VegetableResponse is a catalog entry as returned by the API.
type VegetableResponse struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	WeightUnit string    `json:"weightUnit"`
	WeightKg   float64   `json:"weightKg"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewVegetableResponse maps an entity to its response shape.
func NewVegetableResponse(v *entity.Vegetable) VegetableResponse {
	return VegetableResponse{
		ID:         v.ID,
		Name:       v.Name,
		WeightUnit: v.FixedWeight.String(),
		WeightKg:   v.PackWeight().Kilograms(),
		ImageURL:   v.ImageURL,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

// NewVegetableResponses maps a slice of entities.
func NewVegetableResponses(vs []*entity.Vegetable) []VegetableResponse {
	out := make([]VegetableResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, NewVegetableResponse(v))
	}
	return out
}

// ListVegetablesQuery holds the list filters accepted by the API.
type ListVegetablesQuery struct {
	Search string
	Weight string
	Limit  int
	Offset int
}

// DatabaseStatus reports the catalog size for the setup endpoint.
type DatabaseStatus struct {
	Count   int64  `json:"count"`
	Message string `json:"message"`
}

// ImageLinkResult describes one vegetable touched by an image relink.
type ImageLinkResult struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	OldImage string `json:"oldImage,omitempty"`
	NewImage string `json:"newImage"`
	Changed  bool   `json:"changed"`
}
