// Package entity contains the core bussiness entities of the domain layer.
package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
)

// Vegetable errors define domain-specific error conditions for catalog items.
var (
	ErrInvalidVegetableName   = errors.New("vegetable name cannot be empty")
	ErrInvalidVegetableWeight = errors.New("vegetable weight must be one of 250g, 500g or 1kg")
	ErrVegetableNameTooLong   = errors.New("vegetable name cannot exceed 120 characters")
)

// maxVegetableNameLength bounds names stored in the catalog.
const maxVegetableNameLength = 120

// Vegetable is a catalog item sold in a fixed pack weight.
type Vegetable struct {
	// ID is the unique identifier assigned by the catalog store
	ID int `json:"id"`

	// Name is the display name of the vegetable
	Name string `json:"name"`

	// FixedWeight is the pack size the vegetable is sold in
	FixedWeight valueobject.WeightToken `json:"fixedWeight"`

	// ImageURL is the image shown for the vegetable, if any
	ImageURL string `json:"imageUrl,omitempty"`

	// CreatedAt is the timestamp when the vegetable was created
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp when the vegetable was last updated
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewVegetable creates a new Vegetable with the provided details.
// The name is trimmed; the ID is assigned later by the repository.
//
// Parameters:
//   - name: Name of the vegetable (required)
//   - weight: Pack weight token (required, supported token)
//   - imageURL: Image URL or path (optional)
//
// Returns:
//   - *Vegetable: newly created Vegetable
//   - error: Validation error if input is invalid
func NewVegetable(name string, weight valueobject.WeightToken, imageURL string) (*Vegetable, error) {
	name = strings.TrimSpace(name)
	if err := validateVegetable(name, weight); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Vegetable{
		Name:        name,
		FixedWeight: weight,
		ImageURL:    strings.TrimSpace(imageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateDetails replaces the vegetable's editable fields.
//
// Parameters:
//   - name: new name (required)
//   - weight: new pack weight (required)
//   - imageURL: new image URL (empty clears it)
//
// Returns:
//   - error: Validation error if input is invalid
func (v *Vegetable) UpdateDetails(name string, weight valueobject.WeightToken, imageURL string) error {
	name = strings.TrimSpace(name)
	if err := validateVegetable(name, weight); err != nil {
		return err
	}
	v.Name = name
	v.FixedWeight = weight
	v.ImageURL = strings.TrimSpace(imageURL)
	v.UpdatedAt = time.Now().UTC()
	return nil
}

// SetImageURL links an image to the vegetable.
func (v *Vegetable) SetImageURL(imageURL string) {
	v.ImageURL = strings.TrimSpace(imageURL)
	v.UpdatedAt = time.Now().UTC()
}

// PackWeight returns the weight of a single pack.
func (v *Vegetable) PackWeight() valueobject.Weight {
	return v.FixedWeight.Weight()
}

// HasImage reports whether an image is linked.
func (v *Vegetable) HasImage() bool {
	return v.ImageURL != ""
}

func validateVegetable(name string, weight valueobject.WeightToken) error {
	if name == "" {
		return ErrInvalidVegetableName
	}
	if len(name) > maxVegetableNameLength {
		return ErrVegetableNameTooLong
	}
	if !weight.IsValid() {
		return ErrInvalidVegetableWeight
	}
	return nil
}
