package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
)

// ErrInvalidCartSize is returned when a cart size is not recognised.
var ErrInvalidCartSize = errors.New("invalid cart size")

// CartSize is the weight budget a customer picked for their cart.
type CartSize string

const (
	CartSizeUnset  CartSize = ""       // No cart selected yet
	CartSizeSmall  CartSize = "small"  // Small cart, 4.5kg
	CartSizeFamily CartSize = "family" // Family cart, 7kg
)

// ParseCartSize converts a raw value into a CartSize.
// Empty input parses to CartSizeUnset.
//
// Returns:
//   - CartSize: the parsed size
//   - error: ErrInvalidCartSize if the value is unknown
func ParseCartSize(raw string) (CartSize, error) {
	switch size := CartSize(strings.ToLower(strings.TrimSpace(raw))); size {
	case CartSizeUnset, CartSizeSmall, CartSizeFamily:
		return size, nil
	default:
		return CartSizeUnset, fmt.Errorf("%w: %q", ErrInvalidCartSize, raw)
	}
}

// IsSet reports whether a size has been chosen.
func (s CartSize) IsSet() bool {
	return s != CartSizeUnset
}

// Title returns the human readable cart name.
func (s CartSize) Title() string {
	switch s {
	case CartSizeSmall:
		return "Small Cart"
	case CartSizeFamily:
		return "Family Cart"
	default:
		return "No Cart"
	}
}

// CapacityPolicy maps cart sizes to their maximum total weight.
// Sizes missing from the table have no capacity.
type CapacityPolicy map[CartSize]valueobject.Weight

// DefaultCapacityPolicy returns the storefront's standard budgets.
func DefaultCapacityPolicy() CapacityPolicy {
	return CapacityPolicy{
		CartSizeSmall:  valueobject.NewWeightFromGrams(4500),
		CartSizeFamily: valueobject.NewWeightFromGrams(7000),
	}
}

// NewCapacityPolicy builds a policy from kilogram values, falling back to
// the defaults for non-positive inputs.
func NewCapacityPolicy(smallKg, familyKg float64) CapacityPolicy {
	policy := DefaultCapacityPolicy()
	if smallKg > 0 {
		policy[CartSizeSmall] = valueobject.NewWeightFromKg(smallKg)
	}
	if familyKg > 0 {
		policy[CartSizeFamily] = valueobject.NewWeightFromKg(familyKg)
	}
	return policy
}

// CapacityFor returns the weight budget of a cart size.
func (p CapacityPolicy) CapacityFor(size CartSize) valueobject.Weight {
	if capacity, ok := p[size]; ok {
		return capacity
	}
	return valueobject.ZeroWeight()
}

// Label returns the cart name with its capacity, e.g. "Small Cart (4.5kg)".
func (p CapacityPolicy) Label(size CartSize) string {
	if !size.IsSet() {
		return size.Title()
	}
	return fmt.Sprintf("%s (%s)", size.Title(), p.CapacityFor(size).Total())
}
