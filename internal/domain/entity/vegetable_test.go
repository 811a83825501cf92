package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
)

func TestNewVegetable(t *testing.T) {
	v, err := NewVegetable("  Tomato ", valueobject.Token500g, " /images/Tomato.jpeg ")
	require.NoError(t, err)

	assert.Equal(t, "Tomato", v.Name)
	assert.Equal(t, valueobject.Token500g, v.FixedWeight)
	assert.Equal(t, "/images/Tomato.jpeg", v.ImageURL)
	assert.True(t, v.HasImage())
	assert.False(t, v.CreatedAt.IsZero())
	assert.Equal(t, 500, v.PackWeight().Grams())
}

func TestNewVegetableValidation(t *testing.T) {
	tests := []struct {
		name    string
		vegName string
		weight  valueobject.WeightToken
		wantErr error
	}{
		{name: "empty name", vegName: "   ", weight: valueobject.Token250g, wantErr: ErrInvalidVegetableName},
		{name: "long name", vegName: strings.Repeat("a", 121), weight: valueobject.Token250g, wantErr: ErrVegetableNameTooLong},
		{name: "bad weight", vegName: "Tomato", weight: "750g", wantErr: ErrInvalidVegetableWeight},
		{name: "empty weight", vegName: "Tomato", weight: "", wantErr: ErrInvalidVegetableWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVegetable(tt.vegName, tt.weight, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVegetableUpdateDetails(t *testing.T) {
	v, err := NewVegetable("Tomato", valueobject.Token500g, "/images/Tomato.jpeg")
	require.NoError(t, err)

	require.NoError(t, v.UpdateDetails("Cherry Tomato", valueobject.Token250g, ""))
	assert.Equal(t, "Cherry Tomato", v.Name)
	assert.Equal(t, valueobject.Token250g, v.FixedWeight)
	assert.False(t, v.HasImage())

	assert.ErrorIs(t, v.UpdateDetails("", valueobject.Token250g, ""), ErrInvalidVegetableName)
	assert.Equal(t, "Cherry Tomato", v.Name)

	v.SetImageURL("/images/default.jpeg")
	assert.Equal(t, "/images/default.jpeg", v.ImageURL)
}

func TestCapacityPolicy(t *testing.T) {
	policy := DefaultCapacityPolicy()

	assert.Equal(t, 4500, policy.CapacityFor(CartSizeSmall).Grams())
	assert.Equal(t, 7000, policy.CapacityFor(CartSizeFamily).Grams())
	assert.True(t, policy.CapacityFor(CartSizeUnset).IsZero())

	assert.Equal(t, "Small Cart (4.5kg)", policy.Label(CartSizeSmall))
	assert.Equal(t, "Family Cart (7kg)", policy.Label(CartSizeFamily))
	assert.Equal(t, "No Cart", policy.Label(CartSizeUnset))

	custom := NewCapacityPolicy(5, 0)
	assert.Equal(t, 5000, custom.CapacityFor(CartSizeSmall).Grams())
	assert.Equal(t, 7000, custom.CapacityFor(CartSizeFamily).Grams())
}

func TestParseCartSize(t *testing.T) {
	size, err := ParseCartSize(" Small ")
	require.NoError(t, err)
	assert.Equal(t, CartSizeSmall, size)

	size, err = ParseCartSize("family")
	require.NoError(t, err)
	assert.Equal(t, CartSizeFamily, size)

	size, err = ParseCartSize("")
	require.NoError(t, err)
	assert.False(t, size.IsSet())

	_, err = ParseCartSize("huge")
	assert.ErrorIs(t, err, ErrInvalidCartSize)
}
