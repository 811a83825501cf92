// Package valueobject contains value objects that represent concepts without identity.
// Value objects are immutable and compared by their attributes rather than identity.
// They encapsulate validation logic and ensure data integrity.
//
// Value Objects follow these principles:
//   - Immutability: Once created, they cannot be changed.
//   - Equality: Two value objects are equal if all their attributes are equal.
//   - Self-validation: They validate their own data upon creation.
//   - Side-effect free: Methods returns new instances rather than modifying state
package valueobject

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Weight errors define domain-specific error conditions.
var (
	ErrInvalidWeightToken = errors.New("invalid weight token")
	ErrInvalidWeightValue = errors.New("invalid weight value")
)

// weightTokenPattern matches tokens such as "250g", "1kg" or "1.5kg".
var weightTokenPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)(g|kg)$`)

// gramsPerKilogram is the canonical conversion factor.
var gramsPerKilogram = decimal.NewFromInt(1000)

// ToGrams converts a weight token to whole grams.
// Gram tokens are rounded to the nearest gram and kilogram tokens are
// multiplied by 1000 before rounding.
//
// Parameters:
//   - token: Weight string like "250g", "1kg", "500g"
//
// Returns:
//   - int: Weight in grams
//   - error: ErrInvalidWeightToken if the token does not match the grammar
func ToGrams(token string) (int, error) {
	match := weightTokenPattern.FindStringSubmatch(token)
	if match == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeightToken, token)
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeightToken, token)
	}

	if match[2] == "kg" {
		value *= 1000
	}
	return int(math.Round(value)), nil
}

// GramsToKg converts grams to kilograms.
func GramsToKg(grams int) float64 {
	return float64(grams) / 1000
}

// FormatWeight formats a weight in kilograms for display.
// Weights of 1kg and above are shown in kilograms with at most two decimals
// and no trailing zeros (2kg, 1.75kg); lighter weights are shown in whole
// grams (250g).
//
// Parameters:
//   - kg: Weight in kilograms
//
// Returns:
//   - string: Formatted weight
func FormatWeight(kg float64) string {
	grams := int64(math.Round(kg * 1000))
	if grams >= 1000 {
		return decimal.New(grams, -3).Round(2).String() + "kg"
	}
	return fmt.Sprintf("%dg", grams)
}

// FormatTotal formats a weight in kilograms for cart totals.
// Unlike FormatWeight it never switches to grams: the value is rounded to
// maxDecimals and trailing zeros are trimmed (0.5kg, 4kg).
//
// Parameters:
//   - kg: Weight in kilograms
//   - maxDecimals: Maximum decimal places
//
// Returns:
//   - string: Formatted total
func FormatTotal(kg float64, maxDecimals int) string {
	return formatTotal(decimal.NewFromFloat(kg), maxDecimals)
}

// FormatFixed formats a weight in kilograms with exactly the given number of
// decimals (4.00kg).
func FormatFixed(kg float64, decimals int) string {
	return decimal.NewFromFloat(kg).StringFixed(int32(decimals)) + "kg"
}

func formatTotal(kg decimal.Decimal, maxDecimals int) string {
	rounded := kg.Round(int32(maxDecimals))
	if rounded.IsZero() {
		// avoids "-0kg"
		return "0kg"
	}
	return rounded.String() + "kg"
}

// WeightToken is one of the fixed pack sizes a vegetable is sold in.
type WeightToken string

// Supported weight tokens.
const (
	Token250g WeightToken = "250g"
	Token500g WeightToken = "500g"
	Token1kg  WeightToken = "1kg"
)

// tokenGrams is the single conversion table for weight tokens.
var tokenGrams = map[WeightToken]int{
	Token250g: 250,
	Token500g: 500,
	Token1kg:  1000,
}

// SupportedWeightTokens returns the weight tokens in ascending order.
func SupportedWeightTokens() []WeightToken {
	return []WeightToken{Token250g, Token500g, Token1kg}
}

// ParseWeightToken validates a raw token against the supported set.
// Surrounding whitespace and letter case are ignored.
//
// Parameters:
//   - raw: Raw token, e.g. "500g"
//
// Returns:
//   - WeightToken: The parsed token
//   - error: ErrInvalidWeightToken if the token is not supported
func ParseWeightToken(raw string) (WeightToken, error) {
	token := WeightToken(strings.ToLower(strings.TrimSpace(raw)))
	if !token.IsValid() {
		return "", fmt.Errorf("%w: %q (supported: 250g, 500g, 1kg)", ErrInvalidWeightToken, raw)
	}
	return token, nil
}

// IsValid reports whether the token belongs to the supported set.
func (t WeightToken) IsValid() bool {
	_, ok := tokenGrams[t]
	return ok
}

// Grams returns the token weight in grams, or 0 for unsupported tokens.
func (t WeightToken) Grams() int {
	return tokenGrams[t]
}

// Weight returns the token weight as a Weight value.
func (t WeightToken) Weight() Weight {
	return NewWeightFromGrams(t.Grams())
}

// String implements fmt.Stringer.
func (t WeightToken) String() string {
	return string(t)
}

// Weight represents a mass in kilograms.
// It stores an exact decimal so that sums of pack weights never drift.
//
// Example usage:
//
//	pack := valueobject.NewWeightFromGrams(250)
//	total := pack.Mul(3) // 0.75kg
type Weight struct {
	kg decimal.Decimal
}

// NewWeightFromKg creates a Weight from a kilogram value.
func NewWeightFromKg(kg float64) Weight {
	return Weight{kg: decimal.NewFromFloat(kg)}
}

// NewWeightFromGrams creates a Weight from whole grams.
func NewWeightFromGrams(grams int) Weight {
	return Weight{kg: decimal.New(int64(grams), -3)}
}

// ParseWeight creates a Weight from a token ("500g") or a plain kilogram
// number ("0.5").
//
// Returns:
//   - Weight: the parsed weight
//   - error: ErrInvalidWeightValue if the input is neither
func ParseWeight(raw string) (Weight, error) {
	raw = strings.TrimSpace(raw)
	if grams, err := ToGrams(raw); err == nil {
		return NewWeightFromGrams(grams), nil
	}
	kg, err := decimal.NewFromString(raw)
	if err != nil {
		return Weight{}, fmt.Errorf("%w: %q", ErrInvalidWeightValue, raw)
	}
	return Weight{kg: kg}, nil
}

// ZeroWeight returns a zero Weight.
func ZeroWeight() Weight {
	return Weight{kg: decimal.Zero}
}

// Add returns the sum of two weights.
func (w Weight) Add(other Weight) Weight {
	return Weight{kg: w.kg.Add(other.kg)}
}

// Sub returns the difference of two weights.
func (w Weight) Sub(other Weight) Weight {
	return Weight{kg: w.kg.Sub(other.kg)}
}

// Mul multiplies the weight by a whole factor.
func (w Weight) Mul(factor int) Weight {
	return Weight{kg: w.kg.Mul(decimal.NewFromInt(int64(factor)))}
}

// Cmp compares two weights and returns -1, 0 or +1.
func (w Weight) Cmp(other Weight) int {
	return w.kg.Cmp(other.kg)
}

// Equal reports whether both weights are the same mass.
func (w Weight) Equal(other Weight) bool {
	return w.kg.Equal(other.kg)
}

// GreaterThan reports whether w > other.
func (w Weight) GreaterThan(other Weight) bool {
	return w.kg.GreaterThan(other.kg)
}

// GreaterThanOrEqual reports whether w >= other.
func (w Weight) GreaterThanOrEqual(other Weight) bool {
	return w.kg.GreaterThanOrEqual(other.kg)
}

// IsZero reports whether the weight is zero.
func (w Weight) IsZero() bool {
	return w.kg.IsZero()
}

// IsPositive reports whether the weight is strictly positive.
func (w Weight) IsPositive() bool {
	return w.kg.IsPositive()
}

// Kilograms returns the weight as a float64 number of kilograms.
func (w Weight) Kilograms() float64 {
	return w.kg.InexactFloat64()
}

// Grams returns the weight rounded to whole grams.
func (w Weight) Grams() int {
	return int(w.kg.Mul(gramsPerKilogram).Round(0).IntPart())
}

// String formats the weight with FormatWeight rules (250g, 1.75kg).
func (w Weight) String() string {
	return FormatWeight(w.Kilograms())
}

// Total formats the weight with FormatTotal rules and two decimals (0.5kg).
func (w Weight) Total() string {
	return formatTotal(w.kg, 2)
}

// Fixed formats the weight in kilograms with exactly the given decimals.
func (w Weight) Fixed(decimals int) string {
	return w.kg.StringFixed(int32(decimals)) + "kg"
}

// MarshalJSON encodes the weight as a JSON number of kilograms.
func (w Weight) MarshalJSON() ([]byte, error) {
	return []byte(w.kg.String()), nil
}

// UnmarshalJSON decodes a JSON number (or numeric string) of kilograms.
func (w *Weight) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		*w = ZeroWeight()
		return nil
	}
	kg, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidWeightValue, raw)
	}
	w.kg = kg
	return nil
}
