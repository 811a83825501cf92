package entity

import (
	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
)

// PricePolicy maps cart sizes to the flat price of the cart.
type PricePolicy map[CartSize]valueobject.Money

// DefaultPricePolicy returns the storefront's standard prices.
func DefaultPricePolicy() PricePolicy {
	return PricePolicy{
		CartSizeSmall:  valueobject.NewMoney(34900, valueobject.CurrencyINR),
		CartSizeFamily: valueobject.NewMoney(55900, valueobject.CurrencyINR),
	}
}

// NewPricePolicy builds a policy from major-unit prices. Non-positive
// prices keep the default amount in the given currency.
//
// Parameters:
//   - small: price of the small cart, e.g. 349
//   - family: price of the family cart, e.g. 559
//   - currency: ISO 4217 code; empty means INR
//
// Returns:
//   - PricePolicy: the policy
//   - error: valueobject.ErrInvalidCurrency for an unknown currency
func NewPricePolicy(small, family float64, currency string) (PricePolicy, error) {
	cur, err := valueobject.ParseCurrency(currency)
	if err != nil {
		return nil, err
	}

	policy := PricePolicy{}
	for size, amount := range map[CartSize]float64{CartSizeSmall: small, CartSizeFamily: family} {
		if amount <= 0 {
			policy[size] = valueobject.NewMoney(DefaultPricePolicy()[size].Amount, cur)
			continue
		}
		price, err := valueobject.NewMoneyFromMajor(amount, cur)
		if err != nil {
			return nil, err
		}
		policy[size] = price
	}
	return policy, nil
}

// PriceFor returns the price of a cart size and whether it has one.
func (p PricePolicy) PriceFor(size CartSize) (valueobject.Money, bool) {
	price, ok := p[size]
	return price, ok
}

// CartPlan describes one selectable cart size.
type CartPlan struct {
	Size     CartSize
	Label    string
	Capacity valueobject.Weight
	Price    valueobject.Money
	HasPrice bool
}

// Plans lists the selectable cart sizes, smallest first.
func Plans(capacity CapacityPolicy, prices PricePolicy) []CartPlan {
	sizes := []CartSize{CartSizeSmall, CartSizeFamily}
	plans := make([]CartPlan, 0, len(sizes))
	for _, size := range sizes {
		price, ok := prices.PriceFor(size)
		plans = append(plans, CartPlan{
			Size:     size,
			Label:    capacity.Label(size),
			Capacity: capacity.CapacityFor(size),
			Price:    price,
			HasPrice: ok,
		})
	}
	return plans
}
