package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
)

// Cart errors define the conditions under which a cart mutation is refused.
// A refused mutation never changes the cart.
var (
	ErrNoCartSelected   = errors.New("no cart size selected")
	ErrCapacityExceeded = errors.New("cart weight limit would be exceeded")
	ErrItemNotInCart    = errors.New("item not in cart")
	ErrInvalidWeight    = errors.New("item weight must be positive")
)

// CartLine is one vegetable in the cart.
type CartLine struct {
	// ID is the vegetable ID; a cart holds at most one line per vegetable
	ID int `json:"id"`

	// Item is the vegetable as it was when first added
	Item Vegetable `json:"vegetable"`

	// WeightToken is the pack size this line is counted in
	WeightToken valueobject.WeightToken `json:"weight"`

	// UnitWeight is the weight of one pack
	UnitWeight valueobject.Weight `json:"weightInKg"`

	// Quantity is the number of packs, always >= 1
	Quantity int `json:"quantity"`
}

// LineWeight returns UnitWeight × Quantity.
func (l CartLine) LineWeight() valueobject.Weight {
	return l.UnitWeight.Mul(l.Quantity)
}

// Cart holds a customer's selection under a weight budget.
// The lines are the only source of truth; totals are derived from them.
//
// A Cart is not safe for concurrent use. Callers that share one across
// goroutines must serialise access.
type Cart struct {
	id        uuid.UUID
	size      CartSize
	policy    CapacityPolicy
	lines     map[int]*CartLine
	order     []int
	createdAt time.Time
	updatedAt time.Time
}

// NewCart creates an empty cart with no size selected.
//
// Parameters:
//   - policy: capacity table (nil uses DefaultCapacityPolicy)
//
// Returns:
//   - *Cart: the new cart
func NewCart(policy CapacityPolicy) *Cart {
	if policy == nil {
		policy = DefaultCapacityPolicy()
	}
	now := time.Now().UTC()
	return &Cart{
		id:        uuid.New(),
		size:      CartSizeUnset,
		policy:    policy,
		lines:     make(map[int]*CartLine),
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the cart identifier.
func (c *Cart) ID() uuid.UUID { return c.id }

// Size returns the selected cart size.
func (c *Cart) Size() CartSize { return c.size }

// Policy returns the capacity table the cart enforces.
func (c *Cart) Policy() CapacityPolicy { return c.policy }

// CreatedAt returns when the cart was created.
func (c *Cart) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns when the cart last changed.
func (c *Cart) UpdatedAt() time.Time { return c.updatedAt }

// SelectSize chooses a cart size and empties the cart.
// The cart is emptied even when size equals the current size.
//
// Parameters:
//   - size: the new cart size, case-insensitive (CartSizeUnset deselects)
//
// Returns:
//   - error: ErrInvalidCartSize if the size is unknown
func (c *Cart) SelectSize(size CartSize) error {
	parsed, err := ParseCartSize(string(size))
	if err != nil {
		return err
	}
	c.size = parsed
	c.reset()
	return nil
}

// Clear removes every line but keeps the selected size.
func (c *Cart) Clear() {
	c.reset()
}

func (c *Cart) reset() {
	c.lines = make(map[int]*CartLine)
	c.order = nil
	c.touch()
}

// AddItem adds one pack of a vegetable.
// If the vegetable is already in the cart its quantity grows by one and the
// line's weight basis is replaced by token and unitWeight.
//
// Parameters:
//   - item: the vegetable being added
//   - token: pack size token
//   - unitWeight: weight of one pack (must be positive)
//
// Returns:
//   - error: ErrNoCartSelected, ErrInvalidWeight or ErrCapacityExceeded
func (c *Cart) AddItem(item Vegetable, token valueobject.WeightToken, unitWeight valueobject.Weight) error {
	if !c.size.IsSet() {
		return ErrNoCartSelected
	}
	if !unitWeight.IsPositive() {
		return ErrInvalidWeight
	}

	total := c.TotalWeight()

	if existing, ok := c.lines[item.ID]; ok {
		quantity := existing.Quantity + 1
		candidate := total.Sub(existing.LineWeight()).Add(unitWeight.Mul(quantity))
		if candidate.GreaterThan(c.Capacity()) {
			return ErrCapacityExceeded
		}
		existing.WeightToken = token
		existing.UnitWeight = unitWeight
		existing.Quantity = quantity
		c.touch()
		return nil
	}

	if total.Add(unitWeight).GreaterThan(c.Capacity()) {
		return ErrCapacityExceeded
	}
	c.lines[item.ID] = &CartLine{
		ID:          item.ID,
		Item:        item,
		WeightToken: token,
		UnitWeight:  unitWeight,
		Quantity:    1,
	}
	c.order = append(c.order, item.ID)
	c.touch()
	return nil
}

// RemoveItem deletes the line for a vegetable.
//
// Returns:
//   - bool: false if the vegetable was not in the cart
func (c *Cart) RemoveItem(id int) bool {
	if _, ok := c.lines[id]; !ok {
		return false
	}
	delete(c.lines, id)
	for i, lineID := range c.order {
		if lineID == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.touch()
	return true
}

// UpdateQuantity sets the number of packs for a vegetable.
// A quantity of zero or less removes the line.
//
// Parameters:
//   - id: vegetable ID
//   - quantity: the new number of packs
//
// Returns:
//   - error: ErrItemNotInCart or ErrCapacityExceeded
func (c *Cart) UpdateQuantity(id, quantity int) error {
	line, ok := c.lines[id]
	if !ok {
		return ErrItemNotInCart
	}
	if quantity <= 0 {
		c.RemoveItem(id)
		return nil
	}

	candidate := c.TotalWeight().Sub(line.LineWeight()).Add(line.UnitWeight.Mul(quantity))
	if candidate.GreaterThan(c.Capacity()) {
		return ErrCapacityExceeded
	}
	line.Quantity = quantity
	c.touch()
	return nil
}

// Capacity returns the weight budget of the selected size.
func (c *Cart) Capacity() valueobject.Weight {
	return c.policy.CapacityFor(c.size)
}

// TotalWeight returns Σ UnitWeight × Quantity over all lines.
func (c *Cart) TotalWeight() valueobject.Weight {
	total := valueobject.ZeroWeight()
	for _, line := range c.lines {
		total = total.Add(line.LineWeight())
	}
	return total
}

// CanAdd reports whether weight fits in the remaining budget.
// It is always false when no size is selected.
func (c *Cart) CanAdd(weight valueobject.Weight) bool {
	if !c.size.IsSet() {
		return false
	}
	return !c.TotalWeight().Add(weight).GreaterThan(c.Capacity())
}

// WouldExceed reports whether adding weight would go over the budget.
// It is false when no size is selected: there is no budget to exceed.
func (c *Cart) WouldExceed(weight valueobject.Weight) bool {
	if !c.size.IsSet() {
		return false
	}
	return c.TotalWeight().Add(weight).GreaterThan(c.Capacity())
}

// RemainingWeight formats the unused budget with two decimals ("4.00kg").
// It returns "0.00kg" when no size is selected.
func (c *Cart) RemainingWeight() string {
	return c.Remaining().Fixed(2)
}

// Remaining returns the unused budget.
func (c *Cart) Remaining() valueobject.Weight {
	if !c.size.IsSet() {
		return valueobject.ZeroWeight()
	}
	return c.Capacity().Sub(c.TotalWeight())
}

// IsAtCapacity reports whether the budget is used up.
func (c *Cart) IsAtCapacity() bool {
	if !c.size.IsSet() {
		return false
	}
	return c.TotalWeight().GreaterThanOrEqual(c.Capacity())
}

// Lines returns copies of the lines in the order they were first added.
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.order))
	for _, id := range c.order {
		lines = append(lines, *c.lines[id])
	}
	return lines
}

// Line returns a copy of the line for a vegetable.
func (c *Cart) Line(id int) (CartLine, bool) {
	line, ok := c.lines[id]
	if !ok {
		return CartLine{}, false
	}
	return *line, true
}

// LineCount returns the number of distinct vegetables.
func (c *Cart) LineCount() int {
	return len(c.lines)
}

// ItemCount returns the number of packs across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) touch() {
	c.updatedAt = time.Now().UTC()
}
