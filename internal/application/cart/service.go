// Package cart exposes the cart state machine to transports, one cart per
// session.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/hapkiduki/apnacart/internal/application/dto"
	"github.com/hapkiduki/apnacart/internal/application/order"
	"github.com/hapkiduki/apnacart/internal/application/port"
	"github.com/hapkiduki/apnacart/internal/domain/entity"
	"github.com/hapkiduki/apnacart/internal/domain/repository"
	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
	"github.com/hapkiduki/apnacart/pkg/logger"
)

// ErrCartNotFull is returned by Checkout when full carts are required and
// the cart is below capacity.
var ErrCartNotFull = errors.New("cart has not reached its weight limit")

// Options tunes checkout behaviour.
type Options struct {
	// RequireFullCart only allows checkout once the cart is at capacity.
	RequireFullCart bool

	// Capacity is the weight table shown by Plans. Nil uses the defaults.
	Capacity entity.CapacityPolicy

	// Prices attaches a flat price to each cart size. Nil shows no prices.
	Prices entity.PricePolicy
}

// Service runs cart use cases against session-held carts.
type Service struct {
	sessions  port.CartSessions
	catalog   repository.VegetableRepository
	formatter *order.Formatter
	opts      Options
	log       port.Logger
}

// NewService creates a cart Service.
func NewService(
	sessions port.CartSessions,
	catalog repository.VegetableRepository,
	formatter *order.Formatter,
	opts Options,
	log port.Logger,
) *Service {
	return &Service{
		sessions:  sessions,
		catalog:   catalog,
		formatter: formatter,
		opts:      opts,
		log:       log.With("component", "cart"),
	}
}

// Create starts a new session with an empty, unset cart.
func (s *Service) Create(ctx context.Context) (dto.CartResponse, error) {
	c, err := s.sessions.Create(ctx)
	if err != nil {
		return dto.CartResponse{}, fmt.Errorf("create cart: %w", err)
	}
	s.logger(ctx, c.ID().String()).Info("cart created")
	return s.view(c), nil
}

// Plans lists the cart sizes a customer can pick, with their prices.
func (s *Service) Plans() []dto.CartPlanResponse {
	policy := s.opts.Capacity
	if policy == nil {
		policy = entity.DefaultCapacityPolicy()
	}
	return dto.NewCartPlanResponses(entity.Plans(policy, s.opts.Prices))
}

// Get returns the current state of a cart.
func (s *Service) Get(ctx context.Context, cartID string) (dto.CartResponse, error) {
	return s.mutate(ctx, cartID, func(*entity.Cart) error { return nil })
}

// Delete ends a cart session.
func (s *Service) Delete(ctx context.Context, cartID string) error {
	return s.sessions.Delete(ctx, cartID)
}

// SelectSize picks the cart size. The cart is always emptied.
func (s *Service) SelectSize(ctx context.Context, cartID, rawSize string) (dto.CartResponse, error) {
	size, err := entity.ParseCartSize(rawSize)
	if err != nil {
		return dto.CartResponse{}, err
	}
	resp, err := s.mutate(ctx, cartID, func(c *entity.Cart) error {
		return c.SelectSize(size)
	})
	if err == nil {
		s.logger(ctx, cartID).Info("cart size selected", "size", size)
	}
	return resp, err
}

// AddItem adds one pack of a catalog vegetable at its catalog weight.
func (s *Service) AddItem(ctx context.Context, cartID string, vegetableID int) (dto.CartResponse, error) {
	vegetable, err := s.catalog.GetByID(ctx, vegetableID)
	if err != nil {
		return dto.CartResponse{}, err
	}

	token := vegetable.FixedWeight
	resp, err := s.mutate(ctx, cartID, func(c *entity.Cart) error {
		return c.AddItem(*vegetable, token, token.Weight())
	})

	log := s.logger(ctx, cartID)
	switch {
	case err == nil:
		log.Debug("item added", "vegetable_id", vegetableID, "total", resp.Total)
	case errors.Is(err, entity.ErrCapacityExceeded):
		log.Info("item rejected, weight limit reached", "vegetable_id", vegetableID)
	}
	return resp, err
}

// UpdateQuantity sets the number of packs of a line. Zero or less removes it.
func (s *Service) UpdateQuantity(ctx context.Context, cartID string, vegetableID, quantity int) (dto.CartResponse, error) {
	return s.mutate(ctx, cartID, func(c *entity.Cart) error {
		return c.UpdateQuantity(vegetableID, quantity)
	})
}

// RemoveItem drops a line. Removing an absent vegetable leaves the cart as is.
func (s *Service) RemoveItem(ctx context.Context, cartID string, vegetableID int) (dto.CartResponse, error) {
	return s.mutate(ctx, cartID, func(c *entity.Cart) error {
		c.RemoveItem(vegetableID)
		return nil
	})
}

// Clear empties the cart and keeps its size.
func (s *Service) Clear(ctx context.Context, cartID string) (dto.CartResponse, error) {
	return s.mutate(ctx, cartID, func(c *entity.Cart) error {
		c.Clear()
		return nil
	})
}

// CheckCapacity reports whether a weight ("250g", "1kg" or kilograms) still fits.
func (s *Service) CheckCapacity(ctx context.Context, cartID, rawWeight string) (dto.CapacityCheckResponse, error) {
	weight, err := valueobject.ParseWeight(rawWeight)
	if err != nil {
		return dto.CapacityCheckResponse{}, err
	}
	if !weight.IsPositive() {
		return dto.CapacityCheckResponse{}, entity.ErrInvalidWeight
	}

	var out dto.CapacityCheckResponse
	err = s.sessions.Update(ctx, cartID, func(c *entity.Cart) error {
		out = dto.CapacityCheckResponse{
			Weight:      weight.String(),
			CanAdd:      c.CanAdd(weight),
			WouldExceed: c.WouldExceed(weight),
			Remaining:   c.RemainingWeight(),
		}
		return nil
	})
	return out, err
}

// Checkout renders the order message and its deep-link.
func (s *Service) Checkout(ctx context.Context, cartID string) (dto.CheckoutResponse, error) {
	var handoff order.Handoff
	err := s.sessions.Update(ctx, cartID, func(c *entity.Cart) error {
		if s.opts.RequireFullCart && c.Size().IsSet() && !c.IsEmpty() && !c.IsAtCapacity() {
			return ErrCartNotFull
		}
		var err error
		handoff, err = s.formatter.Handoff(c)
		return err
	})
	if err != nil {
		return dto.CheckoutResponse{}, err
	}

	s.logger(ctx, cartID).Info("order handed off")
	return dto.CheckoutResponse{Message: handoff.Message, URL: handoff.URL}, nil
}

func (s *Service) mutate(ctx context.Context, cartID string, fn func(*entity.Cart) error) (dto.CartResponse, error) {
	var resp dto.CartResponse
	err := s.sessions.Update(ctx, cartID, func(c *entity.Cart) error {
		if err := fn(c); err != nil {
			return err
		}
		resp = s.view(c)
		return nil
	})
	return resp, err
}

func (s *Service) view(c *entity.Cart) dto.CartResponse {
	resp := dto.NewCartResponse(c)
	if price, ok := s.opts.Prices.PriceFor(c.Size()); ok {
		resp.Price = dto.NewPriceResponse(price)
	}
	return resp
}

func (s *Service) logger(ctx context.Context, cartID string) port.Logger {
	return s.log.WithContext(logger.ContextWithCartID(ctx, cartID))
}
