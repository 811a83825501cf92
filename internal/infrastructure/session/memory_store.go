// Package session keeps carts in memory between requests.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hapkiduki/apnacart/internal/application/port"
	"github.com/hapkiduki/apnacart/internal/domain/entity"
	"github.com/hapkiduki/apnacart/internal/domain/repository"
)

// Config tunes a MemoryStore.
type Config struct {
	// TTL is how long an untouched cart survives. Zero disables expiry.
	TTL time.Duration

	// SweepInterval is how often expired carts are dropped.
	// Defaults to TTL/2 when zero.
	SweepInterval time.Duration

	// MaxSessions caps live carts; Create fails with ErrTooManySessions
	// beyond it. Zero means unlimited.
	MaxSessions int

	// Policy is the capacity table given to new carts.
	Policy entity.CapacityPolicy
}

type entry struct {
	mu       sync.Mutex
	cart     *entity.Cart
	lastSeen time.Time
}

// MemoryStore is a port.CartSessions backed by a map.
// Each cart has its own lock so slow requests on one cart never block another.
type MemoryStore struct {
	cfg Config
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

var _ port.CartSessions = (*MemoryStore)(nil)

// NewMemoryStore creates a store and starts its expiry sweeper when TTL is set.
// Call Close to stop the sweeper.
func NewMemoryStore(cfg Config) *MemoryStore {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = cfg.TTL / 2
	}
	s := &MemoryStore{
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if cfg.TTL > 0 && cfg.SweepInterval > 0 {
		go s.sweepLoop()
	} else {
		close(s.done)
	}
	return s
}

// Create starts a new cart session.
func (s *MemoryStore) Create(ctx context.Context) (*entity.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cart := entity.NewCart(s.cfg.Policy)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.MaxSessions > 0 && len(s.entries) >= s.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}
	s.entries[cart.ID().String()] = &entry{cart: cart, lastSeen: s.now()}
	return cart, nil
}

// Update runs fn with exclusive access to a cart and refreshes its expiry.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*entity.Cart) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := normalizeID(id)
	if err != nil {
		return err
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return repository.ErrCartNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s.expired(e) {
		s.remove(key, e)
		return repository.ErrCartNotFound
	}
	e.lastSeen = s.now()
	return fn(e.cart)
}

// Delete ends a session.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := normalizeID(id)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep drops every expired cart and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	if s.cfg.TTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		if s.expired(e) {
			delete(s.entries, key)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

// Close stops the sweeper. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

func (s *MemoryStore) sweepLoop() {
	defer close(s.done)
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// expired must be called with e.mu held.
func (s *MemoryStore) expired(e *entry) bool {
	return s.cfg.TTL > 0 && s.now().Sub(e.lastSeen) > s.cfg.TTL
}

func (s *MemoryStore) remove(key string, e *entry) {
	s.mu.Lock()
	if s.entries[key] == e {
		delete(s.entries, key)
	}
	s.mu.Unlock()
}

func normalizeID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", repository.ErrCartNotFound
	}
	return parsed.String(), nil
}
