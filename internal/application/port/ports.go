// Package port contains the port interfaces (driven ports) for the application layer.
// Ports define the interfaces that the application layer requires from external
// services like session storage, image lookup and logging.
//
// In Hexagonal Architecture (ports & adapters):
//   - Ports are interfaces that define what the application needs.
//   - Adapters are implementations of these interfaces
//   - this enables loose coupling and easy testing/swapping of implementations.
package port

import (
	"context"

	"github.com/hapkiduki/apnacart/internal/domain/entity"
)

// Logger defines the interface for structured logging.
// Implementation may use zap, logrus, or the standard library.
//
// Example usage:
//
//	log.Info("Item added", "cart_id", cartID, "vegetable_id", vegetableID)
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})

	// With return a logger with additional context fields.
	With(keysAndValues ...interface{}) Logger

	// WithContext return a logger with context information (e.g., request ID).
	WithContext(ctx context.Context) Logger
}

// CartSessions keeps carts alive between requests.
// Implementations serialise access to a single cart; the cart itself is not
// safe for concurrent use.
type CartSessions interface {
	// Create starts a new session holding an empty, unset cart.
	Create(ctx context.Context) (*entity.Cart, error)

	// Update runs fn with exclusive access to the cart of a session.
	// It returns repository.ErrCartNotFound for unknown or expired sessions
	// and whatever fn returns otherwise.
	Update(ctx context.Context, id string, fn func(cart *entity.Cart) error) error

	// Delete ends a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error
}

// ImageResolver maps vegetable names to catalog image paths.
type ImageResolver interface {
	// Resolve returns customURL (normalised) when it is set, otherwise the
	// best image for name, falling back to the default image.
	Resolve(name, customURL string) string
}
