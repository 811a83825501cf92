package handler

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/hapkiduki/apnacart/internal/application/cart"
	"github.com/hapkiduki/apnacart/internal/application/catalog"
	"github.com/hapkiduki/apnacart/internal/application/dto"
	"github.com/hapkiduki/apnacart/internal/application/port"
	"github.com/hapkiduki/apnacart/internal/infrastructure/imagestore"
	"github.com/hapkiduki/apnacart/internal/interfaces/http/middleware"
)

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	// Version is reported by the X-API-Version header and /health.
	Version string

	// AllowedOrigins is the CORS allow list.
	AllowedOrigins []string

	// RequestTimeout bounds each request. Zero disables it.
	RequestTimeout time.Duration

	// MaxBodyBytes caps request bodies. Zero disables it.
	MaxBodyBytes int64

	// RateLimit enables per-client rate limiting when set.
	RateLimit *middleware.RateLimiterConfig

	// TrustedProxies may report the client address in X-Forwarded-For.
	TrustedProxies []netip.Prefix
}

// Dependencies are the services the router dispatches to.
type Dependencies struct {
	Catalog *catalog.Service
	Carts   *cart.Service
	Images  *imagestore.Store
	Seed    SeedSource
	DB      Pinger
	Log     port.Logger
}

// NewRouter builds the HTTP handler of the storefront.
//
// Parameters:
//   - cfg: transport settings
//   - deps: application services
//
// Returns:
//   - http.Handler: the configured router
func NewRouter(cfg RouterConfig, deps Dependencies) http.Handler {
	log := deps.Log
	r := chi.NewRouter()

	// ============================================================================
	// Middleware stack
	// ============================================================================
	// Order matters! Middleware is executed in the order added.

	// 1. Real IP extraction (for rate limiting and logging)
	r.Use(middleware.RealIP(cfg.TrustedProxies))

	// 2. Request ID generation/propagation
	r.Use(middleware.RequestID)

	// 3. Logging (after Request ID so it's included in logs)
	r.Use(middleware.Logger(log))

	// 4. Panic recovery
	r.Use(middleware.Recoverer(log))

	// 5. Request timeout
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	// 6. CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-API-Version", "Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 7. Rate limiting
	if cfg.RateLimit != nil {
		r.Use(middleware.RateLimiter(*cfg.RateLimit))
	}

	// 8. Security headers
	r.Use(middleware.SecureHeaders)

	// 9. API version header
	r.Use(middleware.APIVersion(cfg.Version))

	// ============================================================================
	// Routes
	// ============================================================================

	health := NewHealthHandler(cfg.Version, deps.DB)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)

	if deps.Images != nil {
		NewImageHandler(deps.Images, log).Routes(r)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))
		r.Use(middleware.ContentTypeJSON)

		if deps.Catalog != nil {
			NewVegetableHandler(deps.Catalog, deps.Seed, log).Routes(r)
		}
		if deps.Carts != nil {
			NewCartHandler(deps.Carts, log).Routes(r)
		}
	})

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	return r
}

// notFoundHandler handles 404 responses.
func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, dto.NewErrorResponse[any]("NOT_FOUND", "The requested resource was not found"))
}

// methodNotAllowedHandler handles 405 responses.
func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusMethodNotAllowed)
	render.JSON(w, r, dto.NewErrorResponse[any]("METHOD_NOT_ALLOWED", "The requested method is not allowed for this resource"))
}
