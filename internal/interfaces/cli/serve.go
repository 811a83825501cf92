package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hapkiduki/apnacart/internal/application/cart"
	"github.com/hapkiduki/apnacart/internal/application/order"
	"github.com/hapkiduki/apnacart/internal/domain/entity"
	"github.com/hapkiduki/apnacart/internal/domain/repository"
	"github.com/hapkiduki/apnacart/internal/infrastructure/seed"
	"github.com/hapkiduki/apnacart/internal/infrastructure/session"
	"github.com/hapkiduki/apnacart/internal/interfaces/http/handler"
	"github.com/hapkiduki/apnacart/internal/interfaces/http/middleware"
)

// serveCmd starts the HTTP server.
//
// 12-Factor App compliance:
//   - VII. Port Binding: Self-contained HTTP server
//   - IX. Disposability: Graceful shutdown on SIGINT/SIGTERM
//   - XI. Logs: Structured logging to stdout
func serveCmd(configFile *string) *cobra.Command {
	var seedIfEmpty bool

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Create context that listens for shutdowns signals
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, *configFile, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()

			return serve(ctx, a, seedIfEmpty)
		},
	}

	c.Flags().BoolVar(&seedIfEmpty, "seed-if-empty", false, "load the seed catalog when the database has no vegetables")
	return c
}

func serve(ctx context.Context, a *app, seedIfEmpty bool) error {
	cfg, log := a.cfg, a.log

	log.Info("Starting ApnaCart",
		"version", version,
		"environment", cfg.App.Environment,
		"driver", a.db.Dialect().String(),
	)

	if seedIfEmpty {
		if err := seedWhenEmpty(ctx, a); err != nil {
			return err
		}
	}

	capacity := entity.NewCapacityPolicy(cfg.Cart.SmallCapacityKg, cfg.Cart.FamilyCapacityKg)
	prices, err := entity.NewPricePolicy(cfg.Cart.SmallPrice, cfg.Cart.FamilyPrice, cfg.Cart.Currency)
	if err != nil {
		return fmt.Errorf("cart prices: %w", err)
	}

	sessions := session.NewMemoryStore(session.Config{
		TTL:         cfg.Cart.SessionTTL,
		MaxSessions: cfg.Cart.MaxSessions,
		Policy:      capacity,
	})
	defer sessions.Close()

	formatter := order.NewFormatter(order.Options{
		StoreName:      cfg.Order.StoreName,
		WhatsAppNumber: cfg.Order.WhatsAppNumber,
	})
	carts := cart.NewService(sessions, a.repo, formatter, cart.Options{
		RequireFullCart: cfg.Order.RequireFullCart,
		Capacity:        capacity,
		Prices:          prices,
	}, a.plog)

	proxies, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("server.trusted_proxies: %w", err)
	}

	routerCfg := handler.RouterConfig{
		Version:        version,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxRequestSize,
		TrustedProxies: proxies,
	}
	if cfg.RateLimit.Enabled {
		limits := middleware.DefaultRateLimiterConfig()
		limits.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limits.Burst = cfg.RateLimit.Burst
		routerCfg.RateLimit = &limits
	}

	router := handler.NewRouter(routerCfg, handler.Dependencies{
		Catalog: a.catalog,
		Carts:   carts,
		Images:  a.images,
		Seed:    func() ([]*entity.Vegetable, error) { return seed.LoadFile(cfg.Catalog.SeedFile) },
		DB:      a.db,
		Log:     a.plog,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal or a listener failure
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		return err
	}
	log.Info("Server shutdown complete", "open_carts", sessions.Len())
	return nil
}

// seedWhenEmpty loads the seed catalog into an empty database.
func seedWhenEmpty(ctx context.Context, a *app) error {
	count, err := a.repo.Count(ctx, repository.VegetableFilter{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	vegetables, err := seed.LoadFile(a.cfg.Catalog.SeedFile)
	if err != nil {
		return err
	}
	status, err := a.catalog.Reseed(ctx, vegetables)
	if err != nil {
		return err
	}
	a.log.Info("empty catalog seeded", "count", status.Count)
	return nil
}
