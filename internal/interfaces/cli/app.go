package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hapkiduki/apnacart/internal/application/catalog"
	"github.com/hapkiduki/apnacart/internal/application/imagelink"
	"github.com/hapkiduki/apnacart/internal/application/port"
	"github.com/hapkiduki/apnacart/internal/infrastructure/config"
	"github.com/hapkiduki/apnacart/internal/infrastructure/imagestore"
	"github.com/hapkiduki/apnacart/internal/infrastructure/logging"
	"github.com/hapkiduki/apnacart/internal/infrastructure/persistance/sqlstore"
	"github.com/hapkiduki/apnacart/pkg/logger"
)

// app holds what every command needs: configuration, logging, the catalog
// database and the services built on it.
type app struct {
	cfg  *config.Config
	log  *logger.Logger
	plog port.Logger

	db       *sqlstore.DB
	repo     *sqlstore.VegetableRepository
	images   *imagestore.Store
	resolver *imagelink.Resolver
	catalog  *catalog.Service
}

// loadApp reads configuration, opens the database and wires the catalog.
// Logs go to logOut. The caller must call close.
func loadApp(ctx context.Context, configFile string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.App.Debug,
		Output:      logOut,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.SetGlobal(log)
	plog := logging.New(log)

	timeout := cfg.Database.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	openCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := sqlstore.Open(openCtx, sqlstore.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(openCtx); err != nil {
			db.Close()
			return nil, err
		}
	}

	mappings := imagelink.DefaultMappings()
	if cfg.Catalog.MappingsFile != "" {
		if mappings, err = imagelink.LoadMappingsFile(cfg.Catalog.MappingsFile); err != nil {
			db.Close()
			return nil, err
		}
	}

	images := imagestore.New(cfg.Catalog.ImagesDir, cfg.Catalog.CacheDir, plog)

	var opts []imagelink.Option
	if cfg.Catalog.CheckImageFiles {
		opts = append(opts, imagelink.WithFileCheck(images.Exists))
	}
	resolver := imagelink.NewResolver(mappings, opts...)

	repo := sqlstore.NewVegetableRepository(db)

	log.Debug("application wired",
		"driver", db.Dialect().String(),
		"images_dir", cfg.Catalog.ImagesDir,
		"mappings", len(mappings),
	)

	return &app{
		cfg:      cfg,
		log:      log,
		plog:     plog,
		db:       db,
		repo:     repo,
		images:   images,
		resolver: resolver,
		catalog:  catalog.NewService(repo, resolver, plog),
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Error("close database", "error", err)
	}
	_ = a.log.Sync()
}
