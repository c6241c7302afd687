package main

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Storefront/internal/app"
	"Storefront/internal/catalog"
	"Storefront/internal/config"
	"Storefront/internal/shop"
	"Storefront/internal/storage"
	"Storefront/internal/theme"
	"Storefront/pkg/kit"
)

const (
	service      = "storefront"
	startTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Fatal("storefront stopped", zap.Error(err))
	}
	_ = log.Sync()
}

// run serves until ctx is cancelled. Every resource it opens is released
// before it returns, including on startup errors.
func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	res, err := openResources(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer res.close(log)

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	products, err := res.catalog.ListSortedByID(startCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	reg := prometheus.NewRegistry()
	storageMetrics := kit.NewStorageMetrics(reg)

	shopQ := storage.NewQueue("shop", res.kv, log,
		storage.WithWriteTimeout(cfg.WriteTimeout),
		storage.WithMetrics(storageMetrics),
	)
	themeQ := storage.NewQueue("theme", res.kv, log,
		storage.WithWriteTimeout(cfg.WriteTimeout),
		storage.WithMetrics(storageMetrics),
	)
	// Close drains pending writes; it must run before the backends close.
	defer themeQ.Close()
	defer shopQ.Close()

	shopStore := shop.NewStore(shop.Deps{
		Products: products,
		Storage:  res.kv,
		Writer:   shopQ,
		Log:      log.Named("shop"),
	})

	initial, err := theme.ParseAppearance(cfg.Appearance)
	if err != nil {
		log.Warn("bad appearance, using light", zap.String("appearance", cfg.Appearance))
		initial = theme.AppearanceLight
	}
	system := theme.NewSystemAppearance(initial)

	themeStore := theme.NewStore(theme.Deps{
		Storage:    res.kv,
		Writer:     themeQ,
		Appearance: system,
		Log:        log.Named("theme"),
	})
	defer themeStore.Close()

	themeStore.Hydrate(ctx)
	// /readyz reports 503 until the shop store has hydrated.
	shopStore.HydrateAsync(ctx)

	h := app.NewHandler(app.Deps{
		Catalog: res.catalog,
		Storage: res.kv,
		Shop:    shopStore,
		Theme:   themeStore,
		System:  system,
	}, app.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	return kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log)
}

type resources struct {
	kv      storage.KV
	catalog catalog.Store

	db    *sql.DB
	redis *redis.Client
}

func openResources(ctx context.Context, cfg config.Config, log *zap.Logger) (*resources, error) {
	ctx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	res := &resources{}

	if cfg.StorageBackend == config.BackendPostgres || cfg.CatalogBackend == config.BackendPostgres {
		db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		res.db = db
	}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		res.kv = storage.NewMemKV()
	case config.BackendFile:
		kv, err := storage.NewFileKV(cfg.DataDir)
		if err != nil {
			res.close(log)
			return nil, err
		}
		res.kv = kv
	case config.BackendRedis:
		client, err := storage.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			res.close(log)
			return nil, err
		}
		res.redis = client
		res.kv = storage.NewRedisKV(client, cfg.DeviceID)
	case config.BackendPostgres:
		kv := storage.NewPostgresKV(res.db, cfg.DeviceID)
		if err := kv.EnsureSchema(ctx); err != nil {
			res.close(log)
			return nil, err
		}
		res.kv = kv
	default:
		res.close(log)
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	switch cfg.CatalogBackend {
	case config.BackendPostgres:
		res.catalog = catalog.NewPostgresStore(res.db)
	default:
		res.catalog = catalog.NewMemStore()
	}

	log.Info("storage ready",
		zap.String("storage", cfg.StorageBackend),
		zap.String("catalog", cfg.CatalogBackend),
	)
	return res, nil
}

func (r *resources) close(log *zap.Logger) {
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			log.Warn("close redis", zap.Error(err))
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			log.Warn("close db", zap.Error(err))
		}
	}
}
