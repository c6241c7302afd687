// Package app wires the catalog, shop and theme modules into one HTTP
// handler with the shared middleware, health and metrics endpoints.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/shop"
	"Storefront/internal/storage"
	"Storefront/internal/theme"
	"Storefront/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	Catalog catalog.Store
	Storage storage.KV
	Shop    *shop.Store
	Theme   *theme.Store
	System  *theme.SystemAppearance
}

const readyTimeout = 2 * time.Second

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	log := kit.OrNop(httpDeps.Log)

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps, log))

	catalogSrv := &catalog.Server{Store: deps.Catalog, Log: log}
	shopSrv := &shop.Server{Store: deps.Shop, Log: log}
	themeSrv := &theme.Server{Store: deps.Theme, System: deps.System, Log: log}

	catalogSrv.Register(r)
	shopSrv.Register(r)
	themeSrv.Register(r)

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Catalog.Ping(ctx); err != nil {
			log.Warn("readyz failed: catalog", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog not ready", nil)
			return
		}

		if deps.Storage != nil {
			if err := deps.Storage.Ping(ctx); err != nil {
				log.Warn("readyz failed: storage", zap.Error(err))
				kit.WriteError(w, r, http.StatusServiceUnavailable, "storage not ready", nil)
				return
			}
		}

		if !deps.Shop.Hydrated() {
			kit.WriteError(w, r, http.StatusServiceUnavailable, "store hydrating", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
