package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockbook-io/stockbook/internal/catalog"
	"github.com/stockbook-io/stockbook/internal/ledger"
	"github.com/stockbook-io/stockbook/internal/observability"
	"github.com/stockbook-io/stockbook/internal/projection"
	"github.com/stockbook-io/stockbook/internal/reporting"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	CatalogHandler    *catalog.Handler
	LedgerHandler     *ledger.Handler
	ProjectionHandler *projection.Handler
	ReportingHandler  *reporting.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with stockbook defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/products", func(r chi.Router) {
			params.CatalogHandler.MountRoutes(r)
			if params.ProjectionHandler != nil {
				params.ProjectionHandler.MountRoutes(r)
			}
		})
		api.Route("/transactions", params.LedgerHandler.MountRoutes)
		api.Route("/reports", params.ReportingHandler.MountRoutes)
	})

	return r
}
