package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sneakerstore/sneakerstore/internal/analytics"
	"github.com/sneakerstore/sneakerstore/internal/auth"
	"github.com/sneakerstore/sneakerstore/internal/cart"
	"github.com/sneakerstore/sneakerstore/internal/catalog"
	"github.com/sneakerstore/sneakerstore/internal/customers"
	"github.com/sneakerstore/sneakerstore/internal/observability"
	"github.com/sneakerstore/sneakerstore/internal/orders"
	"github.com/sneakerstore/sneakerstore/internal/settings"
	"github.com/sneakerstore/sneakerstore/internal/shared"
	"github.com/sneakerstore/sneakerstore/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthService      *auth.Service
	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	CartHandler      *cart.Handler
	OrdersHandler    *orders.Handler
	CustomersHandler *customers.Handler
	SettingsHandler  *settings.Handler
	AnalyticsHandler *analytics.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with the storefront defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		AuthService:    params.AuthService,
		Metrics:        params.Metrics,
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

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Route("/catalog", params.CatalogHandler.MountRoutes)
		r.Route("/cart", params.CartHandler.MountRoutes)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Route("/products", params.CatalogHandler.MountAdminRoutes)
		r.Route("/orders", params.OrdersHandler.MountRoutes)
		if params.CustomersHandler != nil {
			r.Route("/customers", params.CustomersHandler.MountRoutes)
		}
		if params.AnalyticsHandler != nil {
			r.Route("/dashboard", params.AnalyticsHandler.MountRoutes)
		}
		if params.SettingsHandler != nil {
			r.Route("/settings", params.SettingsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
