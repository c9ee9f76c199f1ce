// Package httpapi assembles the HTTP surface: middleware chain, public
// catalog and login routes, and the session-guarded registry routes.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"giftlist/internal/auth"
	"giftlist/internal/catalog"
	"giftlist/internal/platform/metrics"
	"giftlist/internal/platform/middleware"
	registryhandler "giftlist/internal/registry/handler"
	"giftlist/internal/report"
	"giftlist/internal/transport/http/shared"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
	Sessions  middleware.SessionValidator
	Auth      *auth.Handler
	Catalog   *catalog.Handler
	GiftList  *registryhandler.Handler
	Report    *report.Handler
}

// NewRouter wires all routes behind the shared middleware chain.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		shared.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	// Public surface.
	d.Catalog.Register(r)
	d.Auth.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Session-guarded surface.
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireSession(d.Sessions, d.Logger))
		d.GiftList.Register(pr)
		d.Report.Register(pr)
		d.Auth.RegisterProtected(pr)
	})

	return r
}
