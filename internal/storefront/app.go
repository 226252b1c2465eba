package storefront

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

const writeLimitWindow = time.Minute

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// WriteLimitPerMin caps product writes per client IP; 0 disables it.
	WriteLimitPerMin int
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)
	setupRoutes(r, s, deps)

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

func setupRoutes(r *chi.Mux, s *Server, deps HTTPDeps) {
	writeLimiter := kit.NewIPRateLimiter(deps.WriteLimitPerMin, writeLimitWindow)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.handleReady)

	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", s.handleList)
		pr.Post("/refresh", s.handleRefresh)
		pr.Get("/{id}", s.handleDetail)

		pr.Group(func(wr chi.Router) {
			wr.Use(writeLimiter.Middleware)
			wr.Post("/", s.handleCreate)
			wr.Put("/{id}", s.handleUpdate)
			wr.Delete("/{id}", s.handleDelete)
		})
	})
	r.Delete("/selection", s.handleClearSelection)

	r.Route("/session", func(sr chi.Router) {
		sr.Get("/", s.handleSession)
		sr.Post("/", s.handleSignIn)
		sr.Delete("/", s.handleSignOut)
	})

	r.Get("/events", s.handleEvents)
}
