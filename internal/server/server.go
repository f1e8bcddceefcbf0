package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongminglow/loyalty-console/internal/auth"
	"github.com/hongminglow/loyalty-console/internal/backend"
	"github.com/hongminglow/loyalty-console/internal/config"
	"github.com/hongminglow/loyalty-console/internal/http/handlers"
	"github.com/hongminglow/loyalty-console/internal/middleware"
	"github.com/hongminglow/loyalty-console/internal/observability/metrics"
	"github.com/hongminglow/loyalty-console/internal/paging"
	"github.com/hongminglow/loyalty-console/internal/session"
	"github.com/hongminglow/loyalty-console/internal/view"
	"github.com/hongminglow/loyalty-console/pkg/logging"
)

// Deps are the collaborators the console is built from.
type Deps struct {
	Backend  *backend.Client
	Sessions session.Store
	Tokens   *auth.TokenManager
	Metrics  *metrics.ConsoleMetrics
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
	Logger   *logging.Logger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) (*Server, error) {
	handler, err := NewHandler(cfg, deps)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Pages wait on the backend, so leave room past its timeout.
		WriteTimeout: cfg.APITimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{inner: httpServer}, nil
}

// NewHandler builds the console router.
func NewHandler(cfg config.Config, deps Deps) (http.Handler, error) {
	views, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	pageDeps := handlers.Deps{
		Views:    views,
		Sessions: deps.Sessions,
		Paging:   paging.Options{Sizes: cfg.PageSizes, DefaultSize: cfg.DefaultPageSize},
		Metrics:  deps.Metrics,
		Logger:   logger,
	}
	authHandler := handlers.NewAuthHandler(pageDeps, deps.Backend, deps.Tokens, cfg.SessionTTL, cfg.CookieSecure)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Instrument(deps.Metrics))
	r.Use(middleware.SameOrigin(cfg.AllowedOrigins))
	r.NotFound(handlers.NewErrorPages(pageDeps).NotFound)

	r.Group(func(public chi.Router) {
		handlers.NewHealthHandler(time.Now()).Register(public)
		public.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		public.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		})
		authHandler.Register(public)
	})

	r.Group(func(private chi.Router) {
		private.Use(middleware.RequireSession(deps.Sessions, logger))
		private.Use(middleware.VerifyCSRF)
		private.Post("/logout", authHandler.Logout)
		handlers.NewDashboardHandler(pageDeps, deps.Backend).Register(private)
		handlers.NewMerchantHandler(pageDeps, deps.Backend).Register(private)
		handlers.NewReportHandler(pageDeps, deps.Backend).Register(private)
	})

	return r, nil
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
