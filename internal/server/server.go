// Package server exposes the updater service over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thanhnhan2tn/package-updater/pkg/project"
	"github.com/thanhnhan2tn/package-updater/pkg/updater"
)

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":3001"

	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Service is satisfied by *updater.Service.
type Service interface {
	Projects(ctx context.Context) ([]project.Project, error)
	Project(ctx context.Context, name string) (project.Project, error)
	Packages(ctx context.Context) ([]updater.Dependency, error)
	PackageVersion(ctx context.Context, id string) (updater.PackageVersion, error)
	Dependencies(ctx context.Context) ([]updater.Dependency, error)
	Upgrade(ctx context.Context, req updater.UpgradeRequest) (updater.UpgradeResult, error)
	Images(ctx context.Context) ([]updater.DockerImage, error)
	Image(ctx context.Context, projectName string, kind project.Kind) (updater.DockerImage, error)
	UpgradeImage(ctx context.Context, req updater.ImageUpgradeRequest) (updater.ImageUpgradeResult, error)
}

// Options configures a Server.
type Options struct {
	Addr           string
	AllowedOrigins []string

	// Registerer receives the API request metrics; Gatherer backs /metrics.
	// Both default to the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger *log.Logger
}

type Server struct {
	svc      Service
	opts     Options
	router   chi.Router
	validate *validator.Validate
	logger   *log.Logger
	started  time.Time

	requests *prometheus.HistogramVec
}

func New(svc Service, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		svc:      svc,
		opts:     opts,
		validate: newValidator(),
		logger:   opts.Logger,
		started:  time.Now(),
		requests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pkgupdater_api_request_duration_seconds",
				Help:    "API request latency by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
	if err := opts.Registerer.Register(s.requests); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			s.requests = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			s.logger.Warn("api metrics not registered", "err", err)
		}
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	r.Get("/projects", s.handleProjects)
	r.Get("/project/{name}", s.handleProject)
	r.Get("/packages", s.handlePackages)
	r.Get("/package-version/{id}", s.handlePackageVersion)
	r.Get("/dependencies", s.handleDependencies)
	r.Post("/upgrade", s.handleUpgrade)

	r.Route("/docker", func(r chi.Router) {
		r.Get("/images", s.handleImages)
		r.Get("/image/{project}/{type}", s.handleImage)
		r.Post("/upgrade/{project}", s.handleImageUpgrade)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())

		logf := s.logger.Info
		if status >= http.StatusInternalServerError {
			logf = s.logger.Error
		}
		logf("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", elapsed)
	})
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
