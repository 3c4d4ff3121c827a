// Package server exposes the visualizer over HTTP and WebSocket.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"qviz/internal/analysis"
	"qviz/internal/config"
	"qviz/internal/visualize"
	"qviz/pkg/logger"
)

// Config holds server configuration
type Config struct {
	Log        zerolog.Logger
	Config     *config.Config
	Visualizer *visualize.Visualizer
	Analyzer   *analysis.Analyzer
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	server     *http.Server
	log        zerolog.Logger
	cfg        *config.Config
	visualizer *visualize.Visualizer
	analyzer   *analysis.Analyzer
	started    time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		log:        logger.Component(cfg.Log, "server"),
		cfg:        cfg.Config,
		visualizer: cfg.Visualizer,
		analyzer:   cfg.Analyzer,
		started:    time.Now(),
	}
	if s.visualizer == nil {
		s.visualizer = visualize.New(cfg.Log)
	}
	if s.analyzer == nil {
		s.analyzer = analysis.NewAnalyzer(analysis.WithLogger(cfg.Log))
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Long-lived; kept clear of the timeout and compression middleware.
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			if !s.cfg.DevMode {
				r.Use(middleware.Compress(5))
			}

			r.Get("/system/status", s.handleSystemStatus)
			r.Post("/visualize", s.handleVisualize)
			r.Post("/bloch", s.handleBloch)

			r.Route("/demos", func(r chi.Router) {
				r.Get("/", s.handleListDemos)
				r.Get("/{name}", s.handleGetDemo)
				r.Post("/{name}/analyze", s.handleAnalyzeDemo)
			})
		})
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Strs("origins", s.cfg.AllowedOrigins).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

// originPatterns converts the allowed origins into WebSocket host patterns.
func (s *Server) originPatterns() []string {
	patterns := make([]string, 0, len(s.cfg.AllowedOrigins))
	for _, o := range s.cfg.AllowedOrigins {
		if _, host, ok := strings.Cut(o, "://"); ok {
			o = host
		}
		patterns = append(patterns, o)
	}
	return patterns
}
