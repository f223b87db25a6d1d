package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/raaihank/doc-sentinel/internal/analyzer"
	"github.com/raaihank/doc-sentinel/internal/cache"
	"github.com/raaihank/doc-sentinel/internal/config"
	"github.com/raaihank/doc-sentinel/internal/extract"
	"github.com/raaihank/doc-sentinel/internal/logger"
	"github.com/raaihank/doc-sentinel/internal/privacy"
	"github.com/raaihank/doc-sentinel/internal/security"
	"github.com/raaihank/doc-sentinel/internal/store"
	"github.com/raaihank/doc-sentinel/internal/websocket"
)

// Server is the DocSentinel HTTP service: document upload, sanitization,
// analysis, history and retention endpoints.
type Server struct {
	config    *config.Config
	logger    *logger.Logger
	sanitizer *privacy.Sanitizer
	extractor *extract.Extractor
	analyzer  analyzer.Analyzer
	artifacts *store.Store
	cache     *cache.AnalysisCache
	limiter   *security.RateLimiter
	router    *mux.Router
	server    *http.Server
	wsHub     *websocket.Hub
}

// New creates a new server instance and wires all components.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	backend, err := analyzer.New(cfg.Analyzer, log.WithComponent("analyzer").Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis backend: %w", err)
	}

	artifacts, err := store.New(cfg.Storage, log.WithComponent("store").Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact store: %w", err)
	}

	var analysisCache *cache.AnalysisCache
	if cfg.Cache.Enabled {
		analysisCache, err = cache.New(&cfg.Cache, log.WithComponent("cache").Logger)
		if err != nil {
			// The cache is an optimization; a missing Redis must not keep
			// the service down.
			log.Warn("Analysis cache unavailable, continuing without it", zap.Error(err))
			analysisCache = nil
		}
	}

	wsHub := websocket.NewHub(log.WithComponent("websocket").Logger)
	limiter := security.NewRateLimiter(&cfg.Security)

	server := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		sanitizer: privacy.NewSanitizer(log.WithComponent("privacy").Logger),
		extractor: extract.New(log.WithComponent("extract").Logger),
		analyzer:  backend,
		artifacts: artifacts,
		cache:     analysisCache,
		limiter:   limiter,
		router:    mux.NewRouter(),
		wsHub:     wsHub,
	}
	server.setupRoutes()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return server, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.wsHub.ServeWS).Methods("GET")
	}

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)

	api.HandleFunc("/sanitize", s.handleSanitize).Methods("POST")
	api.HandleFunc("/documents/analyze", s.handleAnalyzeDocument).Methods("POST")
	api.HandleFunc("/sessions/analyze", s.handleAnalyzeSession).Methods("POST")
	api.HandleFunc("/history", s.handleHistory).Methods("GET")
	api.HandleFunc("/history/sweep", s.handleSweep).Methods("POST")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("Starting DocSentinel server",
		zap.Int("port", s.config.Server.Port),
		zap.String("analyzer", s.analyzer.Name()),
		zap.String("default_level", s.config.Privacy.DefaultLevel),
	)

	if s.config.WebSocket.Enabled {
		go s.wsHub.Run()
	}
	s.limiter.StartCleanupRoutine()

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping DocSentinel server")
	if s.cache != nil {
		s.cache.Close()
	}
	return s.server.Shutdown(ctx)
}
