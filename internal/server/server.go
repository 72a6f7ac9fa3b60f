package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/handlers"
)

// Server manages the HTTP server and routes for the dashboard API
type Server struct {
	config      *common.Config
	logger      arbor.ILogger
	subscribers *handlers.SubscriberHandler
	configAPI   *handlers.ConfigHandler
	reports     *handlers.ReportHandler
	api         *handlers.APIHandler
	router      *http.ServeMux
	server      *http.Server
}

// New creates a new HTTP server with the given handlers
func New(
	config *common.Config,
	logger arbor.ILogger,
	subscriberHandler *handlers.SubscriberHandler,
	configHandler *handlers.ConfigHandler,
	reportHandler *handlers.ReportHandler,
) *Server {
	s := &Server{
		config:      config,
		logger:      logger,
		subscribers: subscriberHandler,
		configAPI:   configHandler,
		reports:     reportHandler,
		api:         handlers.NewAPIHandler(),
	}

	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/version", s.api.VersionHandler)
	mux.HandleFunc("/api/health", s.api.HealthHandler)

	mux.HandleFunc("/api/subscribers", s.subscriberCollectionHandler)
	mux.HandleFunc("/api/subscribers/", s.subscriberItemHandler)
	mux.HandleFunc("/api/subscribers/by-name/", s.subscribers.GetByNameHandler)

	mux.HandleFunc("/api/config/mail", s.mailConfigHandler)
	mux.HandleFunc("/api/config/test-email", s.configAPI.TestEmailHandler)

	mux.HandleFunc("/api/reports", s.reports.ListHandler)
	mux.HandleFunc("/api/reports/", s.reports.GetHandler)

	return mux
}

// subscriberCollectionHandler dispatches /api/subscribers by method
func (s *Server) subscriberCollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.subscribers.ListHandler(w, r)
	case http.MethodPost:
		s.subscribers.RegisterHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// subscriberItemHandler dispatches /api/subscribers/{id}[/action]
func (s *Server) subscriberItemHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/subscribers/by-name/"):
		s.subscribers.GetByNameHandler(w, r)
	case strings.HasSuffix(path, "/toggle"):
		s.subscribers.ToggleHandler(w, r)
	case strings.HasSuffix(path, "/send"):
		s.subscribers.SendNowHandler(w, r)
	case r.Method == http.MethodDelete:
		s.subscribers.DeleteHandler(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// mailConfigHandler dispatches /api/config/mail by method
func (s *Server) mailConfigHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.configAPI.GetMailConfigHandler(w, r)
	case http.MethodPost:
		s.configAPI.SaveMailConfigHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// withMiddleware wraps the router with request logging
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.logger.Info().
		Str("address", addr).
		Msg("HTTP server starting")
	s.logger.Info().
		Str("url", fmt.Sprintf("http://%s", addr)).
		Msg("Dashboard API available")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}
