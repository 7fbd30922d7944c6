// Package server defines the core Server struct that composes the app's main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - Prometheus metrics
//   - the outbound HTTP client used for OpenAI
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/corylsmithjr/medal-api/internal/config"
	"github.com/corylsmithjr/medal-api/internal/metrics"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	loggerPkg "github.com/corylsmithjr/medal-api/internal/logger"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself; an internal *http.Server is only set up
// for the long-running host. The Lambda host uses the same container without
// ever calling SetupHTTPServer.
type Server struct {
	Config *config.Config
	Logger *zerolog.Logger

	// LoggerService holds the New Relic application, nil app when disabled.
	LoggerService *loggerPkg.LoggerService

	// Metrics is nil when metrics are disabled.
	Metrics *metrics.Metrics

	// HTTPClient is shared by outbound calls. Deadlines are set per request
	// through the context, so the client itself has no timeout.
	HTTPClient *http.Client

	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: nil config")
	}
	if logger == nil {
		return nil, errors.New("server: nil logger")
	}

	var transport http.RoundTripper = http.DefaultTransport
	// Instrument outbound calls so OpenAI latency shows up as an external
	// segment of the inbound transaction.
	if loggerService.GetApplication() != nil {
		transport = newrelic.NewRoundTripper(transport)
	}

	var m *metrics.Metrics
	if cfg.Observability != nil && cfg.Observability.Metrics.Enabled {
		m = metrics.New()
	}

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Metrics:       m,
		HTTPClient:    &http.Client{Transport: transport},
	}, nil
}

// SetupHTTPServer configures the internal net/http server.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: handler,

		// Config stores int values, interpreted here as seconds.
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
//
// It requires SetupHTTPServer to be called first. http.ErrServerClosed is
// returned as is after Shutdown.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its dependencies.
//
// It stops the HTTP server (finishing in-flight requests until ctx expires)
// and flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.LoggerService.Shutdown()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	s.HTTPClient.CloseIdleConnections()

	return nil
}
