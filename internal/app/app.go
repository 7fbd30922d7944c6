// Package app assembles the application from configuration. Both hosts (the
// HTTP server and the Lambda function) and the CLI share this wiring.
package app

import (
	"github.com/corylsmithjr/medal-api/internal/config"
	"github.com/corylsmithjr/medal-api/internal/handler"
	"github.com/corylsmithjr/medal-api/internal/logger"
	"github.com/corylsmithjr/medal-api/internal/router"
	"github.com/corylsmithjr/medal-api/internal/server"
	"github.com/corylsmithjr/medal-api/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type App struct {
	Server   *server.Server
	Services *service.Services
	Router   *echo.Echo
	Logger   *zerolog.Logger
}

// New loads configuration from the environment and builds the application.
func New() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return NewWithConfig(cfg)
}

// NewWithConfig builds the application from an already loaded config.
func NewWithConfig(cfg *config.Config) (*App, error) {
	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize New Relic")
	}

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if !cfg.OpenAI.HasOpenAIKey() {
		log.Warn().Msg("OpenAI API key is not configured, processing requests will fail")
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, errors.Wrap(err, "failed to initialize server")
	}

	services := service.NewServices(srv)
	handlers := handler.NewHandlers(srv, services)

	return &App{
		Server:   srv,
		Services: services,
		Router:   router.NewRouter(srv, handlers),
		Logger:   srv.Logger,
	}, nil
}
