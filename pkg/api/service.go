package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethpandaops/rbi/pkg/api/handlers"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/sirupsen/logrus"
)

// Service defines the API service interface
type Service interface {
	Start(ctx context.Context) error
	Stop() error
}

type service struct {
	app             *fiber.App
	server          *http.Server
	config          *Config
	handlers        *handlers.Server
	frontendHandler http.Handler
	log             logrus.FieldLogger
}

// NewService creates the API service. frontendHandler, when set, serves
// every route the API does not.
func NewService(cfg *Config, server *handlers.Server, frontendHandler http.Handler, log logrus.FieldLogger) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &service{
		config:          cfg,
		handlers:        server,
		frontendHandler: frontendHandler,
		log:             log.WithField("service", "api"),
	}

	app, err := s.newApp(context.Background())
	if err != nil {
		return nil, err
	}

	s.app = app

	return s, nil
}

// newApp builds the fiber app with every route registered
func (s *service) newApp(ctx context.Context) (*fiber.App, error) {
	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: newErrorHandler(s.log),
		AppName:      "RBI",
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	})

	setupMiddleware(app)

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.SendString("OK")
	})

	apiV1 := app.Group("/api/v1")
	apiV1.Get("/openapi.json", openAPIHandler(doc))
	handlers.RegisterHandlers(apiV1, s.handlers)

	if s.frontendHandler != nil {
		app.Use(adaptor.HTTPHandler(s.frontendHandler))
	}

	return app, nil
}

func openAPIHandler(doc *openapi3.T) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(doc)
	}
}

// Start starts the HTTP server in the background
func (s *service) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           adaptor.FiberApp(s.app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.log.WithField("addr", s.config.Addr).Info("Starting API and frontend server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Server failed to start")
		}
	}()

	return nil
}

// Stop gracefully shuts down the API server
func (s *service) Stop() error {
	if s.server == nil {
		return nil
	}

	s.log.Info("Stopping API and frontend server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
