package server

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"yashubustudio/symptomcheck/diagnostic"
	"yashubustudio/symptomcheck/internal/i18n"
	"yashubustudio/symptomcheck/internal/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 64 * 1024
)

// Handler serves the diagnosis API from a shared read-only service.
type Handler struct {
	service *diagnostic.Service
	i18n    *i18n.Manager
	logger  *zap.SugaredLogger
}

// New builds the HTTP application serving the diagnosis API.
func New(service *diagnostic.Service, manager *i18n.Manager, log *zap.SugaredLogger) *fiber.App {
	if log == nil {
		log = logger.Nop()
	}
	handler := &Handler{
		service: service,
		i18n:    manager,
		logger:  log.With(logger.FieldComponent, "server"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "symptomcheck",
		DisableStartupMessage: true,
		BodyLimit:             maxBodyBytes,
		ErrorHandler:          handler.errorHandler,
	})

	app.Use(handler.RequestID)
	app.Use(handler.AccessLog)
	app.Use(recover.New())
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)
	return app
}

// Run serves app on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrapf(err, "listen on %s", addr)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown server")
		}
		return <-errCh
	}
}
