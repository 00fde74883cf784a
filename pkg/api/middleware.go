package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/sirupsen/logrus"
)

// setupMiddleware configures global middleware for the Fiber app
func setupMiddleware(app *fiber.App) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))
}

// newErrorHandler provides consistent JSON error responses. Errors that are
// not fiber errors are logged and reported as a 500.
func newErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fiberErr *fiber.Error
		if ok := errors.As(err, &fiberErr); ok {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			log.WithError(err).WithField("path", c.Path()).Error("Request failed")
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
			"code":  code,
		})
	}
}
