package middleware

import (
	"time"

	"go-inventory-po/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestLogger binds request_id, method and path to the request context and
// logs one line per request. Errors returned by handlers are rendered here so
// the logged status is the one the client sees.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		ctx := log.WithRequestID(c.UserContext(), requestID)
		ctx = log.WithFields(ctx, map[string]any{
			"method": c.Method(),
			"path":   c.Path(),
		})
		c.SetUserContext(ctx)

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log.InfoFields(ctx, "request completed", map[string]any{
			"status":     c.Response().StatusCode(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
		})
		return nil
	}
}
