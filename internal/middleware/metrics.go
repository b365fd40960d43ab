package middleware

import (
	"time"

	"go-inventory-po/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and latency per route pattern. It must be
// registered before RequestLogger so the final status is known.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		}
		m.ObserveRequest(c.Method(), route, c.Response().StatusCode(), time.Since(start))
		return err
	}
}
