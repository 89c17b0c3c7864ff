package metricx

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/infinitynet/api/pkg/errx"
)

// Middleware records request count and latency. The route template is used
// as the label (not the raw path) to keep cardinality bounded.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		// The error handler runs after this middleware returns, so a
		// classified error has not been rendered yet and the response
		// still carries the default 200.
		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}

		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// errorStatus resolves the status an error will be rendered with.
func errorStatus(err error) int {
	var appErr *errx.Error
	if errx.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	if e, ok := err.(*fiber.Error); ok {
		return e.Code
	}
	return fiber.StatusInternalServerError
}
