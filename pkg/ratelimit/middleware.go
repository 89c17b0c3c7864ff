package ratelimit

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// clientKey resolves the client identity: first X-Forwarded-For hop when
// present, otherwise the connection IP.
func clientKey(c *fiber.Ctx) string {
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}

// Middleware returns a Fiber handler enforcing the limiter per client IP.
func Middleware(l *Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, remaining, retryAfter := l.Allow(clientKey(c))

		c.Set("X-Rate-Limit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			secs := int(retryAfter.Seconds())
			if retryAfter.Seconds() > float64(secs) {
				secs++ // round up, never tell the client to retry early
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			return ErrTooManyRequests()
		}
		return c.Next()
	}
}
