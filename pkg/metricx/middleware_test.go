package metricx

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/infinitynet/api/pkg/errx"
)

func TestMiddlewareRecordsRenderedStatus(t *testing.T) {
	m := New()

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/denied", func(c *fiber.Ctx) error {
		return errx.Authentication("Credenciais inválidas")
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
	app.Get("/broken", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	cases := []struct {
		path   string
		status string
	}{
		{"/ok", "200"},
		{"/denied", "401"},
		{"/missing", "404"},
		{"/broken", "500"},
	}
	for _, tc := range cases {
		if _, err := app.Test(httptest.NewRequest(fiber.MethodGet, tc.path, nil)); err != nil {
			t.Fatalf("app.Test %s: %v", tc.path, err)
		}
		got := testutil.ToFloat64(m.httpRequests.WithLabelValues(fiber.MethodGet, tc.path, tc.status))
		if got != 1 {
			t.Errorf("%s: expected one request labelled status=%s, got %v", tc.path, tc.status, got)
		}
	}
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"classified conflict", errx.Conflict("já está sendo utilizado"), fiber.StatusConflict},
		{"fiber error", fiber.ErrUnprocessableEntity, fiber.StatusUnprocessableEntity},
		{"unclassified", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := errorStatus(tc.err); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
