package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/infinitynet/api/pkg/errx"
	"github.com/infinitynet/api/pkg/kernel"
)

func newGuardedApp(t *testing.T, mw *Middleware, minLevel int) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *errx.Error
			if errx.As(err, &appErr) {
				return c.Status(appErr.HTTPStatus).JSON(appErr)
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
	app.Post("/guarded", mw.Authenticate(), mw.RequireLevel(minLevel), func(c *fiber.Ctx) error {
		ac, _ := c.Locals(kernel.LocalsKey).(*kernel.AuthContext)
		return c.JSON(fiber.Map{"userId": ac.UserID})
	})
	app.Post("/legacy", mw.APIKey(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func issueToken(t *testing.T, tokens *TokenService, level int) string {
	t.Helper()
	snapshot := testSnapshot()
	snapshot.Role.Level = level
	token, err := tokens.IssueAccessToken(snapshot)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	return token
}

func doRequest(t *testing.T, app *fiber.App, path string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestAuthenticateMissingHeader(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour, 24*time.Hour, "api-infinitynet")
	app := newGuardedApp(t, NewMiddleware(tokens, "legacy-key"), 50)

	resp := doRequest(t, app, "/guarded", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour, 24*time.Hour, "api-infinitynet")
	app := newGuardedApp(t, NewMiddleware(tokens, "legacy-key"), 50)

	for _, header := range []string{"Bearer", "Bearer ", "Basic abc", "garbage"} {
		resp := doRequest(t, app, "/guarded", map[string]string{fiber.HeaderAuthorization: header})
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, resp.StatusCode)
		}
	}
}

func TestRequireLevelAllowsSufficientRole(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour, 24*time.Hour, "api-infinitynet")
	app := newGuardedApp(t, NewMiddleware(tokens, "legacy-key"), 50)

	resp := doRequest(t, app, "/guarded", map[string]string{
		fiber.HeaderAuthorization: "Bearer " + issueToken(t, tokens, 50),
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRequireLevelRejectsLowRole(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour, 24*time.Hour, "api-infinitynet")
	app := newGuardedApp(t, NewMiddleware(tokens, "legacy-key"), 100)

	resp := doRequest(t, app, "/guarded", map[string]string{
		fiber.HeaderAuthorization: "Bearer " + issueToken(t, tokens, 50),
	})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour, 24*time.Hour, "api-infinitynet")
	past := NewTokenService("test-secret", time.Hour, 24*time.Hour, "api-infinitynet").
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	token, err := past.IssueAccessToken(testSnapshot())
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	app := newGuardedApp(t, NewMiddleware(tokens, "legacy-key"), 50)
	resp := doRequest(t, app, "/guarded", map[string]string{
		fiber.HeaderAuthorization: "Bearer " + token,
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAPIKeyGuard(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour, 24*time.Hour, "api-infinitynet")
	app := newGuardedApp(t, NewMiddleware(tokens, "legacy-key"), 50)

	cases := []struct {
		name string
		key  string
		want int
	}{
		{"valid key", "legacy-key", fiber.StatusOK},
		{"wrong key", "other-key", fiber.StatusUnauthorized},
		{"missing key", "", fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.key != "" {
				headers["X-API-Key"] = tc.key
			}
			resp := doRequest(t, app, "/legacy", headers)
			if resp.StatusCode != tc.want {
				t.Errorf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}
