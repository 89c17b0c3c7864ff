package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/infinitynet/api/pkg/kernel"
)

// Middleware builds the route guards from the token service and the
// legacy static API key.
type Middleware struct {
	tokens *TokenService
	apiKey string
}

func NewMiddleware(tokens *TokenService, apiKey string) *Middleware {
	return &Middleware{tokens: tokens, apiKey: apiKey}
}

// Authenticate extracts and verifies the Bearer token, storing the
// decoded identity in the request locals.
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return ErrMissingToken()
		}

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return ErrInvalidToken().WithDetail("error", "malformed authorization header")
		}

		claims, err := m.tokens.VerifyAccessToken(token)
		if err != nil {
			return err
		}

		ac := &kernel.AuthContext{
			UserID: claims.Subject,
			Name:   claims.Name,
			Email:  claims.Email,
			Source: claims.Source,
		}
		if claims.Role != nil {
			ac.Role = *claims.Role
		}
		c.Locals(kernel.LocalsKey, ac)

		return c.Next()
	}
}

// RequireLevel rejects requests whose role level is below min. It must
// run after Authenticate.
func (m *Middleware) RequireLevel(min int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ac, _ := c.Locals(kernel.LocalsKey).(*kernel.AuthContext)
		if !ac.IsValid() {
			return ErrMissingToken()
		}
		if !ac.HasLevel(min) {
			return ErrInsufficientLevel(min)
		}
		return c.Next()
	}
}

// APIKey checks the legacy X-API-Key header against the configured
// static key.
func (m *Middleware) APIKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get("X-API-Key")
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(m.apiKey)) != 1 {
			return ErrInvalidAPIKey()
		}
		return c.Next()
	}
}
