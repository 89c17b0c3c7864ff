// Package auth holds token issuance/verification, the multi-profile
// login flows and the route middleware built on top of them.
package auth

import (
	"net/http"

	"github.com/infinitynet/api/pkg/errx"
	"github.com/infinitynet/api/pkg/kernel"
)

// Source discriminates which identity table a token belongs to.
const (
	SourceUser      = "user"
	SourceAdmin     = "admin"
	SourceAffiliate = "affiliate"
	SourcePhone     = "phone"
)

// MaxFailedAttempts is the lockout threshold. Once reached, logins are
// refused until the counter is manually reset.
const MaxFailedAttempts = 5

// ActiveStatusName is the status a user must hold to authenticate.
const ActiveStatusName = "Ativo"

// UserSnapshot is the identity summary embedded in auth responses and
// access-token claims.
type UserSnapshot struct {
	ID     string         `json:"id"`
	Nome   string         `json:"nome"`
	Email  string         `json:"email"`
	Source string         `json:"source"`
	Role   kernel.RoleRef `json:"role"`
}

// AuthResponse is the login payload.
type AuthResponse struct {
	User         UserSnapshot `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
}

// RefreshResponse carries the re-issued access token.
type RefreshResponse struct {
	Token string `json:"token"`
}

var registry = errx.NewRegistry("AUTH")

var (
	errInvalidCredentials = registry.Register("INVALID_CREDENTIALS", errx.TypeAuthentication, http.StatusUnauthorized, "Credenciais inválidas")
	errUserInactive       = registry.Register("USER_INACTIVE", errx.TypeAuthentication, http.StatusUnauthorized, "Usuário inativo")
	errAccountLocked      = registry.Register("ACCOUNT_LOCKED", errx.TypeAuthentication, http.StatusUnauthorized, "Conta bloqueada por excesso de tentativas incorretas. Por favor, contate o suporte.")
	errInvalidToken       = registry.Register("INVALID_TOKEN", errx.TypeAuthentication, http.StatusUnauthorized, "Token inválido")
	errInvalidSource      = registry.Register("INVALID_SOURCE", errx.TypeAuthentication, http.StatusUnauthorized, "Fonte de usuário inválida")
	errMissingToken       = registry.Register("MISSING_TOKEN", errx.TypeAuthentication, http.StatusUnauthorized, "Token de autenticação não fornecido")
	errInsufficientLevel  = registry.Register("INSUFFICIENT_LEVEL", errx.TypeAuthorization, http.StatusForbidden, "Nível de acesso insuficiente")
	errInvalidAPIKey      = registry.Register("INVALID_API_KEY", errx.TypeAuthentication, http.StatusUnauthorized, "Chave de API inválida")
)

func ErrInvalidCredentials() *errx.Error { return registry.New(errInvalidCredentials) }
func ErrUserInactive() *errx.Error       { return registry.New(errUserInactive) }
func ErrAccountLocked() *errx.Error      { return registry.New(errAccountLocked) }
func ErrInvalidToken() *errx.Error       { return registry.New(errInvalidToken) }
func ErrInvalidSource() *errx.Error      { return registry.New(errInvalidSource) }
func ErrMissingToken() *errx.Error       { return registry.New(errMissingToken) }
func ErrInvalidAPIKey() *errx.Error      { return registry.New(errInvalidAPIKey) }

// ErrInsufficientLevel names the required level in the message.
func ErrInsufficientLevel(required int) *errx.Error {
	return registry.New(errInsufficientLevel).WithDetail("requiredLevel", required)
}
