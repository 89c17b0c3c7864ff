package userphone

import (
	"context"

	"github.com/infinitynet/api/pkg/crudx"
)

// Repository is the persistence contract for mobile-app users. Login
// resolves by telefone.
type Repository interface {
	crudx.Store[UserPhone, CreateUserPhone, UpdateUserPhone, ListFilter]
	FindByTelefone(ctx context.Context, telefone string) (*UserPhone, error)
	FindByCPF(ctx context.Context, cpf string) (*UserPhone, error)
	FindByEmail(ctx context.Context, email string) (*UserPhone, error)
	IncrementFailedAttempts(ctx context.Context, id string) error
	RegisterSuccessfulLogin(ctx context.Context, id string) error
}
