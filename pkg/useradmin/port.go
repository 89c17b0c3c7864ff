package useradmin

import (
	"context"

	"github.com/infinitynet/api/pkg/crudx"
)

// Repository is the persistence contract for administrative users.
type Repository interface {
	crudx.Store[UserAdmin, CreateUserAdmin, UpdateUserAdmin, ListFilter]
	FindByCPF(ctx context.Context, cpf string) (*UserAdmin, error)
	FindByEmail(ctx context.Context, email string) (*UserAdmin, error)
	IncrementFailedAttempts(ctx context.Context, id string) error
	RegisterSuccessfulLogin(ctx context.Context, id string) error
}
