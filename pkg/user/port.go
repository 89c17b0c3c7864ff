package user

import (
	"context"

	"github.com/infinitynet/api/pkg/crudx"
)

// Repository is the persistence contract for generic users. FindByEmail
// and FindByCPF return the record with its role and status joined, which
// authentication depends on. The login bookkeeping methods back the
// lockout policy.
type Repository interface {
	crudx.Store[User, CreateUser, UpdateUser, ListFilter]
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByCPF(ctx context.Context, cpf string) (*User, error)
	IncrementFailedAttempts(ctx context.Context, id string) error
	RegisterSuccessfulLogin(ctx context.Context, id string) error
}
