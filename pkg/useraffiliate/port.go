package useraffiliate

import (
	"context"

	"github.com/infinitynet/api/pkg/crudx"
)

// Repository is the persistence contract for affiliate users.
type Repository interface {
	crudx.Store[UserAffiliate, CreateUserAffiliate, UpdateUserAffiliate, ListFilter]
	FindByCPF(ctx context.Context, cpf string) (*UserAffiliate, error)
	FindByEmail(ctx context.Context, email string) (*UserAffiliate, error)
	IncrementFailedAttempts(ctx context.Context, id string) error
	RegisterSuccessfulLogin(ctx context.Context, id string) error
}
