package role

import (
	"context"

	"github.com/infinitynet/api/pkg/crudx"
)

// Repository is the persistence contract for roles. Delete enforces the
// in-use guard: a role referenced by any user record cannot be removed.
type Repository interface {
	crudx.Store[Role, CreateRole, UpdateRole, ListFilter]
	FindByName(ctx context.Context, name string) (*Role, error)
}
