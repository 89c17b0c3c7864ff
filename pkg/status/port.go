package status

import (
	"context"

	"github.com/infinitynet/api/pkg/crudx"
)

// Repository is the persistence contract for statuses. Delete enforces
// the in-use guard, same as roles.
type Repository interface {
	crudx.Store[Status, CreateStatus, UpdateStatus, ListFilter]
	FindByName(ctx context.Context, name string) (*Status, error)
}
