// Package crudx defines the generic repository/service contract shared by
// every entity module. Entities compose these pieces instead of inheriting
// from a base class: a Store implementation, one breaker per service, and
// the common route set.
package crudx

import (
	"context"

	"github.com/infinitynet/api/pkg/kernel"
)

// Store is the persistence contract an entity repository fulfills.
// T is the entity, C/U its create/update DTOs and F its typed list filter.
type Store[T, C, U, F any] interface {
	FindAll(ctx context.Context, opts kernel.PaginationOptions, filter F) (kernel.Paginated[T], error)
	FindByID(ctx context.Context, id string) (*T, error)
	FindByField(ctx context.Context, field, value string) (*T, error)
	Create(ctx context.Context, dto C) (*T, error)
	Update(ctx context.Context, id string, dto U) (*T, error)
	Delete(ctx context.Context, id string) error
}
