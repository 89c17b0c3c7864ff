package crudx

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/infinitynet/api/pkg/breaker"
	"github.com/infinitynet/api/pkg/errx"
	"github.com/infinitynet/api/pkg/kernel"
)

// Service wraps a Store with the entity's circuit breaker and error
// normalization. Every repository failure, classified or not, counts
// toward the breaker.
type Service[T, C, U, F any] struct {
	store  Store[T, C, U, F]
	entity string
	br     *breaker.Breaker
	log    *zap.Logger
}

// NewService builds a Service. The breaker instance is owned by this
// service and shared across all of its operations.
func NewService[T, C, U, F any](store Store[T, C, U, F], entity string, br *breaker.Breaker, log *zap.Logger) *Service[T, C, U, F] {
	if br == nil {
		br = breaker.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service[T, C, U, F]{store: store, entity: entity, br: br, log: log}
}

// Breaker exposes the service's breaker, mainly for metric hooks and tests.
func (s *Service[T, C, U, F]) Breaker() *breaker.Breaker {
	return s.br
}

// GetAll lists a page of records.
func (s *Service[T, C, U, F]) GetAll(ctx context.Context, opts kernel.PaginationOptions, filter F) (kernel.Paginated[T], error) {
	out, err := breaker.Execute(s.br, func() (kernel.Paginated[T], error) {
		return s.store.FindAll(ctx, opts.Normalize(), filter)
	})
	if err != nil {
		return out, s.normalize(err, "listar")
	}
	return out, nil
}

// GetByID fetches one record by id.
func (s *Service[T, C, U, F]) GetByID(ctx context.Context, id string) (*T, error) {
	out, err := breaker.Execute(s.br, func() (*T, error) {
		return s.store.FindByID(ctx, id)
	})
	if err != nil {
		return nil, s.normalize(err, "buscar")
	}
	return out, nil
}

// GetByField fetches one record by an exact field match.
func (s *Service[T, C, U, F]) GetByField(ctx context.Context, field, value string) (*T, error) {
	out, err := breaker.Execute(s.br, func() (*T, error) {
		return s.store.FindByField(ctx, field, value)
	})
	if err != nil {
		return nil, s.normalize(err, "buscar")
	}
	return out, nil
}

// Create persists a new record.
func (s *Service[T, C, U, F]) Create(ctx context.Context, dto C) (*T, error) {
	out, err := breaker.Execute(s.br, func() (*T, error) {
		return s.store.Create(ctx, dto)
	})
	if err != nil {
		return nil, s.normalize(err, "criar")
	}
	return out, nil
}

// Update mutates an existing record.
func (s *Service[T, C, U, F]) Update(ctx context.Context, id string, dto U) (*T, error) {
	out, err := breaker.Execute(s.br, func() (*T, error) {
		return s.store.Update(ctx, id, dto)
	})
	if err != nil {
		return nil, s.normalize(err, "atualizar")
	}
	return out, nil
}

// Delete removes a record.
func (s *Service[T, C, U, F]) Delete(ctx context.Context, id string) error {
	err := s.br.Do(func() error {
		return s.store.Delete(ctx, id)
	})
	if err != nil {
		return s.normalize(err, "remover")
	}
	return nil
}

// normalize passes classified errors through and converts anything else
// (driver faults, open circuit) into an INTERNAL error naming the entity
// and operation.
func (s *Service[T, C, U, F]) normalize(err error, op string) error {
	var appErr *errx.Error
	if errx.As(err, &appErr) {
		s.log.Warn("operation failed",
			zap.String("entity", s.entity),
			zap.String("op", op),
			zap.String("code", appErr.Code),
		)
		return appErr
	}

	s.log.Error("unclassified repository error",
		zap.String("entity", s.entity),
		zap.String("op", op),
		zap.Error(err),
	)
	return errx.Wrap(err, fmt.Sprintf("Erro ao %s %s", op, s.entity), errx.TypeInternal)
}
