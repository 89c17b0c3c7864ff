package useradminsrv

import (
	"go.uber.org/zap"

	"github.com/infinitynet/api/pkg/breaker"
	"github.com/infinitynet/api/pkg/crudx"
	"github.com/infinitynet/api/pkg/useradmin"
)

type Service struct {
	*crudx.Service[useradmin.UserAdmin, useradmin.CreateUserAdmin, useradmin.UpdateUserAdmin, useradmin.ListFilter]
}

func NewService(repo useradmin.Repository, br *breaker.Breaker, log *zap.Logger) *Service {
	return &Service{
		Service: crudx.NewService[useradmin.UserAdmin, useradmin.CreateUserAdmin, useradmin.UpdateUserAdmin, useradmin.ListFilter](repo, "usuário administrador", br, log),
	}
}
