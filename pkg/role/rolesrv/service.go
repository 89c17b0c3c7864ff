package rolesrv

import (
	"go.uber.org/zap"

	"github.com/infinitynet/api/pkg/breaker"
	"github.com/infinitynet/api/pkg/crudx"
	"github.com/infinitynet/api/pkg/role"
)

// Service exposes role operations behind the shared breaker-wrapped
// generic service.
type Service struct {
	*crudx.Service[role.Role, role.CreateRole, role.UpdateRole, role.ListFilter]
}

func NewService(repo role.Repository, br *breaker.Breaker, log *zap.Logger) *Service {
	return &Service{
		Service: crudx.NewService[role.Role, role.CreateRole, role.UpdateRole, role.ListFilter](repo, "perfil", br, log),
	}
}
