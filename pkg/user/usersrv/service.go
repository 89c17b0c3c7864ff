package usersrv

import (
	"go.uber.org/zap"

	"github.com/infinitynet/api/pkg/breaker"
	"github.com/infinitynet/api/pkg/crudx"
	"github.com/infinitynet/api/pkg/user"
)

type Service struct {
	*crudx.Service[user.User, user.CreateUser, user.UpdateUser, user.ListFilter]
}

func NewService(repo user.Repository, br *breaker.Breaker, log *zap.Logger) *Service {
	return &Service{
		Service: crudx.NewService[user.User, user.CreateUser, user.UpdateUser, user.ListFilter](repo, "usuário", br, log),
	}
}
