package userphonesrv

import (
	"go.uber.org/zap"

	"github.com/infinitynet/api/pkg/breaker"
	"github.com/infinitynet/api/pkg/crudx"
	"github.com/infinitynet/api/pkg/userphone"
)

type Service struct {
	*crudx.Service[userphone.UserPhone, userphone.CreateUserPhone, userphone.UpdateUserPhone, userphone.ListFilter]
}

func NewService(repo userphone.Repository, br *breaker.Breaker, log *zap.Logger) *Service {
	return &Service{
		Service: crudx.NewService[userphone.UserPhone, userphone.CreateUserPhone, userphone.UpdateUserPhone, userphone.ListFilter](repo, "usuário do aplicativo", br, log),
	}
}
