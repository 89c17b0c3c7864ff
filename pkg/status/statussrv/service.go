package statussrv

import (
	"go.uber.org/zap"

	"github.com/infinitynet/api/pkg/breaker"
	"github.com/infinitynet/api/pkg/crudx"
	"github.com/infinitynet/api/pkg/status"
)

type Service struct {
	*crudx.Service[status.Status, status.CreateStatus, status.UpdateStatus, status.ListFilter]
}

func NewService(repo status.Repository, br *breaker.Breaker, log *zap.Logger) *Service {
	return &Service{
		Service: crudx.NewService[status.Status, status.CreateStatus, status.UpdateStatus, status.ListFilter](repo, "status", br, log),
	}
}
