package useraffiliatesrv

import (
	"go.uber.org/zap"

	"github.com/infinitynet/api/pkg/breaker"
	"github.com/infinitynet/api/pkg/crudx"
	"github.com/infinitynet/api/pkg/useraffiliate"
)

type Service struct {
	*crudx.Service[useraffiliate.UserAffiliate, useraffiliate.CreateUserAffiliate, useraffiliate.UpdateUserAffiliate, useraffiliate.ListFilter]
}

func NewService(repo useraffiliate.Repository, br *breaker.Breaker, log *zap.Logger) *Service {
	return &Service{
		Service: crudx.NewService[useraffiliate.UserAffiliate, useraffiliate.CreateUserAffiliate, useraffiliate.UpdateUserAffiliate, useraffiliate.ListFilter](repo, "usuário afiliado", br, log),
	}
}
