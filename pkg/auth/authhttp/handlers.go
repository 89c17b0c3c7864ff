package authhttp

import (
	"github.com/gofiber/fiber/v2"

	"github.com/infinitynet/api/pkg/auth"
	"github.com/infinitynet/api/pkg/httpx"
)

type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required,min=6"`
}

type loginCPFRequest struct {
	CPF   string `json:"cpf" validate:"required,min=11,max=14"`
	Senha string `json:"senha" validate:"required,min=6"`
}

type loginPhoneRequest struct {
	Telefone string `json:"telefone" validate:"required,min=10,max=15"`
	PIN      string `json:"pin" validate:"required,numeric,min=4,max=6"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RegisterRoutes mounts the authentication endpoints under the given
// router (normally /api/auth).
func RegisterRoutes(router fiber.Router, svc *auth.Service) {
	router.Post("/login", func(c *fiber.Ctx) error {
		req, err := httpx.ParseBody[loginRequest](c)
		if err != nil {
			return err
		}
		out, err := svc.Login(c.UserContext(), req.Email, req.Senha)
		if err != nil {
			return err
		}
		return httpx.Success(c, fiber.StatusOK, out)
	})

	router.Post("/login/admin", func(c *fiber.Ctx) error {
		req, err := httpx.ParseBody[loginCPFRequest](c)
		if err != nil {
			return err
		}
		out, err := svc.LoginAdmin(c.UserContext(), req.CPF, req.Senha)
		if err != nil {
			return err
		}
		return httpx.Success(c, fiber.StatusOK, out)
	})

	router.Post("/login/affiliate", func(c *fiber.Ctx) error {
		req, err := httpx.ParseBody[loginCPFRequest](c)
		if err != nil {
			return err
		}
		out, err := svc.LoginAffiliate(c.UserContext(), req.CPF, req.Senha)
		if err != nil {
			return err
		}
		return httpx.Success(c, fiber.StatusOK, out)
	})

	router.Post("/login/phone", func(c *fiber.Ctx) error {
		req, err := httpx.ParseBody[loginPhoneRequest](c)
		if err != nil {
			return err
		}
		out, err := svc.LoginPhone(c.UserContext(), req.Telefone, req.PIN)
		if err != nil {
			return err
		}
		return httpx.Success(c, fiber.StatusOK, out)
	})

	router.Post("/refresh", func(c *fiber.Ctx) error {
		req, err := httpx.ParseBody[refreshRequest](c)
		if err != nil {
			return err
		}
		out, err := svc.Refresh(c.UserContext(), req.RefreshToken)
		if err != nil {
			return err
		}
		return httpx.Success(c, fiber.StatusOK, out)
	})
}
