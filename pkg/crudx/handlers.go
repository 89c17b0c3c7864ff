package crudx

import (
	"github.com/gofiber/fiber/v2"

	"github.com/infinitynet/api/pkg/httpx"
)

// Guards carries the middleware a route group needs. Authenticate is
// mandatory for mutations; APIKey is optional and, when present, enables
// the legacy /api-key variants.
type Guards struct {
	Authenticate fiber.Handler
	Write        fiber.Handler
	Delete       fiber.Handler
	APIKey       fiber.Handler
}

// RouteConfig holds the per-entity knobs of route registration.
type RouteConfig[F any] struct {
	// ParseFilter extracts the entity's list filter from query params.
	ParseFilter func(c *fiber.Ctx) F
}

// RegisterRoutes mounts the standard CRUD surface on router:
//
//	GET    /           public, paginated list
//	GET    /:id        public
//	POST   /           token + write level
//	PUT    /:id        token + write level
//	DELETE /:id        token + delete level
//
// When guards.APIKey is set the legacy X-API-Key mutation routes are
// mounted alongside the token-guarded ones.
func RegisterRoutes[T, C, U, F any](router fiber.Router, svc *Service[T, C, U, F], guards Guards, cfg RouteConfig[F]) {
	list := func(c *fiber.Ctx) error {
		var filter F
		if cfg.ParseFilter != nil {
			filter = cfg.ParseFilter(c)
		}
		page, err := svc.GetAll(c.UserContext(), httpx.Pagination(c), filter)
		if err != nil {
			return err
		}
		return httpx.Success(c, fiber.StatusOK, page)
	}

	getByID := func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		item, err := svc.GetByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		return httpx.Success(c, fiber.StatusOK, item)
	}

	create := func(c *fiber.Ctx) error {
		dto, err := httpx.ParseBody[C](c)
		if err != nil {
			return err
		}
		item, err := svc.Create(c.UserContext(), *dto)
		if err != nil {
			return err
		}
		return httpx.Success(c, fiber.StatusCreated, item)
	}

	update := func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		dto, err := httpx.ParseBody[U](c)
		if err != nil {
			return err
		}
		item, err := svc.Update(c.UserContext(), id, *dto)
		if err != nil {
			return err
		}
		return httpx.Success(c, fiber.StatusOK, item)
	}

	remove := func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return httpx.NoContent(c)
	}

	router.Get("/", list)
	router.Get("/:id", getByID)
	router.Post("/", guards.Authenticate, guards.Write, create)
	router.Put("/:id", guards.Authenticate, guards.Write, update)
	router.Delete("/:id", guards.Authenticate, guards.Delete, remove)

	if guards.APIKey != nil {
		router.Post("/api-key", guards.APIKey, create)
		router.Put("/api-key/:id", guards.APIKey, update)
		router.Delete("/api-key/:id", guards.APIKey, remove)
	}
}
