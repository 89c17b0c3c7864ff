package httpx

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/infinitynet/api/pkg/errx"
	"github.com/infinitynet/api/pkg/kernel"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseBody binds the JSON body into T and runs the declarative `validate`
// tag checks, converting failures into a VALIDATION error with per-field
// details.
func ParseBody[T any](c *fiber.Ctx) (*T, error) {
	var dto T
	if err := c.BodyParser(&dto); err != nil {
		return nil, errx.Validation("Corpo da requisição inválido").
			WithDetail("error", err.Error())
	}

	if err := validate.Struct(&dto); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]map[string]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, map[string]string{
					"path":    fe.Field(),
					"message": fieldMessage(fe),
				})
			}
			return nil, errx.Validation("Erro de validação").
				WithDetail("errors", fields)
		}
		return nil, errx.Validation(err.Error())
	}
	return &dto, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "email":
		return "e-mail inválido"
	case "uuid":
		return "identificador inválido"
	case "min":
		return fmt.Sprintf("deve ter pelo menos %s caracteres", fe.Param())
	case "max":
		return fmt.Sprintf("deve ter no máximo %s caracteres", fe.Param())
	case "len":
		return fmt.Sprintf("deve ter exatamente %s caracteres", fe.Param())
	case "numeric":
		return "deve conter apenas números"
	case "url":
		return "URL inválida"
	default:
		return fmt.Sprintf("falhou na regra %q", fe.Tag())
	}
}

// ParamID extracts and validates the :id route parameter as a UUID.
func ParamID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", errx.Validation("ID inválido").WithDetail("id", id)
	}
	return id, nil
}

// Pagination reads page/limit query parameters with the shared defaults.
func Pagination(c *fiber.Ctx) kernel.PaginationOptions {
	opts := kernel.PaginationOptions{
		Page:  queryInt(c, "page", kernel.DefaultPage),
		Limit: queryInt(c, "limit", kernel.DefaultLimit),
	}
	return opts.Normalize()
}

func queryInt(c *fiber.Ctx, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
