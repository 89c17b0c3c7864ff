package role

import (
	"net/http"

	"github.com/infinitynet/api/pkg/errx"
)

// Role is a privilege profile. Higher levels unlock more of the API
// surface (50 for writes, 100 for deletes).
type Role struct {
	ID     string `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Level  int    `json:"level" db:"level"`
	Active bool   `json:"active" db:"active"`
}

type CreateRole struct {
	Name   string `json:"name" validate:"required,min=2,max=50"`
	Level  int    `json:"level" validate:"required,min=1,max=100"`
	Active *bool  `json:"active"`
}

type UpdateRole struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=50"`
	Level  *int    `json:"level" validate:"omitempty,min=1,max=100"`
	Active *bool   `json:"active"`
}

// ListFilter narrows paginated listings.
type ListFilter struct {
	Name   string
	Level  *int
	Active *bool
}

var registry = errx.NewRegistry("ROLE")

var (
	errNotFound   = registry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Perfil não encontrado")
	errNameTaken  = registry.Register("NAME_TAKEN", errx.TypeConflict, http.StatusConflict, "O campo name já está sendo utilizado")
	errInUse      = registry.Register("IN_USE", errx.TypeConflict, http.StatusConflict, "O perfil está sendo utilizado por um ou mais usuários e não pode ser removido")
	errEmptyPatch = registry.Register("EMPTY_UPDATE", errx.TypeValidation, http.StatusBadRequest, "É necessário fornecer pelo menos um campo para atualização")
)

func ErrNotFound() *errx.Error   { return registry.New(errNotFound) }
func ErrNameTaken() *errx.Error  { return registry.New(errNameTaken) }
func ErrInUse() *errx.Error      { return registry.New(errInUse) }
func ErrEmptyUpdate() *errx.Error { return registry.New(errEmptyPatch) }

// Empty reports whether the patch carries no fields.
func (u UpdateRole) Empty() bool {
	return u.Name == nil && u.Level == nil && u.Active == nil
}
