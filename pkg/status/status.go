package status

import (
	"net/http"

	"github.com/infinitynet/api/pkg/errx"
)

// Status is reference data marking user records as active or inactive.
// Authentication only admits users whose status is named "Ativo".
type Status struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type CreateStatus struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

type UpdateStatus struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=50"`
}

// ListFilter narrows paginated listings.
type ListFilter struct {
	Name string
}

var registry = errx.NewRegistry("STATUS")

var (
	errNotFound   = registry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Status não encontrado")
	errNameTaken  = registry.Register("NAME_TAKEN", errx.TypeConflict, http.StatusConflict, "O campo name já está sendo utilizado")
	errInUse      = registry.Register("IN_USE", errx.TypeConflict, http.StatusConflict, "O status está sendo utilizado por um ou mais usuários e não pode ser removido")
	errEmptyPatch = registry.Register("EMPTY_UPDATE", errx.TypeValidation, http.StatusBadRequest, "É necessário fornecer pelo menos um campo para atualização")
)

func ErrNotFound() *errx.Error    { return registry.New(errNotFound) }
func ErrNameTaken() *errx.Error   { return registry.New(errNameTaken) }
func ErrInUse() *errx.Error       { return registry.New(errInUse) }
func ErrEmptyUpdate() *errx.Error { return registry.New(errEmptyPatch) }

func (u UpdateStatus) Empty() bool {
	return u.Name == nil
}
