package userphone

import (
	"net/http"
	"time"

	"github.com/infinitynet/api/pkg/errx"
	"github.com/infinitynet/api/pkg/kernel"
)

// UserPhone is the mobile-app identity. It authenticates with
// telefone + a numeric PIN.
type UserPhone struct {
	ID             string     `json:"id"`
	Nome           string     `json:"nome"`
	Email          string     `json:"email"`
	Telefone       string     `json:"telefone"`
	CPF            string     `json:"cpf"`
	Endereco       string     `json:"endereco"`
	Avatar         *string    `json:"avatar"`
	Cidade         string     `json:"cidade"`
	Estado         string     `json:"estado"`
	PIN            string     `json:"-"`
	RoleID         string     `json:"roleId"`
	StatusID       string     `json:"statusId"`
	LastLoginAt    *time.Time `json:"lastLoginAt"`
	FailedAttempts int        `json:"failedAttempts"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	Role   *kernel.RoleRef   `json:"role,omitempty"`
	Status *kernel.StatusRef `json:"status,omitempty"`
}

type CreateUserPhone struct {
	Nome     string  `json:"nome" validate:"required,min=3,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Telefone string  `json:"telefone" validate:"required,min=10,max=15"`
	CPF      string  `json:"cpf" validate:"required,min=11,max=14"`
	Endereco string  `json:"endereco" validate:"required,min=5"`
	Avatar   *string `json:"avatar" validate:"omitempty,url"`
	Cidade   string  `json:"cidade" validate:"required,min=2"`
	Estado   string  `json:"estado" validate:"required,len=2"`
	PIN      string  `json:"pin" validate:"required,numeric,min=4,max=6"`
	RoleID   string  `json:"roleId" validate:"required,uuid"`
	StatusID string  `json:"statusId" validate:"required,uuid"`
}

type UpdateUserPhone struct {
	Nome     *string `json:"nome" validate:"omitempty,min=3,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Telefone *string `json:"telefone" validate:"omitempty,min=10,max=15"`
	CPF      *string `json:"cpf" validate:"omitempty,min=11,max=14"`
	Endereco *string `json:"endereco" validate:"omitempty,min=5"`
	Avatar   *string `json:"avatar" validate:"omitempty,url"`
	Cidade   *string `json:"cidade" validate:"omitempty,min=2"`
	Estado   *string `json:"estado" validate:"omitempty,len=2"`
	PIN      *string `json:"pin" validate:"omitempty,numeric,min=4,max=6"`
	RoleID   *string `json:"roleId" validate:"omitempty,uuid"`
	StatusID *string `json:"statusId" validate:"omitempty,uuid"`
}

type ListFilter struct {
	Nome     string
	Email    string
	CPF      string
	Cidade   string
	Estado   string
	RoleID   string
	StatusID string
}

var registry = errx.NewRegistry("USER_PHONE")

var (
	errNotFound       = registry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Usuário do aplicativo não encontrado")
	errFieldTaken     = registry.Register("FIELD_TAKEN", errx.TypeConflict, http.StatusConflict, "Campo único já está sendo utilizado")
	errRoleNotFound   = registry.Register("ROLE_NOT_FOUND", errx.TypeBadRequest, http.StatusBadRequest, "Perfil (role) não encontrado")
	errStatusNotFound = registry.Register("STATUS_NOT_FOUND", errx.TypeBadRequest, http.StatusBadRequest, "Status não encontrado")
	errEmptyUpdate    = registry.Register("EMPTY_UPDATE", errx.TypeValidation, http.StatusBadRequest, "É necessário fornecer pelo menos um campo para atualização")
)

func ErrNotFound() *errx.Error { return registry.New(errNotFound) }

func ErrFieldTaken(field string) *errx.Error {
	return registry.NewWithMessage(errFieldTaken, "O campo "+field+" já está sendo utilizado").
		WithDetail("field", field)
}

func ErrRoleNotFound() *errx.Error   { return registry.New(errRoleNotFound) }
func ErrStatusNotFound() *errx.Error { return registry.New(errStatusNotFound) }
func ErrEmptyUpdate() *errx.Error    { return registry.New(errEmptyUpdate) }
