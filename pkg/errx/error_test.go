package errx_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/infinitynet/api/pkg/errx"
)

func TestTypeToHTTPStatus(t *testing.T) {
	cases := []struct {
		errType errx.Type
		status  int
	}{
		{errx.TypeValidation, http.StatusBadRequest},
		{errx.TypeAuthentication, http.StatusUnauthorized},
		{errx.TypeAuthorization, http.StatusForbidden},
		{errx.TypeNotFound, http.StatusNotFound},
		{errx.TypeConflict, http.StatusConflict},
		{errx.TypeBadRequest, http.StatusBadRequest},
		{errx.TypeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := errx.New("x", tc.errType).HTTPStatus; got != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.errType, tc.status, got)
		}
	}
}

func TestWrapPreservesClassification(t *testing.T) {
	orig := errx.Conflict("registro duplicado").WithDetail("field", "email")
	wrapped := errx.Wrap(orig, "erro ao criar usuário", errx.TypeConflict)

	if wrapped.HTTPStatus != http.StatusConflict {
		t.Fatalf("expected 409, got %d", wrapped.HTTPStatus)
	}
	if wrapped.Details["field"] != "email" {
		t.Fatal("details lost on wrap")
	}

	var target *errx.Error
	if !errors.As(wrapped, &target) {
		t.Fatal("wrapped error is not an *errx.Error")
	}
}

func TestWrapNil(t *testing.T) {
	if errx.Wrap(nil, "nothing", errx.TypeInternal) != nil {
		t.Fatal("wrapping nil should return nil")
	}
}

func TestRegistryPrefixesCodes(t *testing.T) {
	reg := errx.NewRegistry("AUTH")
	code := reg.Register("INVALID_CREDENTIALS", errx.TypeAuthentication, http.StatusUnauthorized, "Credenciais inválidas")

	err := reg.New(code)
	if err.Code != "AUTH_INVALID_CREDENTIALS" {
		t.Fatalf("expected prefixed code, got %q", err.Code)
	}
	if err.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", err.HTTPStatus)
	}

	custom := reg.NewWithMessage(code, "outra mensagem")
	if custom.Message != "outra mensagem" || custom.Code != "AUTH_INVALID_CREDENTIALS" {
		t.Fatalf("unexpected custom error: %+v", custom)
	}
}
