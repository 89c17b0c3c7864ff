package user

import (
	"net/http"
	"testing"

	"github.com/infinitynet/api/pkg/errx"
)

func TestRegisteredErrorCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    *errx.Error
		code   string
		status int
	}{
		{"not found", ErrNotFound(), "USER_NOT_FOUND", http.StatusNotFound},
		{"field taken", ErrFieldTaken("email"), "USER_FIELD_TAKEN", http.StatusConflict},
		{"role not found", ErrRoleNotFound(), "USER_ROLE_NOT_FOUND", http.StatusBadRequest},
		{"status not found", ErrStatusNotFound(), "USER_STATUS_NOT_FOUND", http.StatusBadRequest},
		{"empty update", ErrEmptyUpdate(), "USER_EMPTY_UPDATE", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
		})
	}
}
