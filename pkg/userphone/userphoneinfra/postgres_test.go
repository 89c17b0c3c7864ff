package userphoneinfra

import (
	"reflect"
	"testing"

	"github.com/infinitynet/api/pkg/userphone"
)

func strPtr(s string) *string { return &s }

func TestUpdateClausesPINOnly(t *testing.T) {
	set, args := updateClauses(userphone.UpdateUserPhone{}, "$2a$10$hash")

	if len(set) != 1 || set[0] != "pin = $1" {
		t.Fatalf("expected a single pin clause, got %v", set)
	}
	if len(args) != 1 || args[0] != "$2a$10$hash" {
		t.Fatalf("expected the hashed PIN as sole arg, got %v", args)
	}
}

func TestUpdateClausesPINAfterFields(t *testing.T) {
	dto := userphone.UpdateUserPhone{Telefone: strPtr("81999990000")}
	set, args := updateClauses(dto, "$2a$10$hash")

	want := []string{"telefone = $1", "pin = $2"}
	if !reflect.DeepEqual(set, want) {
		t.Fatalf("expected %v, got %v", want, set)
	}
	if !reflect.DeepEqual(args, []any{"81999990000", "$2a$10$hash"}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestUniqueExistsQueryExcludesOwnRecord(t *testing.T) {
	query, args := uniqueExistsQuery("telefone", "81999990000", "abc-123")

	want := "SELECT EXISTS(SELECT 1 FROM app_users WHERE telefone = $1 AND id <> $2)"
	if query != want {
		t.Errorf("expected %q, got %q", want, query)
	}
	if !reflect.DeepEqual(args, []any{"81999990000", "abc-123"}) {
		t.Errorf("unexpected args %v", args)
	}
}
