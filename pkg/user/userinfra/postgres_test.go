package userinfra

import (
	"reflect"
	"testing"

	"github.com/infinitynet/api/pkg/user"
)

func strPtr(s string) *string { return &s }

func TestUpdateClausesCredentialOnly(t *testing.T) {
	set, args := updateClauses(user.UpdateUser{}, "$2a$10$hash")

	if len(set) != 1 || set[0] != "senha = $1" {
		t.Fatalf("expected a single senha clause, got %v", set)
	}
	if len(args) != 1 || args[0] != "$2a$10$hash" {
		t.Fatalf("expected the hashed credential as sole arg, got %v", args)
	}
}

func TestUpdateClausesWithoutCredential(t *testing.T) {
	set, args := updateClauses(user.UpdateUser{}, "")
	if len(set) != 0 || len(args) != 0 {
		t.Fatalf("expected empty patch, got set=%v args=%v", set, args)
	}

	set, args = updateClauses(user.UpdateUser{Nome: strPtr("Maria")}, "")
	if !reflect.DeepEqual(set, []string{"nome = $1"}) {
		t.Fatalf("unexpected clauses %v", set)
	}
	if !reflect.DeepEqual(args, []any{"Maria"}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestUpdateClausesCredentialPlacedLast(t *testing.T) {
	dto := user.UpdateUser{
		Nome:   strPtr("Maria"),
		Cidade: strPtr("Recife"),
	}
	set, args := updateClauses(dto, "$2a$10$hash")

	want := []string{"nome = $1", "cidade = $2", "senha = $3"}
	if !reflect.DeepEqual(set, want) {
		t.Fatalf("expected %v, got %v", want, set)
	}
	if !reflect.DeepEqual(args, []any{"Maria", "Recife", "$2a$10$hash"}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestUniqueExistsQueryExcludesOwnRecord(t *testing.T) {
	query, args := uniqueExistsQuery("email", "maria@example.com", "abc-123")

	want := "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)"
	if query != want {
		t.Errorf("expected %q, got %q", want, query)
	}
	if !reflect.DeepEqual(args, []any{"maria@example.com", "abc-123"}) {
		t.Errorf("unexpected args %v", args)
	}
}

func TestUniqueExistsQueryOnCreate(t *testing.T) {
	query, args := uniqueExistsQuery("cpf", "12345678901", "")

	want := "SELECT EXISTS(SELECT 1 FROM users WHERE cpf = $1)"
	if query != want {
		t.Errorf("expected %q, got %q", want, query)
	}
	if !reflect.DeepEqual(args, []any{"12345678901"}) {
		t.Errorf("unexpected args %v", args)
	}
}
