package hashx_test

import (
	"strings"
	"testing"

	"github.com/infinitynet/api/pkg/hashx"
)

func TestHashAndCompare(t *testing.T) {
	h, err := hashx.Hash("123456", 4) // low cost keeps the test fast
	if err != nil {
		t.Fatal(err)
	}
	if h == "123456" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !strings.HasPrefix(h, "$2") {
		t.Fatalf("unexpected hash format: %q", h)
	}

	if !hashx.Compare(h, "123456") {
		t.Fatal("correct secret should match")
	}
	if hashx.Compare(h, "654321") {
		t.Fatal("wrong secret should not match")
	}
}

func TestHashDefaultCost(t *testing.T) {
	h, err := hashx.Hash("segredo", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !hashx.Compare(h, "segredo") {
		t.Fatal("round trip with default cost failed")
	}
}

func TestCompareGarbageHash(t *testing.T) {
	if hashx.Compare("not-a-bcrypt-hash", "x") {
		t.Fatal("garbage hash should never match")
	}
}
