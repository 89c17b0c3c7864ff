package kernel_test

import (
	"testing"

	"github.com/infinitynet/api/pkg/kernel"
)

func TestNewPaginated(t *testing.T) {
	p := kernel.NewPaginated([]int{1, 2, 3}, 1, 3, 10)

	if p.TotalPages != 4 {
		t.Fatalf("expected 4 pages, got %d", p.TotalPages)
	}
	if !p.HasNext() {
		t.Fatal("expected more pages after page 1")
	}

	last := kernel.NewPaginated([]int{10}, 4, 3, 10)
	if last.HasNext() {
		t.Fatal("page 4 of 4 should not have next")
	}
}

func TestNewPaginatedNilData(t *testing.T) {
	p := kernel.NewPaginated[string](nil, 1, 10, 0)
	if p.Data == nil {
		t.Fatal("data should marshal as an empty array, not null")
	}
	if p.TotalPages != 0 {
		t.Fatalf("expected 0 pages, got %d", p.TotalPages)
	}
}

func TestPaginationOptionsNormalize(t *testing.T) {
	cases := []struct {
		in   kernel.PaginationOptions
		page int
		lim  int
	}{
		{kernel.PaginationOptions{}, 1, 10},
		{kernel.PaginationOptions{Page: -2, Limit: 0}, 1, 10},
		{kernel.PaginationOptions{Page: 3, Limit: 500}, 3, 100},
		{kernel.PaginationOptions{Page: 2, Limit: 25}, 2, 25},
	}

	for _, tc := range cases {
		got := tc.in.Normalize()
		if got.Page != tc.page || got.Limit != tc.lim {
			t.Errorf("Normalize(%+v) = %+v", tc.in, got)
		}
	}

	opts := kernel.PaginationOptions{Page: 3, Limit: 20}
	if opts.Offset() != 40 {
		t.Fatalf("expected offset 40, got %d", opts.Offset())
	}
}

func TestAuthContextHasLevel(t *testing.T) {
	ac := &kernel.AuthContext{UserID: "u1", Role: kernel.RoleRef{Level: 50}}

	if !ac.HasLevel(50) {
		t.Fatal("level 50 should satisfy minimum 50")
	}
	if ac.HasLevel(100) {
		t.Fatal("level 50 should not satisfy minimum 100")
	}

	var missing *kernel.AuthContext
	if missing.HasLevel(0) {
		t.Fatal("nil context should never satisfy a level check")
	}
	if missing.IsValid() {
		t.Fatal("nil context should not be valid")
	}
}
