package crudx

import (
	"context"
	"errors"
	"testing"

	"github.com/infinitynet/api/pkg/breaker"
	"github.com/infinitynet/api/pkg/errx"
	"github.com/infinitynet/api/pkg/kernel"
)

type widget struct {
	ID   string
	Name string
}

type widgetCreate struct{ Name string }
type widgetUpdate struct{ Name string }
type widgetFilter struct{ Name string }

type fakeStore struct {
	findAllErr  error
	findByIDFn  func(id string) (*widget, error)
	createErr   error
	deleteErr   error
	calls       int
	lastOptions kernel.PaginationOptions
}

func (f *fakeStore) FindAll(_ context.Context, opts kernel.PaginationOptions, _ widgetFilter) (kernel.Paginated[widget], error) {
	f.calls++
	f.lastOptions = opts
	if f.findAllErr != nil {
		return kernel.Paginated[widget]{}, f.findAllErr
	}
	return kernel.NewPaginated([]widget{{ID: "1", Name: "a"}}, opts.Page, opts.Limit, 1), nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*widget, error) {
	f.calls++
	if f.findByIDFn != nil {
		return f.findByIDFn(id)
	}
	return &widget{ID: id, Name: "a"}, nil
}

func (f *fakeStore) FindByField(_ context.Context, _, value string) (*widget, error) {
	f.calls++
	return &widget{ID: "1", Name: value}, nil
}

func (f *fakeStore) Create(_ context.Context, dto widgetCreate) (*widget, error) {
	f.calls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &widget{ID: "1", Name: dto.Name}, nil
}

func (f *fakeStore) Update(_ context.Context, id string, dto widgetUpdate) (*widget, error) {
	f.calls++
	return &widget{ID: id, Name: dto.Name}, nil
}

func (f *fakeStore) Delete(_ context.Context, _ string) error {
	f.calls++
	return f.deleteErr
}

func newTestService(store *fakeStore, opts ...breaker.Option) *Service[widget, widgetCreate, widgetUpdate, widgetFilter] {
	return NewService[widget, widgetCreate, widgetUpdate, widgetFilter](store, "widget", breaker.New(opts...), nil)
}

func TestGetAllNormalizesPagination(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	page, err := svc.GetAll(context.Background(), kernel.PaginationOptions{Page: 0, Limit: 500}, widgetFilter{})
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if store.lastOptions.Page != 1 || store.lastOptions.Limit != kernel.MaxLimit {
		t.Fatalf("options not normalized: %+v", store.lastOptions)
	}
	if len(page.Data) != 1 {
		t.Fatalf("expected one record, got %d", len(page.Data))
	}
}

func TestClassifiedErrorPassesThrough(t *testing.T) {
	reg := errx.NewRegistry("WIDGET")
	code := reg.Register("NOT_FOUND", errx.TypeNotFound, 404, "Registro não encontrado")
	store := &fakeStore{findByIDFn: func(string) (*widget, error) { return nil, reg.New(code) }}
	svc := newTestService(store)

	_, err := svc.GetByID(context.Background(), "1")
	var appErr *errx.Error
	if !errx.As(err, &appErr) {
		t.Fatalf("expected *errx.Error, got %T", err)
	}
	if appErr.Code != "WIDGET_NOT_FOUND" {
		t.Fatalf("expected pass-through code, got %s", appErr.Code)
	}
}

func TestUnclassifiedErrorBecomesInternal(t *testing.T) {
	store := &fakeStore{createErr: errors.New("driver: bad connection")}
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), widgetCreate{Name: "a"})
	var appErr *errx.Error
	if !errx.As(err, &appErr) {
		t.Fatalf("expected *errx.Error, got %T", err)
	}
	if appErr.Type != errx.TypeInternal {
		t.Fatalf("expected internal type, got %s", appErr.Type)
	}
	if appErr.Message != "Erro ao criar widget" {
		t.Fatalf("unexpected message: %s", appErr.Message)
	}
}

func TestOpenBreakerSkipsStore(t *testing.T) {
	store := &fakeStore{deleteErr: errors.New("timeout")}
	svc := newTestService(store, breaker.WithThreshold(2))

	for i := 0; i < 2; i++ {
		if err := svc.Delete(context.Background(), "1"); err == nil {
			t.Fatal("expected error")
		}
	}
	if svc.Breaker().State() != breaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", svc.Breaker().State())
	}

	before := store.calls
	err := svc.Delete(context.Background(), "1")
	if store.calls != before {
		t.Fatal("store invoked while breaker open")
	}
	var appErr *errx.Error
	if !errx.As(err, &appErr) || appErr.Type != errx.TypeInternal {
		t.Fatalf("expected normalized internal error, got %v", err)
	}
}
