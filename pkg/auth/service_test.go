package auth

import (
	"context"
	"testing"
	"time"

	"github.com/infinitynet/api/pkg/errx"
	"github.com/infinitynet/api/pkg/hashx"
	"github.com/infinitynet/api/pkg/kernel"
	"github.com/infinitynet/api/pkg/user"
	"github.com/infinitynet/api/pkg/userphone"
)

// bcrypt min cost keeps the tests fast.
const testBcryptCost = 4

type fakeUserRepo struct {
	record     *user.User
	increments int
	successes  int
}

func (f *fakeUserRepo) FindAll(context.Context, kernel.PaginationOptions, user.ListFilter) (kernel.Paginated[user.User], error) {
	return kernel.Paginated[user.User]{}, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*user.User, error) {
	if f.record != nil && f.record.ID == id {
		return f.record, nil
	}
	return nil, user.ErrNotFound()
}

func (f *fakeUserRepo) FindByField(context.Context, string, string) (*user.User, error) {
	return nil, user.ErrNotFound()
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	if f.record != nil && f.record.Email == email {
		return f.record, nil
	}
	return nil, user.ErrNotFound()
}

func (f *fakeUserRepo) FindByCPF(context.Context, string) (*user.User, error) {
	return nil, user.ErrNotFound()
}

func (f *fakeUserRepo) Create(context.Context, user.CreateUser) (*user.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Update(context.Context, string, user.UpdateUser) (*user.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Delete(context.Context, string) error { return nil }

func (f *fakeUserRepo) IncrementFailedAttempts(context.Context, string) error {
	f.increments++
	f.record.FailedAttempts++
	return nil
}

func (f *fakeUserRepo) RegisterSuccessfulLogin(context.Context, string) error {
	f.successes++
	f.record.FailedAttempts = 0
	now := time.Now()
	f.record.LastLoginAt = &now
	return nil
}

type fakePhoneRepo struct {
	record *userphone.UserPhone
}

func (f *fakePhoneRepo) FindAll(context.Context, kernel.PaginationOptions, userphone.ListFilter) (kernel.Paginated[userphone.UserPhone], error) {
	return kernel.Paginated[userphone.UserPhone]{}, nil
}

func (f *fakePhoneRepo) FindByID(_ context.Context, id string) (*userphone.UserPhone, error) {
	if f.record != nil && f.record.ID == id {
		return f.record, nil
	}
	return nil, userphone.ErrNotFound()
}

func (f *fakePhoneRepo) FindByField(context.Context, string, string) (*userphone.UserPhone, error) {
	return nil, userphone.ErrNotFound()
}

func (f *fakePhoneRepo) FindByTelefone(_ context.Context, telefone string) (*userphone.UserPhone, error) {
	if f.record != nil && f.record.Telefone == telefone {
		return f.record, nil
	}
	return nil, userphone.ErrNotFound()
}

func (f *fakePhoneRepo) FindByCPF(context.Context, string) (*userphone.UserPhone, error) {
	return nil, userphone.ErrNotFound()
}

func (f *fakePhoneRepo) FindByEmail(context.Context, string) (*userphone.UserPhone, error) {
	return nil, userphone.ErrNotFound()
}

func (f *fakePhoneRepo) Create(context.Context, userphone.CreateUserPhone) (*userphone.UserPhone, error) {
	return nil, nil
}

func (f *fakePhoneRepo) Update(context.Context, string, userphone.UpdateUserPhone) (*userphone.UserPhone, error) {
	return nil, nil
}

func (f *fakePhoneRepo) Delete(context.Context, string) error { return nil }

func (f *fakePhoneRepo) IncrementFailedAttempts(context.Context, string) error {
	f.record.FailedAttempts++
	return nil
}

func (f *fakePhoneRepo) RegisterSuccessfulLogin(context.Context, string) error {
	f.record.FailedAttempts = 0
	return nil
}

func activeUser(t *testing.T, senha string) *user.User {
	t.Helper()
	hashed, err := hashx.Hash(senha, testBcryptCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &user.User{
		ID:     "u1",
		Nome:   "Maria Silva",
		Email:  "maria@example.com",
		Senha:  hashed,
		Role:   &kernel.RoleRef{ID: "r1", Name: "Gerente", Level: 50},
		Status: &kernel.StatusRef{ID: "s1", Name: "Ativo"},
	}
}

func newTestAuth(users *fakeUserRepo, phones *fakePhoneRepo) *Service {
	if users == nil {
		users = &fakeUserRepo{}
	}
	if phones == nil {
		phones = &fakePhoneRepo{}
	}
	tokens := NewTokenService("test-secret", time.Hour, 24*time.Hour, "api-infinitynet")
	return NewService(users, nil, nil, phones, tokens, nil)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *errx.Error
	if !errx.As(err, &appErr) {
		t.Fatalf("expected *errx.Error, got %v", err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}

func TestLoginSuccess(t *testing.T) {
	users := &fakeUserRepo{record: activeUser(t, "senha123")}
	users.record.FailedAttempts = 3
	svc := newTestAuth(users, nil)

	out, err := svc.Login(context.Background(), "maria@example.com", "senha123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if out.Token == "" || out.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if out.User.Source != SourceUser || out.User.Role.Level != 50 {
		t.Errorf("unexpected snapshot: %+v", out.User)
	}
	if users.successes != 1 {
		t.Errorf("expected successful login to be recorded, got %d", users.successes)
	}
	if users.record.FailedAttempts != 0 {
		t.Errorf("expected counter reset, got %d", users.record.FailedAttempts)
	}
	if users.record.LastLoginAt == nil {
		t.Error("expected last login to be stamped")
	}
}

func TestLoginUnknownEmailIsEnumerationSafe(t *testing.T) {
	svc := newTestAuth(&fakeUserRepo{}, nil)

	_, err := svc.Login(context.Background(), "ghost@example.com", "senha123")
	assertCode(t, err, "AUTH_INVALID_CREDENTIALS")

	users := &fakeUserRepo{record: activeUser(t, "senha123")}
	svc = newTestAuth(users, nil)
	_, err2 := svc.Login(context.Background(), "maria@example.com", "errada1")
	assertCode(t, err2, "AUTH_INVALID_CREDENTIALS")

	var a, b *errx.Error
	errx.As(err, &a)
	errx.As(err2, &b)
	if a.Message != b.Message {
		t.Fatalf("not-found and wrong-secret must share a message: %q vs %q", a.Message, b.Message)
	}
}

func TestLoginWrongSecretIncrementsCounter(t *testing.T) {
	users := &fakeUserRepo{record: activeUser(t, "senha123")}
	svc := newTestAuth(users, nil)

	_, err := svc.Login(context.Background(), "maria@example.com", "errada1")
	assertCode(t, err, "AUTH_INVALID_CREDENTIALS")
	if users.increments != 1 {
		t.Fatalf("expected one increment, got %d", users.increments)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	users := &fakeUserRepo{record: activeUser(t, "senha123")}
	users.record.Status = &kernel.StatusRef{ID: "s2", Name: "Inativo"}
	svc := newTestAuth(users, nil)

	_, err := svc.Login(context.Background(), "maria@example.com", "senha123")
	assertCode(t, err, "AUTH_USER_INACTIVE")
}

func TestLockoutAtThreshold(t *testing.T) {
	users := &fakeUserRepo{record: activeUser(t, "senha123")}
	svc := newTestAuth(users, nil)

	for i := 0; i < MaxFailedAttempts; i++ {
		_, err := svc.Login(context.Background(), "maria@example.com", "errada1")
		assertCode(t, err, "AUTH_INVALID_CREDENTIALS")
	}
	if users.record.FailedAttempts != MaxFailedAttempts {
		t.Fatalf("expected %d attempts recorded, got %d", MaxFailedAttempts, users.record.FailedAttempts)
	}

	// Even the correct secret is refused once locked.
	_, err := svc.Login(context.Background(), "maria@example.com", "senha123")
	assertCode(t, err, "AUTH_ACCOUNT_LOCKED")
	if users.increments != MaxFailedAttempts {
		t.Fatalf("locked attempt must not increment, got %d", users.increments)
	}
}

func TestLoginPhone(t *testing.T) {
	hashed, err := hashx.Hash("1234", testBcryptCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	phones := &fakePhoneRepo{record: &userphone.UserPhone{
		ID:       "p1",
		Nome:     "João",
		Email:    "joao@example.com",
		Telefone: "11987654321",
		PIN:      hashed,
		Role:     &kernel.RoleRef{ID: "r2", Name: "Operador", Level: 10},
		Status:   &kernel.StatusRef{ID: "s1", Name: "Ativo"},
	}}
	svc := newTestAuth(nil, phones)

	out, err := svc.LoginPhone(context.Background(), "11987654321", "1234")
	if err != nil {
		t.Fatalf("LoginPhone: %v", err)
	}
	if out.User.Source != SourcePhone {
		t.Errorf("unexpected source %q", out.User.Source)
	}
}

func TestRefreshReissuesAccessToken(t *testing.T) {
	users := &fakeUserRepo{record: activeUser(t, "senha123")}
	svc := newTestAuth(users, nil)

	login, err := svc.Login(context.Background(), "maria@example.com", "senha123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	out, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if out.Token == "" {
		t.Fatal("expected a new access token")
	}
}

func TestRefreshInactiveUser(t *testing.T) {
	users := &fakeUserRepo{record: activeUser(t, "senha123")}
	svc := newTestAuth(users, nil)

	login, err := svc.Login(context.Background(), "maria@example.com", "senha123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	users.record.Status = &kernel.StatusRef{ID: "s2", Name: "Inativo"}
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assertCode(t, err, "AUTH_USER_INACTIVE")
}

func TestRefreshUnknownSource(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour, 24*time.Hour, "api-infinitynet")
	svc := NewService(&fakeUserRepo{}, nil, nil, &fakePhoneRepo{}, tokens, nil)

	forged, err := tokens.IssueRefreshToken("u1", "intruder")
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}
	_, err = svc.Refresh(context.Background(), forged)
	assertCode(t, err, "AUTH_INVALID_SOURCE")
}

func TestRefreshRejectsAccessTokenWithoutSource(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour, 24*time.Hour, "api-infinitynet")
	svc := NewService(&fakeUserRepo{}, nil, nil, &fakePhoneRepo{}, tokens, nil)

	sourceless, err := tokens.IssueAccessToken(UserSnapshot{ID: "u1"})
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	_, err = svc.Refresh(context.Background(), sourceless)
	assertCode(t, err, "AUTH_INVALID_TOKEN")
}
