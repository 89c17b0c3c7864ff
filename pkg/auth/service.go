package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/infinitynet/api/pkg/hashx"
	"github.com/infinitynet/api/pkg/kernel"
	"github.com/infinitynet/api/pkg/user"
	"github.com/infinitynet/api/pkg/useradmin"
	"github.com/infinitynet/api/pkg/useraffiliate"
	"github.com/infinitynet/api/pkg/userphone"
)

// Service runs the login flows for every identity variant. The variants
// differ only in identifier + secret pair and backing table; the
// failure, lockout and token policy is shared.
type Service struct {
	users      user.Repository
	admins     useradmin.Repository
	affiliates useraffiliate.Repository
	phones     userphone.Repository
	tokens     *TokenService
	log        *zap.Logger

	onLoginFailure func(source string)
}

type ServiceOption func(*Service)

// WithLoginFailureHook registers a callback fired on every failed secret
// comparison (metrics).
func WithLoginFailureHook(fn func(source string)) ServiceOption {
	return func(s *Service) { s.onLoginFailure = fn }
}

func NewService(
	users user.Repository,
	admins useradmin.Repository,
	affiliates useraffiliate.Repository,
	phones userphone.Repository,
	tokens *TokenService,
	log *zap.Logger,
	opts ...ServiceOption,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		users:      users,
		admins:     admins,
		affiliates: affiliates,
		phones:     phones,
		tokens:     tokens,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// account is the variant-independent view of an identity record that the
// shared login policy operates on.
type account struct {
	id             string
	nome           string
	email          string
	secretHash     string
	failedAttempts int
	statusName     string
	role           kernel.RoleRef
}

// Login authenticates a generic user by email + senha.
func (s *Service) Login(ctx context.Context, email, senha string) (*AuthResponse, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, s.deny(SourceUser, err)
	}
	return s.authenticate(ctx, SourceUser, userAccount(u), senha,
		func() error { return s.users.IncrementFailedAttempts(ctx, u.ID) },
		func() error { return s.users.RegisterSuccessfulLogin(ctx, u.ID) })
}

// LoginAdmin authenticates an administrative user by cpf + senha.
func (s *Service) LoginAdmin(ctx context.Context, cpf, senha string) (*AuthResponse, error) {
	u, err := s.admins.FindByCPF(ctx, cpf)
	if err != nil {
		return nil, s.deny(SourceAdmin, err)
	}
	return s.authenticate(ctx, SourceAdmin, adminAccount(u), senha,
		func() error { return s.admins.IncrementFailedAttempts(ctx, u.ID) },
		func() error { return s.admins.RegisterSuccessfulLogin(ctx, u.ID) })
}

// LoginAffiliate authenticates an affiliate user by cpf + senha.
func (s *Service) LoginAffiliate(ctx context.Context, cpf, senha string) (*AuthResponse, error) {
	u, err := s.affiliates.FindByCPF(ctx, cpf)
	if err != nil {
		return nil, s.deny(SourceAffiliate, err)
	}
	return s.authenticate(ctx, SourceAffiliate, affiliateAccount(u), senha,
		func() error { return s.affiliates.IncrementFailedAttempts(ctx, u.ID) },
		func() error { return s.affiliates.RegisterSuccessfulLogin(ctx, u.ID) })
}

// LoginPhone authenticates a mobile-app user by telefone + PIN.
func (s *Service) LoginPhone(ctx context.Context, telefone, pin string) (*AuthResponse, error) {
	u, err := s.phones.FindByTelefone(ctx, telefone)
	if err != nil {
		return nil, s.deny(SourcePhone, err)
	}
	return s.authenticate(ctx, SourcePhone, phoneAccount(u), pin,
		func() error { return s.phones.IncrementFailedAttempts(ctx, u.ID) },
		func() error { return s.phones.RegisterSuccessfulLogin(ctx, u.ID) })
}

// authenticate applies the shared policy: active status, lockout
// threshold, secret comparison, bookkeeping, token issuance.
func (s *Service) authenticate(ctx context.Context, source string, acc account, secret string, onFailure, onSuccess func() error) (*AuthResponse, error) {
	if acc.statusName != ActiveStatusName {
		return nil, ErrUserInactive()
	}
	if acc.failedAttempts >= MaxFailedAttempts {
		return nil, ErrAccountLocked()
	}

	if !hashx.Compare(acc.secretHash, secret) {
		if err := onFailure(); err != nil {
			s.log.Error("failed to record login failure",
				zap.String("source", source), zap.Error(err))
		}
		if s.onLoginFailure != nil {
			s.onLoginFailure(source)
		}
		return nil, ErrInvalidCredentials()
	}

	if err := onSuccess(); err != nil {
		s.log.Error("failed to record successful login",
			zap.String("source", source), zap.Error(err))
	}

	snapshot := UserSnapshot{
		ID:     acc.id,
		Nome:   acc.nome,
		Email:  acc.email,
		Source: source,
		Role:   acc.role,
	}

	token, err := s.tokens.IssueAccessToken(snapshot)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(acc.id, source)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: snapshot, Token: token, RefreshToken: refresh}, nil
}

// Refresh verifies the refresh token, re-resolves the identity within
// the source it names and issues a new access token. The refresh token
// itself is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	var acc account
	switch claims.Source {
	case SourceUser:
		u, err := s.users.FindByID(ctx, claims.Subject)
		if err != nil {
			return nil, ErrInvalidToken()
		}
		acc = userAccount(u)
	case SourceAdmin:
		u, err := s.admins.FindByID(ctx, claims.Subject)
		if err != nil {
			return nil, ErrInvalidToken()
		}
		acc = adminAccount(u)
	case SourceAffiliate:
		u, err := s.affiliates.FindByID(ctx, claims.Subject)
		if err != nil {
			return nil, ErrInvalidToken()
		}
		acc = affiliateAccount(u)
	case SourcePhone:
		u, err := s.phones.FindByID(ctx, claims.Subject)
		if err != nil {
			return nil, ErrInvalidToken()
		}
		acc = phoneAccount(u)
	default:
		return nil, ErrInvalidSource()
	}

	if acc.statusName != ActiveStatusName {
		return nil, ErrUserInactive()
	}

	token, err := s.tokens.IssueAccessToken(UserSnapshot{
		ID:     acc.id,
		Nome:   acc.nome,
		Email:  acc.email,
		Source: claims.Source,
		Role:   acc.role,
	})
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{Token: token}, nil
}

// deny maps any resolution failure to the enumeration-safe credentials
// error. The real cause is logged, never surfaced.
func (s *Service) deny(source string, err error) error {
	s.log.Warn("login resolution failed", zap.String("source", source), zap.Error(err))
	if s.onLoginFailure != nil {
		s.onLoginFailure(source)
	}
	return ErrInvalidCredentials()
}

func userAccount(u *user.User) account {
	return account{
		id:             u.ID,
		nome:           u.Nome,
		email:          u.Email,
		secretHash:     u.Senha,
		failedAttempts: u.FailedAttempts,
		statusName:     statusName(u.Status),
		role:           roleRef(u.Role),
	}
}

func adminAccount(u *useradmin.UserAdmin) account {
	return account{
		id:             u.ID,
		nome:           u.Nome,
		email:          u.Email,
		secretHash:     u.Senha,
		failedAttempts: u.FailedAttempts,
		statusName:     statusName(u.Status),
		role:           roleRef(u.Role),
	}
}

func affiliateAccount(u *useraffiliate.UserAffiliate) account {
	return account{
		id:             u.ID,
		nome:           u.Nome,
		email:          u.Email,
		secretHash:     u.Senha,
		failedAttempts: u.FailedAttempts,
		statusName:     statusName(u.Status),
		role:           roleRef(u.Role),
	}
}

func phoneAccount(u *userphone.UserPhone) account {
	return account{
		id:             u.ID,
		nome:           u.Nome,
		email:          u.Email,
		secretHash:     u.PIN,
		failedAttempts: u.FailedAttempts,
		statusName:     statusName(u.Status),
		role:           roleRef(u.Role),
	}
}

func statusName(ref *kernel.StatusRef) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}

func roleRef(ref *kernel.RoleRef) kernel.RoleRef {
	if ref == nil {
		return kernel.RoleRef{}
	}
	return *ref
}
