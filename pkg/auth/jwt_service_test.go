package auth

import (
	"testing"
	"time"

	"github.com/infinitynet/api/pkg/errx"
	"github.com/infinitynet/api/pkg/kernel"
)

func testSnapshot() UserSnapshot {
	return UserSnapshot{
		ID:     "7b0d1dd7-9822-4c3e-9d51-0a2d4a3ff001",
		Nome:   "Maria Silva",
		Email:  "maria@example.com",
		Source: SourceAdmin,
		Role:   kernel.RoleRef{ID: "r1", Name: "Administrador", Level: 100},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour, 24*time.Hour, "api-infinitynet")

	token, err := svc.IssueAccessToken(testSnapshot())
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	claims, err := svc.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if claims.Subject != "7b0d1dd7-9822-4c3e-9d51-0a2d4a3ff001" {
		t.Errorf("unexpected subject %q", claims.Subject)
	}
	if claims.Source != SourceAdmin {
		t.Errorf("unexpected source %q", claims.Source)
	}
	if claims.Role == nil || claims.Role.Level != 100 || claims.Role.Name != "Administrador" {
		t.Errorf("role snapshot not preserved: %+v", claims.Role)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	current := time.Now()
	svc := NewTokenService("test-secret", time.Minute, time.Hour, "api-infinitynet").
		WithClock(func() time.Time { return current })

	token, err := svc.IssueAccessToken(testSnapshot())
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := svc.VerifyAccessToken(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestIssuerMismatchRejected(t *testing.T) {
	issuing := NewTokenService("test-secret", time.Hour, time.Hour, "someone-else")
	verifying := NewTokenService("test-secret", time.Hour, time.Hour, "api-infinitynet")

	token, err := issuing.IssueAccessToken(testSnapshot())
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	_, err = verifying.VerifyAccessToken(token)
	var appErr *errx.Error
	if !errx.As(err, &appErr) || appErr.Type != errx.TypeAuthentication {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestRefreshTokenRequiresSource(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour, 24*time.Hour, "api-infinitynet")

	refresh, err := svc.IssueRefreshToken("u1", SourcePhone)
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}
	claims, err := svc.VerifyRefreshToken(refresh)
	if err != nil {
		t.Fatalf("VerifyRefreshToken: %v", err)
	}
	if claims.Subject != "u1" || claims.Source != SourcePhone {
		t.Errorf("unexpected refresh claims: %+v", claims)
	}

	// A token issued without a source must not pass refresh verification.
	sourceless, err := svc.IssueAccessToken(UserSnapshot{ID: "u1"})
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := svc.VerifyRefreshToken(sourceless); err == nil {
		t.Fatal("expected sourceless refresh token to be rejected")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	issuing := NewTokenService("secret-a", time.Hour, time.Hour, "api-infinitynet")
	verifying := NewTokenService("secret-b", time.Hour, time.Hour, "api-infinitynet")

	token, err := issuing.IssueAccessToken(testSnapshot())
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := verifying.VerifyAccessToken(token); err == nil {
		t.Fatal("expected signature mismatch to fail verification")
	}
}
