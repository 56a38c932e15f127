package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/linguacast/auth/authctx"
	"github.com/kbukum/linguacast/auth/jwt"
	apperrors "github.com/kbukum/linguacast/errors"
)

func newIdentity(t *testing.T, secret string) *Identity {
	t.Helper()
	id, err := NewIdentity(&jwt.Config{Secret: secret, Audience: []string{"authenticated"}})
	if err != nil {
		t.Fatalf("NewIdentity: %v", err)
	}
	return id
}

func TestIdentityRoundTrip(t *testing.T) {
	id := newIdentity(t, "s3cret")
	token, err := id.IssueToken("user-42", "a@b.c")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	for _, in := range []string{token, "Bearer " + token} {
		u, err := id.ValidateToken(context.Background(), in)
		if err != nil {
			t.Fatalf("ValidateToken(%q): %v", in[:10], err)
		}
		if u.ID != "user-42" || u.Email != "a@b.c" {
			t.Errorf("user = %+v", u)
		}
	}
}

func TestIdentityRejects(t *testing.T) {
	id := newIdentity(t, "s3cret")
	other := newIdentity(t, "other")
	foreign, _ := other.IssueToken("user-1", "")

	noSub, _ := id.svc.Issue(&Claims{})

	expired, _ := id.svc.Sign(&Claims{RegisteredClaims: gojwt.RegisteredClaims{
		Subject:   "user-1",
		Audience:  gojwt.ClaimStrings{"authenticated"},
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}})

	tests := []struct {
		name  string
		token string
		code  apperrors.ErrorCode
	}{
		{"empty", "", apperrors.ErrCodeUnauthorized},
		{"garbage", "not.a.jwt", apperrors.ErrCodeInvalidToken},
		{"wrong secret", foreign, apperrors.ErrCodeInvalidToken},
		{"missing subject", noSub, apperrors.ErrCodeInvalidToken},
		{"expired", expired, apperrors.ErrCodeTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := id.ValidateToken(context.Background(), tt.token)
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("err = %v, want AppError", err)
			}
			if appErr.Code != tt.code {
				t.Errorf("code = %v, want %v", appErr.Code, tt.code)
			}
		})
	}
}

func TestIdentityAudience(t *testing.T) {
	id := newIdentity(t, "s3cret")
	token, _ := id.svc.Sign(&Claims{RegisteredClaims: gojwt.RegisteredClaims{
		Subject:  "user-1",
		Audience: gojwt.ClaimStrings{"service_role"},
	}})
	if _, err := id.ValidateToken(context.Background(), token); err == nil {
		t.Fatal("expected audience mismatch")
	}
}

func TestTokenValidatorFunc(t *testing.T) {
	var v TokenValidator = TokenValidatorFunc(func(_ context.Context, token string) (authctx.User, error) {
		return authctx.User{ID: token}, nil
	})
	u, _ := v.ValidateToken(context.Background(), "x")
	if u.ID != "x" {
		t.Errorf("user = %+v", u)
	}
}

func TestConfig(t *testing.T) {
	c := Config{}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		t.Errorf("disabled config must validate: %v", err)
	}
	if c.Describe() != "disabled" {
		t.Errorf("Describe = %q", c.Describe())
	}

	c.Enabled = true
	if err := c.Validate(); err == nil {
		t.Error("enabled config without secret must fail")
	}
	c.JWT.Secret = "x"
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if c.Describe() != "JWT(HS256)" {
		t.Errorf("Describe = %q", c.Describe())
	}
}

func TestAuthctx(t *testing.T) {
	ctx := context.Background()
	if _, err := authctx.MustUser(ctx); !errors.Is(err, authctx.ErrNoUser) {
		t.Errorf("err = %v", err)
	}
	ctx = authctx.WithUser(ctx, authctx.User{ID: "u1"})
	if authctx.UserID(ctx) != "u1" {
		t.Error("user id not propagated")
	}
}
