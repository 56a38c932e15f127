package auth

import (
	"context"
	"errors"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/linguacast/auth/authctx"
	"github.com/kbukum/linguacast/auth/jwt"
	apperrors "github.com/kbukum/linguacast/errors"
)

// TokenValidator validates a token and returns the user it belongs to.
// HTTP and websocket handlers depend on it rather than on JWT directly.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (authctx.User, error)
}

// TokenValidatorFunc adapts a function to TokenValidator.
type TokenValidatorFunc func(ctx context.Context, token string) (authctx.User, error)

func (f TokenValidatorFunc) ValidateToken(ctx context.Context, token string) (authctx.User, error) {
	return f(ctx, token)
}

// Claims are the claims carried by user tokens.
type Claims = jwt.Claims

// Identity validates user tokens with a JWT service.
type Identity struct {
	svc *jwt.Service
}

var _ TokenValidator = (*Identity)(nil)

// NewIdentity builds an Identity from JWT settings.
func NewIdentity(cfg *jwt.Config) (*Identity, error) {
	svc, err := jwt.NewService(cfg)
	if err != nil {
		return nil, err
	}
	return &Identity{svc: svc}, nil
}

// ValidateToken parses token and returns its subject as the user id. A
// "Bearer " prefix is accepted.
func (i *Identity) ValidateToken(_ context.Context, token string) (authctx.User, error) {
	token = strings.TrimSpace(token)
	if after, ok := strings.CutPrefix(token, "Bearer "); ok {
		token = strings.TrimSpace(after)
	}
	if token == "" {
		return authctx.User{}, apperrors.Unauthorized("missing token")
	}
	claims, err := i.svc.Parse(token)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return authctx.User{}, apperrors.TokenExpired().WithCause(err)
		}
		return authctx.User{}, apperrors.InvalidToken().WithCause(err)
	}
	if claims.Subject == "" {
		return authctx.User{}, apperrors.InvalidToken().WithDetail("reason", "missing subject")
	}
	return authctx.User{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

// IssueToken signs an access token for userID. Used by tooling and tests;
// production tokens come from the identity provider.
func (i *Identity) IssueToken(userID, email string) (string, error) {
	return i.svc.Issue(&Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: userID},
		Email:            email,
	})
}
