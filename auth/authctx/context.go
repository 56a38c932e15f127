// Package authctx carries the authenticated user through a request context.
//
//	ctx = authctx.WithUser(ctx, user)
//	user, ok := authctx.UserFrom(ctx)
package authctx

import (
	"context"
	"errors"
)

// User is an authenticated caller.
type User struct {
	ID    string
	Email string
	Role  string
}

type contextKey struct{}

var userKey = contextKey{}

// ErrNoUser is returned when the context carries no user.
var ErrNoUser = errors.New("authctx: no user in context")

// WithUser stores user in ctx.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom returns the user stored in ctx.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok && u.ID != ""
}

// UserID returns the id of the user stored in ctx, or "".
func UserID(ctx context.Context) string {
	u, _ := UserFrom(ctx)
	return u.ID
}

// MustUser returns the user or ErrNoUser.
func MustUser(ctx context.Context) (User, error) {
	u, ok := UserFrom(ctx)
	if !ok {
		return User{}, ErrNoUser
	}
	return u, nil
}
