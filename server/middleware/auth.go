package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/linguacast/auth"
	"github.com/kbukum/linguacast/auth/authctx"
	apperrors "github.com/kbukum/linguacast/errors"
	"github.com/kbukum/linguacast/logger"
)

// TokenQueryParam is accepted where an Authorization header cannot be sent,
// as with browser websocket clients.
const TokenQueryParam = "token"

// ContextKeyUserID is the gin context key of the authenticated user id.
const ContextKeyUserID = "user_id"

// BearerToken returns the token from the Authorization header or the token
// query parameter.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
		return ""
	}
	return c.Query(TokenQueryParam)
}

// RequireAuth rejects requests without a valid token. A nil validator
// rejects every request.
func RequireAuth(v auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" || v == nil {
			abortWithError(c, apperrors.Unauthorized(""))
			return
		}
		user, err := v.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present. Missing or
// invalid tokens leave the request anonymous.
func OptionalAuth(v auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token != "" && v != nil {
			user, err := v.ValidateToken(c.Request.Context(), token)
			if err == nil {
				setUser(c, user)
			} else {
				logger.WithComponent("auth").WithContext(c.Request.Context()).
					Debug("ignoring invalid optional token", logger.ErrorFields("validate_token", err))
			}
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user authctx.User) {
	ctx := authctx.WithUser(c.Request.Context(), user)
	c.Request = c.Request.WithContext(logger.ContextWithUserID(ctx, user.ID))
	c.Set(ContextKeyUserID, user.ID)
}

func abortWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Unauthorized("")
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
