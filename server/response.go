package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/linguacast/errors"
	"github.com/kbukum/linguacast/logger"
)

// RespondWithError writes err as an AppError body with its HTTP status.
// Errors that are not AppErrors become a generic 500.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.WithComponent("server").WithContext(c.Request.Context()).
			Error("request failed", logger.ErrorFields(c.FullPath(), err))
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
