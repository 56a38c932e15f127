package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/linguacast/errors"
)

var transientPatterns = []string{
	"database is locked",
	"database table is locked",
	"busy",
	"driver: bad connection",
	"connection reset",
	"i/o timeout",
}

// IsRetryableError reports whether err is a lock or connection failure
// that may clear on retry.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// FromDatabase converts a database error to an AppError.
func FromDatabase(err error, resource string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if IsNotFoundError(err) {
		return apperrors.NotFound(resource, "")
	}
	appErr := apperrors.DatabaseError(err).WithDetail("resource", resource)
	appErr.Retryable = IsRetryableError(err)
	return appErr
}
