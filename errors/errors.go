package errors

import (
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError whose status and retryability come from the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: StatusFor(code),
		Retryable:  IsRetryableCode(code),
	}
}

// Wrap creates an AppError around cause.
func Wrap(cause error, code ErrorCode, message string) *AppError {
	return New(code, message).WithCause(cause)
}

func ServiceUnavailable(service string) *AppError {
	return New(ErrCodeServiceUnavailable, fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service)).
		WithDetail("service", service)
}

func ConnectionFailed(service string) *AppError {
	return New(ErrCodeConnectionFailed, fmt.Sprintf("Unable to connect to %s.", service)).
		WithDetail("service", service)
}

func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout, "The request took too long. Please try again.").
		WithDetail("operation", operation)
}

// RateLimited is returned when an upstream quota is exhausted. The message is
// the one shown to end users of the translate endpoint.
func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Translation service is rate limited. Please try again in a few seconds.")
}

func NotFound(resource, id string) *AppError {
	e := New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource)).
		WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason))
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation creates an invalid-input error with a caller supplied message.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("Missing required field: %s", field)).
		WithDetail("field", field)
}

func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return New(ErrCodeUnauthorized, reason)
}

func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "You don't have permission to perform this action."
	}
	return New(ErrCodeForbidden, reason)
}

func TokenExpired() *AppError {
	return New(ErrCodeTokenExpired, "Your session has expired. Please log in again.")
}

func InvalidToken() *AppError {
	return New(ErrCodeInvalidToken, "Invalid authentication token. Please log in again.")
}

func PayloadTooLarge(limit string) *AppError {
	return New(ErrCodePayloadTooBig, fmt.Sprintf("Request body exceeds %s.", limit)).
		WithDetail("limit", limit)
}

// AudioDecodeFailed wraps a WAV parsing failure.
func AudioDecodeFailed(cause error) *AppError {
	return Wrap(cause, ErrCodeAudioDecode, "The uploaded audio could not be decoded as WAV.")
}

// TranslationFailed wraps a translation backend failure.
func TranslationFailed(provider string, cause error) *AppError {
	return Wrap(cause, ErrCodeTranslation, "Translation failed. Please try again.").
		WithDetail("provider", provider)
}

func Internal(cause error) *AppError {
	return Wrap(cause, ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.")
}

func DatabaseError(cause error) *AppError {
	return Wrap(cause, ErrCodeDatabaseError, "A database error occurred. Please try again.")
}

func StorageError(cause error) *AppError {
	return Wrap(cause, ErrCodeStorageError, "Audio storage is unavailable. Please try again.")
}

func ExternalServiceError(service string, cause error) *AppError {
	return Wrap(cause, ErrCodeExternalService, fmt.Sprintf("The %s service encountered an error. Please try again.", service)).
		WithDetail("service", service)
}
