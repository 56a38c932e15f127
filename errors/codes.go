package errors

import "net/http"

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors. These are retryable.
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
)

// Request errors.
const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeTokenExpired  ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidToken  ErrorCode = "INVALID_TOKEN"
	ErrCodePayloadTooBig ErrorCode = "PAYLOAD_TOO_LARGE"
)

// Pipeline errors.
const (
	// ErrCodeAudioDecode marks audio bytes that could not be parsed as WAV.
	ErrCodeAudioDecode ErrorCode = "AUDIO_DECODE_FAILED"
	// ErrCodeTranslation marks a translation backend failure.
	ErrCodeTranslation ErrorCode = "TRANSLATION_FAILED"
)

// Internal errors.
const (
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError   ErrorCode = "DATABASE_ERROR"
	ErrCodeStorageError    ErrorCode = "STORAGE_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

type codeTraits struct {
	status    int
	retryable bool
}

var traits = map[ErrorCode]codeTraits{
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, true},
	ErrCodeConnectionFailed:   {http.StatusServiceUnavailable, true},
	ErrCodeTimeout:            {http.StatusGatewayTimeout, true},
	ErrCodeRateLimited:        {http.StatusTooManyRequests, true},
	ErrCodeNotFound:           {http.StatusNotFound, false},
	ErrCodeInvalidInput:       {http.StatusBadRequest, false},
	ErrCodeMissingField:       {http.StatusBadRequest, false},
	ErrCodeUnauthorized:       {http.StatusUnauthorized, false},
	ErrCodeForbidden:          {http.StatusForbidden, false},
	ErrCodeTokenExpired:       {http.StatusUnauthorized, false},
	ErrCodeInvalidToken:       {http.StatusUnauthorized, false},
	ErrCodePayloadTooBig:      {http.StatusRequestEntityTooLarge, false},
	ErrCodeAudioDecode:        {http.StatusUnprocessableEntity, false},
	ErrCodeTranslation:        {http.StatusBadGateway, true},
	ErrCodeInternal:           {http.StatusInternalServerError, false},
	ErrCodeDatabaseError:      {http.StatusInternalServerError, true},
	ErrCodeStorageError:       {http.StatusBadGateway, true},
	ErrCodeExternalService:    {http.StatusBadGateway, true},
}

// IsRetryableCode reports whether errors with this code may succeed on retry.
func IsRetryableCode(code ErrorCode) bool {
	return traits[code].retryable
}

// StatusFor returns the HTTP status mapped to code, or 500 for unknown codes.
func StatusFor(code ErrorCode) int {
	if t, ok := traits[code]; ok {
		return t.status
	}
	return http.StatusInternalServerError
}
