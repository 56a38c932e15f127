// Package errors defines AppError, the structured error carried across
// linguacast's HTTP and websocket surfaces. Each error has a stable code,
// an HTTP status and a retryable flag derived from the code.
package errors
