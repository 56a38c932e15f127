// Package validation validates request and config structs.
//
// Struct tags are checked with go-playground/validator; hand-written checks
// use the collecting Validator. Both report failures as an INVALID_INPUT
// AppError listing every offending field.
package validation
