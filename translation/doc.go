// Package translation translates text through a rate-limited backend.
//
// Every backend call passes through a process-wide resilience.Spacer so
// calls are at least MinInterval apart, measured from the completion of the
// previous call. Failures return the original text together with an error
// that matches ErrRateLimited or ErrProvider under errors.Is and converts to
// an *errors.AppError for transport. Successful results may be cached in
// redis; cache hits skip the spacer.
//
// # Backends
//
//   - translation/mymemory: MyMemory public translation API
package translation
