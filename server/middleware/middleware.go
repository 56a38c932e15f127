package middleware

import "net/http"

// Middleware wraps the server's root http.Handler. Working at this level
// keeps hijacked websocket connections inside the chain.
type Middleware func(http.Handler) http.Handler

// Chain nests mws so that mws[0] sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := range mws {
			h = mws[len(mws)-1-i](h)
		}
		return h
	}
}
