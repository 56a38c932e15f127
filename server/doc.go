// Package server provides the HTTP server: a gin engine behind h2c on one
// port, wrapped in server-level middleware (server/middleware) and exposing
// /health, /alive, /ready and /version (server/endpoint).
//
// Middleware runs at the net/http level so it also covers websocket
// upgrades, which leave gin's response writer once hijacked.
package server
