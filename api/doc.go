// Package api exposes the translator over HTTP and websockets.
//
// Routes:
//
//	GET /                  liveness message
//	GET /translate         text translation, optional bearer token records history
//	GET /translations      history of the authenticated user, newest first
//	GET /ws/:client_id     websocket; binary WAV frames in, one JSON result per frame out
//
// Websocket sessions are tracked by client id in a Hub. A reconnect with the
// same id closes the previous session. Text frames carry control messages:
//
//	{"type":"config","source_lang":"en","target_lang":"fr"}
package api
