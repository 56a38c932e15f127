package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/linguacast/logger"
)

var quietPaths = map[string]bool{"/health": true, "/alive": true, "/ready": true, "/version": true}

// RequestLogger logs one line per request once the handler returns. For a
// websocket that is when the session ends, so the line carries the
// session's lifetime. Probe endpoints are not logged. Query strings are
// left out since /translate carries user text in them.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			began := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := logger.DurationFields(r.Method+" "+r.URL.Path, time.Since(began))
			fields["status"] = sw.status
			l := log.WithContext(r.Context())
			switch {
			case sw.status == http.StatusSwitchingProtocols:
				l.Info("websocket closed", fields)
			case sw.status >= 500:
				l.Error("request failed", fields)
			case sw.status >= 400:
				l.Warn("request rejected", fields)
			default:
				l.Debug("request served", fields)
			}
		})
	}
}
