package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/linguacast/component"
	"github.com/kbukum/linguacast/observability"
	"github.com/kbukum/linguacast/version"
)

// HealthChecker returns the health of registered components.
type HealthChecker func(ctx context.Context) []component.Health

var statusWords = map[observability.HealthStatus]string{
	observability.HealthStatusUp:       "healthy",
	observability.HealthStatusDegraded: "degraded",
	observability.HealthStatusDown:     "unhealthy",
}

// Health aggregates component health. Any unhealthy component answers 503;
// a degraded one only changes the reported status.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.NewServiceHealth(serviceName, version.Get().Version)
		if checker != nil {
			for _, h := range checker(c.Request.Context()) {
				sh.AddComponent(h)
			}
		}
		if sh.Components == nil {
			sh.Components = []observability.Health{}
		}

		code := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":     statusWords[sh.Status],
			"service":    sh.Service,
			"version":    sh.Version,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": sh.Components,
		})
	}
}
