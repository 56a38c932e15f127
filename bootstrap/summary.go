package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/linguacast/component"
)

// ProviderInfo is a pipeline stage and the backend serving it.
type ProviderInfo struct {
	Stage     string
	Name      string
	Available bool
}

// Summary collects what a service started with and prints it once.
// Infrastructure and routes are read from the registry; stage providers
// are tracked by the caller.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	providers       []ProviderInfo
	out             io.Writer
}

func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
}

func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackProvider records the backend chosen for a stage. Unavailable
// backends mean the stage runs degraded.
func (s *Summary) TrackProvider(stage, name string, available bool) {
	s.providers = append(s.providers, ProviderInfo{Stage: stage, Name: name, Available: available})
}

// Providers returns the tracked stage providers.
func (s *Summary) Providers() []ProviderInfo {
	return s.providers
}

// Display prints the summary with live health from registry. A nil
// registry prints only the tracked providers.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.out
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	var infra []component.Description
	var routes []component.Route
	if registry != nil {
		for _, c := range registry.All() {
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				if desc.Name == "" {
					desc.Name = c.Name()
				}
				infra = append(infra, desc)
			}
			if rp, ok := c.(component.RouteProvider); ok {
				routes = append(routes, rp.Routes()...)
			}
		}
	}

	if len(infra) > 0 {
		fmt.Fprintf(w, "\n📊 Infrastructure\n")
		for i, d := range infra {
			details := d.Details
			if d.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, d.Port)
			}
			fmt.Fprintf(w, "   %s %s [%s]: %s\n", treePrefix(i, len(infra)), d.Name, d.Type, details)
		}
	}

	if len(s.providers) > 0 {
		fmt.Fprintf(w, "\n🎙️  Pipeline stages\n")
		for i, p := range s.providers {
			state := "available"
			icon := "✅"
			if !p.Available {
				state, icon = "degraded", "⚠️"
			}
			fmt.Fprintf(w, "   %s %s %s: %s (%s)\n", treePrefix(i, len(s.providers)), icon, p.Stage, p.Name, state)
		}
	}

	if len(routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	if registry != nil {
		if results := registry.HealthAll(ctx); len(results) > 0 {
			fmt.Fprintf(w, "\n🏥 Health Check\n")
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " - " + h.Message
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(results)),
					healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
			}
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
