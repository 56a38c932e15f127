package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/linguacast/component"
	"github.com/kbukum/linguacast/config"
	"github.com/kbukum/linguacast/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(context.Context) error {
	m.stopped = true
	return m.stopErr
}
func (m *mockComponent) Health(context.Context) component.Health { return m.health }

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() component.Description {
	return component.Description{Type: "server", Details: "127.0.0.1", Port: 8000}
}

func (d *describedComponent) Routes() []component.Route {
	return []component.Route{{Method: "GET", Path: "/translate", Handler: "translate"}}
}

func healthy(name string) *mockComponent {
	return &mockComponent{name: name, health: component.Health{Name: name, Status: component.StatusHealthy}}
}

func newTestApp(t *testing.T, opts ...Option) (*App[*testConfig], *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "linguacast", Version: "1.0.0"}}
	opts = append([]Option{WithLogger(logger.Nop()), WithSummaryOutput(&out)}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app, &out
}

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)
	if app.Name != "linguacast" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %q %q", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected defaults applied, got environment %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("unexpected default graceful timeout %v", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	if _, err := NewApp(&testConfig{}, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error for missing name")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app, _ := newTestApp(t, WithGracefulTimeout(3*time.Second))
	if app.gracefulTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", app.gracefulTimeout)
	}
	app, _ = newTestApp(t, WithGracefulTimeout(0))
	if app.gracefulTimeout != defaultGracefulTimeout {
		t.Errorf("zero timeout must keep the default, got %v", app.gracefulTimeout)
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app, _ := newTestApp(t)
	if err := app.RegisterComponent(healthy("db")); err != nil {
		t.Fatal(err)
	}
	if err := app.RegisterComponent(healthy("db")); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  component.HealthStatus
		wantErr bool
	}{
		{"healthy", component.StatusHealthy, false},
		{"degraded", component.StatusDegraded, true},
		{"unhealthy", component.StatusUnhealthy, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			_ = app.RegisterComponent(&mockComponent{name: "c", health: component.Health{Name: "c", Status: tt.status, Message: "m"}})
			err := app.ReadyCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadyCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "c="+string(tt.status)+"(m)") {
				t.Errorf("unexpected detail %v", err)
			}
		})
	}
}

// runUntilReady starts app and cancels it from a ready hook, so Run
// returns after one full lifecycle.
func runUntilReady(app *App[*testConfig]) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.OnReady(func(context.Context) error { cancel(); return nil })
	return app.Run(ctx)
}

func TestRunLifecycleOrder(t *testing.T) {
	app, _ := newTestApp(t)
	comp := healthy("db")
	_ = app.RegisterComponent(comp)

	var order []string
	app.OnReady(func(context.Context) error {
		if !comp.started {
			t.Error("ready hook ran before components started")
		}
		order = append(order, "ready")
		return nil
	})
	app.OnStop(func(context.Context) error {
		if comp.stopped {
			t.Error("stop hook ran after components stopped")
		}
		order = append(order, "stop")
		return nil
	})

	if err := runUntilReady(app); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(order, ","); got != "ready,stop" {
		t.Errorf("order = %s", got)
	}
	if !comp.started || !comp.stopped {
		t.Errorf("component not cycled: %+v", comp)
	}
}

func TestRunErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		setup func(a *App[*testConfig])
		want  string
	}{
		{"ready hook", func(a *App[*testConfig]) {
			a.OnReady(func(context.Context) error { return boom })
		}, "ready hook #1"},
		{"stop hook", func(a *App[*testConfig]) {
			a.OnStop(func(context.Context) error { return boom })
		}, "stop hook #1"},
		{"component start", func(a *App[*testConfig]) {
			_ = a.RegisterComponent(&mockComponent{name: "bad", startErr: boom})
		}, "startup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			tt.setup(app)
			err := runUntilReady(app)
			if err == nil || !strings.Contains(err.Error(), tt.want) || !errors.Is(err, boom) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestFailedStartupStopsStartedComponents(t *testing.T) {
	app, _ := newTestApp(t)
	first := healthy("db")
	_ = app.RegisterComponent(first)
	_ = app.RegisterComponent(&mockComponent{name: "bad", startErr: errors.New("x")})

	if err := app.Run(context.Background()); err == nil {
		t.Fatal("expected startup error")
	}
	if !first.stopped {
		t.Error("expected started component to be stopped")
	}
}

func TestWaitForSignalContextCancellation(t *testing.T) {
	app, _ := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sig := app.WaitForSignal(ctx); sig != nil {
		t.Errorf("expected nil signal, got %v", sig)
	}
}

func TestSummaryDisplay(t *testing.T) {
	app, out := newTestApp(t)
	_ = app.RegisterComponent(&describedComponent{mockComponent: *healthy("http-server")})
	_ = app.RegisterComponent(&mockComponent{name: "cache", health: component.Health{Name: "cache", Status: component.StatusDegraded, Message: "slow"}})
	app.Summary.TrackProvider("transcription", "whisper", true)
	app.Summary.TrackProvider("diarization", "none", false)

	if err := runUntilReady(app); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	for _, want := range []string{
		"linguacast v1.0.0 started",
		"http-server [server]: 127.0.0.1 (:8000)",
		"transcription: whisper (available)",
		"diarization: none (degraded)",
		"GET     /translate → translate",
		"cache: degraded - slow",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
	if len(app.Summary.Providers()) != 2 {
		t.Errorf("expected two providers tracked")
	}
}

func TestSummaryNilRegistry(t *testing.T) {
	var out bytes.Buffer
	s := NewSummary("svc", "0.1.0")
	s.SetOutput(&out)
	s.Display(context.Background(), nil)
	if !strings.Contains(out.String(), "svc v0.1.0") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestHealthStatusIcon(t *testing.T) {
	if healthStatusIcon(component.StatusHealthy) != "✅" ||
		healthStatusIcon(component.StatusUnhealthy) != "❌" ||
		healthStatusIcon("other") != "❓" {
		t.Error("unexpected icons")
	}
	if treePrefix(0, 2) != "├──" || treePrefix(1, 2) != "└──" {
		t.Error("unexpected tree prefixes")
	}
}
