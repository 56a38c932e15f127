package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/linguacast/component"
	"github.com/kbukum/linguacast/logger"
)

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()
	if cfg.Topic != DefaultTopic || len(cfg.Brokers) != 1 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := cfg
	bad.EnableSASL, bad.SASLMechanism = true, "GSSAPI"
	if err := bad.Validate(); err == nil {
		t.Error("expected SASL mechanism error")
	}
	bad = cfg
	bad.WriteTimeout = -time.Second
	if err := bad.Validate(); err == nil {
		t.Error("expected write_timeout error")
	}
	bad = cfg
	bad.Brokers = []string{"kafka-without-port"}
	if err := bad.Validate(); err == nil {
		t.Error("expected broker address error")
	}
	bad = cfg
	bad.EnableSASL, bad.SASLMechanism, bad.Username = true, "SCRAM-SHA-512", ""
	if err := bad.Validate(); err == nil {
		t.Error("expected missing SASL username error")
	}
}

func TestCreateTransportSASL(t *testing.T) {
	cfg := Config{Enabled: true, EnableSASL: true, Username: "u", Password: "p"}
	cfg.ApplyDefaults()
	tr, err := CreateTransport(&cfg)
	if err != nil {
		t.Fatalf("CreateTransport: %v", err)
	}
	if tr.SASL == nil || tr.SASL.Name() != "PLAIN" {
		t.Errorf("SASL = %v", tr.SASL)
	}
}

func TestCreateTransportTLSMissingCA(t *testing.T) {
	cfg := Config{Enabled: true, EnableTLS: true, TLSCAFile: "/nonexistent/ca.pem"}
	cfg.ApplyDefaults()
	if _, err := CreateTransport(&cfg); err == nil {
		t.Fatal("expected an error for a missing CA file")
	}
}

func TestResolveCompression(t *testing.T) {
	if ResolveCompression("GZIP") != kafkago.Gzip || ResolveCompression("none") != 0 {
		t.Error("known codecs must resolve")
	}
	if ResolveCompression("brotli") != kafkago.Snappy {
		t.Error("unknown codecs fall back to snappy")
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{errors.New("dial tcp 127.0.0.1:9092: connection refused"), true},
		{errors.New("[6] Not Leader For Partition"), true},
		{errors.New("message too large"), false},
	}
	for _, tt := range tests {
		if got := IsRetryableError(tt.err); got != tt.want {
			t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestEventKey(t *testing.T) {
	ev := NewEvent("translation.completed", "", nil)
	if ev.ID == "" || ev.Key() != ev.ID || ev.Source != "linguacast" {
		t.Errorf("event = %+v", ev)
	}
	ev.Subject = "user-1"
	if ev.Key() != "user-1" {
		t.Errorf("key = %q", ev.Key())
	}
}

type closer struct{ closed bool }

func (c *closer) Close() error { c.closed = true; return nil }

func TestComponentClosesProducer(t *testing.T) {
	c := NewComponent(Config{Enabled: true}, logger.Nop())
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("health without producer = %+v", h)
	}
	p := &closer{}
	c.SetProducer(p)
	_ = c.Start(context.Background())
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("health = %+v", h)
	}
	if err := c.Stop(context.Background()); err != nil || !p.closed {
		t.Errorf("Stop: %v closed=%v", err, p.closed)
	}
}

type failingProducer struct {
	closer
	err error
}

func (f *failingProducer) LastError() error { return f.err }

func TestComponentDegradedAfterFailedPublish(t *testing.T) {
	c := NewComponent(Config{Enabled: true}, logger.Nop())
	p := &failingProducer{err: errors.New("leader not available")}
	c.SetProducer(p)
	if h := c.Health(context.Background()); h.Status != component.StatusDegraded {
		t.Fatalf("health = %+v", h)
	}
	p.err = nil
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("health after recovery = %+v", h)
	}
}
