// Package producer writes events to Kafka.
package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/linguacast/kafka"
	"github.com/kbukum/linguacast/logger"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("kafka producer is closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer wraps a kafka-go Writer with retries and linguacast logging.
type Producer struct {
	writer messageWriter
	cfg    kafka.Config
	log    *logger.Logger
	mu     sync.RWMutex
	closed bool

	lastMu  sync.Mutex
	lastErr error
}

// NewProducer creates a producer. kafka-go dials brokers lazily, so this
// succeeds even when no broker is reachable yet.
func NewProducer(cfg kafka.Config, log *logger.Logger) (*Producer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka producer config: %w", err)
	}
	if !cfg.Enabled {
		return nil, errors.New("kafka is disabled")
	}

	transport, err := kafka.CreateTransport(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer transport: %w", err)
	}

	p := &Producer{cfg: cfg, log: log.WithComponent("kafka.producer")}
	p.writer = &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Transport:              transport,
		Balancer:               &kafkago.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:            kafka.ResolveCompression(cfg.Compression),
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			p.log.Error("writer: "+fmt.Sprintf(msg, args...))
		}),
	}

	p.log.Info("Kafka producer initialized", logger.Fields(
		"brokers", cfg.Brokers,
		"compression", cfg.Compression,
	))
	return p, nil
}

func newWithWriter(cfg kafka.Config, w messageWriter, log *logger.Logger) *Producer {
	cfg.ApplyDefaults()
	return &Producer{writer: w, cfg: cfg, log: log}
}

// WriteMessages sends messages, retrying transient failures with a linear
// backoff up to cfg.Retries attempts.
func (p *Producer) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	var lastErr error
	defer func() { p.remember(lastErr) }()
	for attempt := 1; attempt <= p.cfg.Retries; attempt++ {
		lastErr = p.writer.WriteMessages(ctx, msgs...)
		if lastErr == nil {
			return nil
		}
		if !kafka.IsRetryableError(lastErr) || attempt == p.cfg.Retries {
			break
		}
		t := time.NewTimer(time.Duration(attempt) * 100 * time.Millisecond)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("kafka write: %w", lastErr)
}

// LastError is the outcome of the most recent write, nil once a write
// succeeds again.
func (p *Producer) LastError() error {
	p.lastMu.Lock()
	defer p.lastMu.Unlock()
	return p.lastErr
}

func (p *Producer) remember(err error) {
	p.lastMu.Lock()
	p.lastErr = err
	p.lastMu.Unlock()
}

// SendJSON marshals value and sends it to topic under key.
func (p *Producer) SendJSON(ctx context.Context, topic, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return p.WriteMessages(ctx, kafkago.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   data,
		Headers: []kafkago.Header{{Key: "content-type", Value: []byte("application/json")}},
	})
}

// Publish sends an Event keyed by its subject, with the event metadata
// copied into message headers.
func (p *Producer) Publish(ctx context.Context, topic string, event kafka.Event) error {
	data, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(event.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event-id", Value: []byte(event.ID)},
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "event-source", Value: []byte(event.Source)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: event.Timestamp,
	}
	if err := p.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close flushes pending writes. Safe to call multiple times.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.log.Info("Kafka producer closing")
	return p.writer.Close()
}
