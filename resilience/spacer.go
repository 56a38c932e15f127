package resilience

import (
	"context"
	"sync"
	"time"
)

// Spacer enforces a minimum interval between the completion of one call and
// the start of the next. Calls are fully serialized: the lock is held while
// waiting, while the call runs and while the completion time is recorded.
//
// A zero Spacer has no interval and only serializes.
type Spacer struct {
	interval time.Duration
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error

	mu   sync.Mutex
	last time.Time
}

// SpacerOption customizes a Spacer.
type SpacerOption func(*Spacer)

// WithClock replaces the time source and the sleep function. Tests use it to
// run without real delays.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) SpacerOption {
	return func(s *Spacer) {
		s.now = now
		s.sleep = sleep
	}
}

// NewSpacer returns a Spacer with the given minimum interval.
func NewSpacer(interval time.Duration, opts ...SpacerOption) *Spacer {
	s := &Spacer{interval: interval}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the configured minimum gap.
func (s *Spacer) Interval() time.Duration { return s.interval }

// Do waits until the interval since the previous completed call has passed,
// runs fn and stamps the completion time. When ctx is cancelled during the
// wait, fn is not run and the previous stamp is kept.
func (s *Spacer) Do(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.last.IsZero() {
		if wait := s.interval - s.clock().Sub(s.last); wait > 0 {
			if err := s.pause(ctx, wait); err != nil {
				return err
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := fn()
	s.last = s.clock()
	return err
}

// DoValue is Do for functions returning a value.
func DoValue[T any](ctx context.Context, s *Spacer, fn func() (T, error)) (T, error) {
	var out T
	err := s.Do(ctx, func() error {
		var fnErr error
		out, fnErr = fn()
		return fnErr
	})
	return out, err
}

// LastCompletion returns when the previous call finished. Zero before the
// first call.
func (s *Spacer) LastCompletion() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Spacer) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Spacer) pause(ctx context.Context, d time.Duration) error {
	if s.sleep != nil {
		return s.sleep(ctx, d)
	}
	return sleepCtx(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
