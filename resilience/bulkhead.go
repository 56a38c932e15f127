package resilience

import (
	"context"
	"errors"
	"time"
)

var (
	ErrBulkheadFull    = errors.New("bulkhead is full")
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

const defaultBulkheadSlots = 4

// BulkheadConfig sizes a Bulkhead.
type BulkheadConfig struct {
	Name          string
	MaxConcurrent int
	// MaxWait is how long a caller may queue for a slot: zero means until
	// its context ends, negative means not at all.
	MaxWait time.Duration
	// OnReject observes callers turned away.
	OnReject func(name string)
}

// Bulkhead lets at most MaxConcurrent calls run at once. The pipeline
// uses one per run to bound parallel segment work.
type Bulkhead struct {
	cfg   BulkheadConfig
	slots chan struct{}
}

func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = defaultBulkheadSlots
	}
	return &Bulkhead{cfg: cfg, slots: make(chan struct{}, cfg.MaxConcurrent)}
}

func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	release, err := b.enter(ctx)
	if err != nil {
		if b.cfg.OnReject != nil {
			b.cfg.OnReject(b.cfg.Name)
		}
		return err
	}
	defer release()
	return fn()
}

// ExecuteWithResult runs fn inside b and passes its value through.
func ExecuteWithResult[T any](b *Bulkhead, ctx context.Context, fn func() (T, error)) (v T, err error) {
	err = b.Execute(ctx, func() error {
		var ferr error
		v, ferr = fn()
		return ferr
	})
	return v, err
}

func (b *Bulkhead) enter(ctx context.Context) (func(), error) {
	release := func() { <-b.slots }
	select {
	case b.slots <- struct{}{}:
		return release, nil
	default:
		if b.cfg.MaxWait < 0 {
			return nil, ErrBulkheadFull
		}
	}

	wait := ctx
	if b.cfg.MaxWait > 0 {
		var cancel context.CancelFunc
		wait, cancel = context.WithTimeout(ctx, b.cfg.MaxWait)
		defer cancel()
	}
	select {
	case b.slots <- struct{}{}:
		return release, nil
	case <-wait.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrBulkheadTimeout
	}
}

// InUse is the number of calls currently holding a slot.
func (b *Bulkhead) InUse() int { return len(b.slots) }

func (b *Bulkhead) MaxConcurrent() int { return b.cfg.MaxConcurrent }
