package provider

import "context"

// Provider is implemented by every backend.
type Provider interface {
	Name() string
	// IsAvailable reports whether the backend can serve requests right now.
	IsAvailable(ctx context.Context) bool
}

// RequestResponse is a provider taking one input and returning one output.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Factory builds a provider from a loosely typed config map.
type Factory[T Provider] func(cfg map[string]any) (T, error)

// Func adapts a plain function into a RequestResponse that is always available.
func Func[I, O any](name string, fn func(ctx context.Context, input I) (O, error)) RequestResponse[I, O] {
	return funcRR[I, O]{name: name, fn: fn}
}

type funcRR[I, O any] struct {
	name string
	fn   func(ctx context.Context, input I) (O, error)
}

func (f funcRR[I, O]) Name() string                     { return f.name }
func (f funcRR[I, O]) IsAvailable(context.Context) bool { return true }

func (f funcRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return f.fn(ctx, input)
}
