package schema

import "context"

// Deriver produces a schema for a sample. Implementations may cache.
type Deriver interface {
	Derive(ctx context.Context, sample any) (*Node, error)
}

// Engine is the in-process Deriver backed by Derive.
type Engine struct{}

// Derive implements Deriver. It never fails.
func (Engine) Derive(_ context.Context, sample any) (*Node, error) {
	return Derive(sample), nil
}
