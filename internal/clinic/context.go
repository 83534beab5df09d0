// Package clinic carries the active clinic through request contexts.
package clinic

import "context"

type contextKey struct{}

// Source says where a request's clinic id came from.
type Source string

const (
	SourceSettings Source = "settings"
	SourceConfig   Source = "config"
)

type ClinicContext struct {
	ID     int64
	Source Source
}

func WithClinic(ctx context.Context, cc ClinicContext) context.Context {
	return context.WithValue(ctx, contextKey{}, cc)
}

func FromContext(ctx context.Context) (ClinicContext, bool) {
	cc, ok := ctx.Value(contextKey{}).(ClinicContext)
	return cc, ok
}

// ID returns the clinic id in ctx, or 0 when none is set.
func ID(ctx context.Context) int64 {
	cc, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return cc.ID
}

// Configured reports whether ctx carries a usable clinic id.
func Configured(ctx context.Context) bool {
	return ID(ctx) > 0
}
