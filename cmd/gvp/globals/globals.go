package globals

import (
	"context"

	"gvp-client/internal/components/telemetry"
	"gvp-client/pkg/gvp"
)

type key int

const valueKey key = 0

type Value struct {
	Client *gvp.Client
	Otel   telemetry.Otel
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, valueKey, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(valueKey).(*Value)
}
