package internal

import (
	"context"
	"time"
)

// WithTimeout applies duration, or DefaultGatewayTimeout when it is not
// positive.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = DefaultGatewayTimeout
	}
	return context.WithTimeout(ctx, duration)
}

// Detached keeps ctx values but drops its cancellation and applies a fresh
// timeout. Used for calls that must run to completion once started.
func Detached(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	return WithTimeout(context.WithoutCancel(ctx), duration)
}
