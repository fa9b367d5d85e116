// Package ratelimit implements a fixed-window request counter. The
// window resets at discrete boundaries, so a burst straddling a boundary
// can see up to twice the limit; that is the accepted tradeoff of the
// algorithm and fine for a best-effort gate on auth endpoints.
package ratelimit

import (
	"context"
	"time"
)

type Limiter interface {
	// Allow reports whether the identifier may make another request.
	// The first request in a window starts the counter at 1; requests
	// within the window are allowed while the counter stays below max.
	Allow(ctx context.Context, id string, max int, window time.Duration) (bool, error)
}
