// Package throttle enforces a minimum interval between outbound calls.
package throttle

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Gate serializes callers so that consecutive admissions are at least
// MinInterval apart. One Gate is shared by every caller of an adapter instance.
type Gate struct {
	limiter     *rate.Limiter
	minInterval time.Duration
}

// NewGate creates a gate. A non-positive interval admits everything immediately.
func NewGate(minInterval time.Duration) *Gate {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Gate{
		limiter:     rate.NewLimiter(limit, 1),
		minInterval: minInterval,
	}
}

// Wait blocks until the caller may proceed or ctx is done
func (g *Gate) Wait(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate gate: %w", err)
	}
	return nil
}

// MinInterval returns the configured spacing
func (g *Gate) MinInterval() time.Duration {
	return g.minInterval
}
