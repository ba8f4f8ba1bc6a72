package fetcher

import (
	"context"
	"sync"
	"time"
)

// Gate is a fixed-interval politeness gate shared by every outbound request
// to the target host. Listing fetches, detail-page completion fetches and
// menu-image lookups all pass through the same gate, so the host never sees
// more than one request per interval regardless of worker count.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewGate creates a gate enforcing the given minimum interval between
// requests. A zero or negative interval disables gating.
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Wait blocks until the caller may issue the next request, or until the
// context is cancelled.
func (g *Gate) Wait(ctx context.Context) error {
	if g == nil || g.interval <= 0 {
		return ctx.Err()
	}

	g.mu.Lock()
	now := time.Now()
	wait := g.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	// Reserve the next slot before sleeping so concurrent callers queue up.
	slot := now.Add(wait)
	g.next = slot.Add(g.interval)
	g.mu.Unlock()

	return sleep(ctx, wait)
}
