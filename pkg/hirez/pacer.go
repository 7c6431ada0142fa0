package hirez

import (
	"context"
	"sync"
	"time"
)

// pacer spreads outgoing requests a minimum interval apart. Hi-Rez throttles
// developer keys by request volume, so bursts are smoothed out instead of
// sent back to back.
type pacer struct {
	mu    sync.Mutex
	delay time.Duration
	next  time.Time
}

func newPacer(delay time.Duration) *pacer {
	return &pacer{delay: delay}
}

// Wait blocks until the caller's slot arrives, or until ctx is done. Each
// caller claims the next free slot, so N queued callers depart delay apart.
func (p *pacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}

	p.mu.Lock()
	now := time.Now()
	if p.next.Before(now) {
		p.next = now
	}
	wait := p.next.Sub(now)
	p.next = p.next.Add(p.delay)
	p.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
