package fetch

import (
	"context"
	"sync"
	"time"
)

// Pacer throttles outgoing requests. Every call to Wait blocks for the
// configured per-request delay, and every batchSize-th call additionally
// blocks for the coarse batch pause. Concurrent requests to the target
// site sharply increase block risk, so the whole crawl funnels through
// one Pacer sequentially.
type Pacer struct {
	mu         sync.Mutex
	delay      time.Duration
	batchPause time.Duration
	batchSize  int
	count      int
}

func NewPacer(delay, batchPause time.Duration, batchSize int) *Pacer {
	return &Pacer{
		delay:      delay,
		batchPause: batchPause,
		batchSize:  batchSize,
	}
}

// Wait blocks until the next request is allowed to go out, or until ctx
// is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	p.count++
	pause := p.delay
	if p.batchSize > 0 && p.count%p.batchSize == 0 {
		pause += p.batchPause
	}
	p.mu.Unlock()

	return sleep(ctx, pause)
}

// Count returns the number of requests paced so far.
func (p *Pacer) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sleep is a context-aware sleep shared by backoff call sites.
func Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}
