package portfolio

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by a refresh that a newer one replaced when the
// newer refresh could not produce a result either (for example because its own
// caller went away).
var ErrSuperseded = errors.New("portfolio refresh superseded by a newer refresh")

// flight is one refresh in progress. result and err are final once done is closed.
type flight struct {
	done      chan struct{}
	dashboard *Dashboard
	err       error
}

// Refresher coalesces concurrent dashboard refreshes as last-refresh-wins:
// starting a refresh cancels the one in flight, and the cancelled caller is
// handed the newer refresh's result instead of its own stale one. The zero
// value is ready to use.
type Refresher struct {
	mu     sync.Mutex
	latest *flight
	cancel context.CancelFunc
}

// Run executes fn as the newest refresh.
func (r *Refresher) Run(ctx context.Context, fn func(ctx context.Context) (*Dashboard, error)) (*Dashboard, error) {
	own := &flight{done: make(chan struct{})}
	runCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.latest = own
	r.cancel = cancel
	r.mu.Unlock()

	own.dashboard, own.err = fn(runCtx)

	r.mu.Lock()
	next := r.latest
	if next == own {
		r.latest = nil
		r.cancel = nil
	}
	r.mu.Unlock()
	cancel()

	if next != own {
		own.dashboard, own.err = r.adopt(ctx, next)
	}
	close(own.done)
	return own.dashboard, own.err
}

// adopt waits for the refresh that replaced ours and takes its result.
func (r *Refresher) adopt(ctx context.Context, next *flight) (*Dashboard, error) {
	select {
	case <-next.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if next.err != nil && (errors.Is(next.err, context.Canceled) || errors.Is(next.err, context.DeadlineExceeded)) {
		return nil, ErrSuperseded
	}
	return next.dashboard, next.err
}
