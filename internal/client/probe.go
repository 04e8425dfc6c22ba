package client

import (
	"context"
	"time"
)

// ProbeHandle is the explicit handle of the deferred startup authentication
// probe: it can be awaited via Done or stopped via Cancel before it runs.
type ProbeHandle struct {
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	timeout time.Duration
}

func newProbeHandle(timeout time.Duration) *ProbeHandle {
	ctx, cancel := context.WithCancel(context.Background())

	return &ProbeHandle{
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		timeout: timeout,
	}
}

// run executes fn once with a bounded context and closes Done. A handle
// cancelled before run fires skips fn entirely.
func (h *ProbeHandle) run(fn func(ctx context.Context)) {
	defer close(h.done)
	defer h.cancel()

	if h.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(h.ctx, h.timeout)
	defer cancel()

	fn(ctx)
}

// Done is closed once the probe has finished or been cancelled.
func (h *ProbeHandle) Done() <-chan struct{} {
	return h.done
}

// Cancel stops the probe; it is safe to call more than once.
func (h *ProbeHandle) Cancel() {
	h.cancel()
}

// Wait blocks until the probe completes or ctx is done.
func (h *ProbeHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
