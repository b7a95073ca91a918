package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// CancelFuncs releases what SetupLifecycle acquired.
type CancelFuncs struct {
	CancelTimeout context.CancelFunc
	StopSignals   context.CancelFunc
}

// SetupLifecycle returns a context canceled when timeout expires or when
// SIGINT or SIGTERM arrives, whichever comes first. A non-positive timeout
// leaves only the signal handling.
//
// Parameters:
//   - ctx: The parent context.
//   - timeout: The run deadline.
//
// Returns:
//   - context.Context: The derived context.
//   - *CancelFuncs: The cancel functions, released by Cleanup.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *CancelFuncs) {
	cancels := &CancelFuncs{}
	if timeout > 0 {
		ctx, cancels.CancelTimeout = context.WithTimeout(ctx, timeout)
	}
	ctx, cancels.StopSignals = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, cancels
}

// Cleanup stops the signal handling and the timer.
func (c *CancelFuncs) Cleanup() {
	if c.StopSignals != nil {
		c.StopSignals()
	}
	if c.CancelTimeout != nil {
		c.CancelTimeout()
	}
}
