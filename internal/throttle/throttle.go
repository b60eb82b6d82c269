// Package throttle provides the cancellable pauses used between retries and
// between outbound requests.
package throttle

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Wait blocks for d on clock, returning ctx.Err() if the context ends first.
// Non-positive durations return immediately.
func Wait(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
