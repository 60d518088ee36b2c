package caption

import (
	"context"
	"time"
)

// Limiter enforces a minimum interval between call starts. The hosted
// description services meter requests, so the pipeline spaces them out
// instead of bursting.
type Limiter struct {
	Interval time.Duration

	last time.Time
}

// Wait blocks until the interval since the previous call has passed, or
// returns early with the context error on cancellation.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.Interval > 0 && !l.last.IsZero() {
		if wait := l.Interval - time.Since(l.last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	l.last = time.Now()
	return nil
}
