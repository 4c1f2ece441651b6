package airport

import (
	"context"
	"time"
)

// reapExpiredWorker periodically releases reservations whose token expired
// without being performed.
func (a *Airport) reapExpiredWorker(ctx context.Context) {
	var ticker = time.NewTicker(a.options.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if reaped := a.reapExpired(time.Now()); reaped > 0 {
				a.options.logger.Info("reclaimed expired reservations", "count", reaped)
			}
		}
	}
}

// reapExpired rolls back every reservation expired at now and returns how many it released.
func (a *Airport) reapExpired(now time.Time) int {
	var expired = a.reservations.takeExpired(now)
	for _, res := range expired {
		a.expire(res)
	}
	return len(expired)
}
