package session

import (
	"context"
	"time"

	"anonbox/internal/logger"
	"anonbox/internal/metrics"
)

// RunJanitor purges expired sessions every interval until ctx is cancelled.
func RunJanitor(ctx context.Context, p Purger, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := p.PurgeExpired(ctx, now)
			if err == nil {
				metrics.RecordSessionsPurged(n)
			}
			if log == nil {
				continue
			}
			if err != nil {
				log.Warnw("session_purge_failed", "err", err)
				continue
			}
			if n > 0 {
				log.Debugw("session_purged", "count", n)
			}
		}
	}
}
