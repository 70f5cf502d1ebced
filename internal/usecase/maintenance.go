package usecase

import (
	"context"
	"time"
)

// PurgeElapsed removes conferences whose dates ended more than the
// retention window ago. It is an explicit maintenance operation and is
// never run as part of a refresh cycle.
func (r *Refresher) PurgeElapsed(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := r.now().Add(-retention)
	n, err := r.store.PurgeElapsedConferences(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.info("purged elapsed conferences", "count", n, "cutoff", cutoff.Format("2006-01-02"))
	}
	return n, nil
}
