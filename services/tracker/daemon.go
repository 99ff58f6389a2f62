package tracker

import (
	"context"
	"log/slog"
	"time"
)

// ScrapeDaemon runs a full scrape cycle immediately, then one per
// interval until the context is cancelled. Cancellation between
// shipments leaves the store consistent, reconciliation is
// self-contained per shipment.
func (s Service) ScrapeDaemon(ctx context.Context, interval time.Duration) {
	slog.InfoContext(ctx, "scrape daemon started", "interval", interval)

	s.runCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "scrape daemon stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s Service) runCycle(ctx context.Context) {
	batch, err := s.ScrapeBatch(ctx, 0)
	if err != nil {
		slog.ErrorContext(ctx, "scrape cycle failed", "err", err)
		return
	}
	failed := 0
	for _, r := range batch.Results {
		if !r.Success {
			failed++
		}
	}
	slog.InfoContext(
		ctx, "scrape cycle complete",
		"count", len(batch.Results),
		"failed", failed,
	)
}
