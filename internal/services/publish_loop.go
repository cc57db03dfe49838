package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"fleet-tracking-service/internal/domain"
	"fleet-tracking-service/internal/ports"
)

// RunPublisher forwards committed snapshots to pub until ctx is cancelled.
// A slow publisher skips intermediate ticks rather than stalling the clock.
// Publish failures are logged and do not stop the loop.
func RunPublisher(
	ctx context.Context,
	subscribe func() (<-chan *domain.LiveSnapshot, func()),
	pub ports.SnapshotPublisher,
	timeout time.Duration,
) error {
	ch, cancel := subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-ch:
			if !ok {
				return nil
			}

			pctx, pcancel := context.WithTimeout(ctx, timeout)
			err := pub.Publish(pctx, snap)
			pcancel()
			if err != nil && ctx.Err() == nil {
				log.WithError(err).WithField("tick", snap.Tick).Warn("snapshot publish failed")
			}
		}
	}
}
