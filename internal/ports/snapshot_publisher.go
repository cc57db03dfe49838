package ports

import (
	"context"

	"fleet-tracking-service/internal/domain"
)

// Port: pushes committed snapshots to consumers outside the process.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap *domain.LiveSnapshot) error
}
