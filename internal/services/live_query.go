package services

import (
	"fmt"

	"fleet-tracking-service/internal/domain"
	"fleet-tracking-service/internal/simulation"
)

// LiveQuery answers point-in-time questions from the last committed
// snapshot. It never takes the registry lock.
type LiveQuery struct {
	store *simulation.SnapshotStore
}

func NewLiveQuery(store *simulation.SnapshotStore) *LiveQuery {
	return &LiveQuery{store: store}
}

// Snapshot returns the whole committed snapshot. Treat it as read-only.
func (q *LiveQuery) Snapshot() *domain.LiveSnapshot {
	return q.store.Load()
}

func (q *LiveQuery) GetAll() []domain.VehicleSnapshot {
	snap := q.store.Load()
	out := make([]domain.VehicleSnapshot, len(snap.Vehicles))
	copy(out, snap.Vehicles)
	return out
}

// GetByRoute returns the vehicles on routeID. Unknown routes yield an empty
// slice, not an error.
func (q *LiveQuery) GetByRoute(routeID string) []domain.VehicleSnapshot {
	snap := q.store.Load()
	out := make([]domain.VehicleSnapshot, 0)
	for _, v := range snap.Vehicles {
		if v.RouteID == routeID {
			out = append(out, v)
		}
	}
	return out
}

func (q *LiveQuery) GetVehicle(vehicleID string) (domain.VehicleSnapshot, error) {
	snap := q.store.Load()
	for _, v := range snap.Vehicles {
		if v.VehicleID == vehicleID {
			return v, nil
		}
	}
	return domain.VehicleSnapshot{}, fmt.Errorf("get vehicle %q: %w", vehicleID, domain.ErrNotFound)
}

// Subscribe forwards to the snapshot store; see SnapshotStore.Subscribe.
func (q *LiveQuery) Subscribe() (<-chan *domain.LiveSnapshot, func()) {
	return q.store.Subscribe()
}
