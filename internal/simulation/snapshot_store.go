package simulation

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"fleet-tracking-service/internal/domain"
)

// SnapshotStore holds the last committed snapshot.
//
// The registry is its only writer. Readers load the pointer and never block
// the writer; because a snapshot is never mutated after Commit, a reader
// always sees one whole tick.
type SnapshotStore struct {
	current atomic.Pointer[domain.LiveSnapshot]

	mu     sync.Mutex
	subs   map[uint64]chan *domain.LiveSnapshot
	nextID uint64
}

func NewSnapshotStore() *SnapshotStore {
	s := &SnapshotStore{subs: make(map[uint64]chan *domain.LiveSnapshot)}
	s.current.Store(&domain.LiveSnapshot{Timestamp: time.Now(), Vehicles: []domain.VehicleSnapshot{}})
	return s
}

// Load returns the latest committed snapshot. Callers must treat it as read-only.
func (s *SnapshotStore) Load() *domain.LiveSnapshot {
	return s.current.Load()
}

// Commit publishes snap to readers and notifies subscribers.
func (s *SnapshotStore) Commit(snap *domain.LiveSnapshot) {
	s.current.Store(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		offerLatest(ch, snap)
	}
}

// Subscribe returns a channel that receives every committed snapshot a slow
// subscriber can keep up with; older undelivered snapshots are dropped in
// favour of newer ones. Call cancel to release the subscription.
func (s *SnapshotStore) Subscribe() (<-chan *domain.LiveSnapshot, func()) {
	ch := make(chan *domain.LiveSnapshot, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func offerLatest(ch chan *domain.LiveSnapshot, snap *domain.LiveSnapshot) {
	select {
	case ch <- snap:
		return
	default:
	}

	// Buffer full: drop the stale snapshot and retry once.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
