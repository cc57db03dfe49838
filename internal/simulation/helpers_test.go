package simulation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fleet-tracking-service/internal/domain"
)

// fixedSource always returns the same draw. With 0.5 the speed jitter factor
// is exactly 1 and no low-probability event fires.
type fixedSource struct{ f float64 }

func (s fixedSource) Float64() float64 { return s.f }
func (s fixedSource) Intn(n int) int   { return 0 }

// scriptedSource replays the given draws, then falls back to 0.5 / 0.
type scriptedSource struct {
	floats []float64
	ints   []int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.5
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

// eastboundRoute runs along the equator from lon 0 in steps of stepDeg.
func eastboundRoute(t *testing.T, id string, stops int, stepDeg float64) *domain.Route {
	t.Helper()

	wps := make([]domain.Waypoint, 0, stops)
	for i := 0; i < stops; i++ {
		wps = append(wps, domain.Waypoint{
			Name:        fmt.Sprintf("%s-stop-%d", id, i),
			Coordinates: domain.Coordinates{Lat: 0, Lon: float64(i) * stepDeg},
			Order:       i,
		})
	}

	r, err := domain.NewRoute(id, "Route "+id, wps, time.Hour)
	require.NoError(t, err)
	return r
}

func newTestVehicle(t *testing.T, id string, capacity int, speed float64) *domain.Vehicle {
	t.Helper()
	v, err := domain.NewVehicle(id, "", "NB-"+id, capacity, speed)
	require.NoError(t, err)
	return v
}

func quietParams() Params {
	p := DefaultParams()
	p.DelayProbability = 0
	p.BreakdownProbability = 0
	p.RecoveryProbability = 0
	return p
}

func newTestClock(t *testing.T, p Params, rng RandomSource) (*Clock, *Registry) {
	t.Helper()
	reg := NewRegistry(p, rng, fixedSource{0.5}, NewSnapshotStore())
	clock, err := NewClock(reg, p)
	require.NoError(t, err)
	return clock, reg
}

func vehicleByID(t *testing.T, snap *domain.LiveSnapshot, id string) domain.VehicleSnapshot {
	t.Helper()
	for _, v := range snap.Vehicles {
		if v.VehicleID == id {
			return v
		}
	}
	t.Fatalf("vehicle %q not in snapshot", id)
	return domain.VehicleSnapshot{}
}
