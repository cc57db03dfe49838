package domain

import (
	"errors"
	"testing"
	"time"
)

func TestVehicleBoardAlightClampsToCapacity(t *testing.T) {
	v, err := NewVehicle("bus-1", "r1", "NB-1234", 10, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := v.Board(7); got != 7 {
		t.Fatalf("boarded = %d, want 7", got)
	}
	if got := v.Board(7); got != 3 {
		t.Fatalf("boarded = %d, want 3", got)
	}
	if v.State.PassengerLoad != 10 {
		t.Fatalf("load = %d, want 10", v.State.PassengerLoad)
	}
	if got := v.Board(1); got != 0 {
		t.Fatalf("boarded on full vehicle = %d, want 0", got)
	}

	if got := v.Alight(25); got != 10 {
		t.Fatalf("alighted = %d, want 10", got)
	}
	if v.State.PassengerLoad != 0 {
		t.Fatalf("load = %d, want 0", v.State.PassengerLoad)
	}
	if got := v.Alight(-3); got != 0 {
		t.Fatalf("alighted negative = %d, want 0", got)
	}
}

func TestNewVehicleRejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		id       string
		capacity int
		speed    float64
	}{
		{"empty id", "", 10, 40},
		{"zero capacity", "bus-1", 0, 40},
		{"zero speed", "bus-1", 10, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewVehicle(tc.id, "r1", "NB-1", tc.capacity, tc.speed)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestVehicleResetReturnsToStartOffset(t *testing.T) {
	v, _ := NewVehicle("bus-1", "r1", "NB-1", 50, 40)
	v.StartOffsetKm = 12.5
	v.State.DistanceCoveredKm = 80
	v.State.PassengerLoad = 33
	v.State.Status = StatusBreakdown
	v.State.TripNumber = 4

	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	v.Reset(now)

	if v.State.DistanceCoveredKm != 12.5 {
		t.Errorf("distance = %v, want 12.5", v.State.DistanceCoveredKm)
	}
	if v.State.PassengerLoad != 0 {
		t.Errorf("load = %d, want 0", v.State.PassengerLoad)
	}
	if v.State.Status != StatusOnRoute {
		t.Errorf("status = %q, want %q", v.State.Status, StatusOnRoute)
	}
	if v.State.TripNumber != 1 {
		t.Errorf("trip = %d, want 1", v.State.TripNumber)
	}
	if !v.State.TripStartedAt.Equal(now) {
		t.Errorf("trip started = %v, want %v", v.State.TripStartedAt, now)
	}
}
