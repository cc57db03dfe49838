package gtfsrt

import (
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"fleet-tracking-service/internal/domain"
)

func TestEncodeRoundTripsVehiclePositions(t *testing.T) {
	ts := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	snap := &domain.LiveSnapshot{
		Tick:      7,
		Timestamp: ts,
		Vehicles: []domain.VehicleSnapshot{{
			VehicleID:     "bus-001",
			VehicleNumber: "NB-2001",
			RouteID:       "colombo-kandy",
			Capacity:      50,
			State: domain.RuntimeState{
				DistanceCoveredKm:    12.5,
				CurrentWaypointIndex: 1,
				SpeedKmh:             36,
				HeadingDegrees:       45,
				PassengerLoad:        30,
				Status:               domain.StatusAtStop,
				TripNumber:           2,
			},
			Position: domain.Position{
				Coordinates: domain.Coordinates{Lat: 7.0, Lon: 80.0},
			},
			Environment: domain.Environment{TrafficCondition: "Heavy"},
			Timestamp:   ts,
		}},
	}

	b, err := Encode(snap)
	require.NoError(t, err)

	var fm gtfsrtpb.FeedMessage
	require.NoError(t, proto.Unmarshal(b, &fm))

	assert.Equal(t, "2.0", fm.GetHeader().GetGtfsRealtimeVersion())
	assert.Equal(t, uint64(ts.Unix()), fm.GetHeader().GetTimestamp())
	require.Len(t, fm.GetEntity(), 1)

	vp := fm.GetEntity()[0].GetVehicle()
	assert.Equal(t, "colombo-kandy-trip-2", vp.GetTrip().GetTripId())
	assert.Equal(t, "NB-2001", vp.GetVehicle().GetLabel())
	assert.InDelta(t, 7.0, vp.GetPosition().GetLatitude(), 1e-5)
	assert.InDelta(t, 10.0, vp.GetPosition().GetSpeed(), 1e-5)
	assert.Equal(t, 12500.0, vp.GetPosition().GetOdometer())
	assert.Equal(t, gtfsrtpb.VehiclePosition_STOPPED_AT, vp.GetCurrentStatus())
	assert.Equal(t, gtfsrtpb.VehiclePosition_CONGESTION, vp.GetCongestionLevel())
	assert.Equal(t, gtfsrtpb.VehiclePosition_FEW_SEATS_AVAILABLE, vp.GetOccupancyStatus())
	assert.Equal(t, uint32(60), vp.GetOccupancyPercentage())
}

func TestEmptySnapshotHasHeaderOnly(t *testing.T) {
	fm := BuildFeed(&domain.LiveSnapshot{Timestamp: time.Unix(100, 0)})
	assert.Empty(t, fm.GetEntity())
	assert.Equal(t, gtfsrtpb.FeedHeader_FULL_DATASET, fm.GetHeader().GetIncrementality())
}
