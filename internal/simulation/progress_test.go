package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-tracking-service/internal/domain"
)

func TestLocateInterpolatesAlongSegment(t *testing.T) {
	route := eastboundRoute(t, "r1", 3, 0.1)
	seg := route.Waypoints[1].CumulativeKm

	pos, err := Locate(route, seg/2, 30, 0.05)
	require.NoError(t, err)

	assert.Equal(t, 0, pos.WaypointIndex)
	assert.InDelta(t, 0.05, pos.Coordinates.Lon, 1e-9)
	assert.InDelta(t, 0, pos.Coordinates.Lat, 1e-9)
	assert.InDelta(t, 90, pos.HeadingDegrees, 1e-6)
	assert.InDelta(t, 25, pos.ProgressPercentage, 1e-9)
	assert.InDelta(t, seg/2, pos.DistanceToNextStopKm, 1e-9)
	assert.False(t, pos.AtWaypoint)

	require.NotNil(t, pos.NextStopETAMinutes)
	require.NotNil(t, pos.ETAToDestinationMinutes)
	assert.InDelta(t, seg/2/30*60, *pos.NextStopETAMinutes, 1e-9)
	assert.InDelta(t, (route.TotalDistanceKm-seg/2)/30*60, *pos.ETAToDestinationMinutes, 1e-9)
}

func TestLocateStalledVehicleHasUnknownETA(t *testing.T) {
	route := eastboundRoute(t, "r1", 3, 0.1)

	pos, err := Locate(route, 1, 0, 0.05)
	require.NoError(t, err)
	assert.Nil(t, pos.NextStopETAMinutes)
	assert.Nil(t, pos.ETAToDestinationMinutes)
}

func TestLocateClampsToRouteEnds(t *testing.T) {
	route := eastboundRoute(t, "r1", 3, 0.1)

	end, err := Locate(route, route.TotalDistanceKm+10, 40, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 2, end.WaypointIndex)
	assert.Equal(t, 100.0, end.ProgressPercentage)
	assert.Equal(t, 0.0, end.HeadingDegrees)
	assert.Equal(t, route.Final().Coordinates, end.Coordinates)
	assert.True(t, end.AtWaypoint)
	require.NotNil(t, end.ETAToDestinationMinutes)
	assert.Equal(t, 0.0, *end.ETAToDestinationMinutes)

	start, err := Locate(route, -3, 40, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 0.0, start.ProgressPercentage)
	assert.Equal(t, route.Waypoints[0].Coordinates, start.Coordinates)
}

func TestLocateFlagsWaypointWithinTolerance(t *testing.T) {
	route := eastboundRoute(t, "r1", 3, 0.1)
	seg := route.Waypoints[1].CumulativeKm

	before, err := Locate(route, seg-0.01, 40, 0.05)
	require.NoError(t, err)
	assert.True(t, before.AtWaypoint)

	after, err := Locate(route, seg+0.02, 40, 0.05)
	require.NoError(t, err)
	assert.True(t, after.AtWaypoint)
	assert.Equal(t, 1, after.WaypointIndex)
}

func TestLocateRejectsMalformedRoute(t *testing.T) {
	_, err := Locate(&domain.Route{ID: "empty"}, 1, 10, 0.05)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestLocateProgressMatchesDistance(t *testing.T) {
	route := eastboundRoute(t, "r1", 6, 0.07)

	for d := 0.0; d <= route.TotalDistanceKm; d += 0.37 {
		pos, err := Locate(route, d, 25, 0.05)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pos.ProgressPercentage, 0.0)
		assert.LessOrEqual(t, pos.ProgressPercentage, 100.0)
		assert.InDelta(t, 100*d/route.TotalDistanceKm, pos.ProgressPercentage, 1e-9)
	}
}
