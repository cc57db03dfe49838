package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-tracking-service/internal/domain"
)

// kmPerDegree is one degree of longitude on the equator.
const kmPerDegree = 6371 * 3.141592653589793 / 180

func TestDoublingSpeedDoublesDistancePerTick(t *testing.T) {
	p := quietParams()
	p.TickInterval = time.Second

	distanceAfterOneTick := func(multiplier float64) float64 {
		route := eastboundRoute(t, "long", 2, 100/kmPerDegree)
		require.InDelta(t, 100, route.TotalDistanceKm, 1e-6)

		clock, reg := newTestClock(t, p, fixedSource{0.5})
		require.NoError(t, reg.ActivateRoute(route, []*domain.Vehicle{newTestVehicle(t, "bus-1", 50, 50)}))

		_, err := clock.SetSpeed(multiplier)
		require.NoError(t, err)
		clock.Start()
		require.True(t, clock.Tick())

		return vehicleByID(t, reg.Store().Load(), "bus-1").State.DistanceCoveredKm
	}

	single := distanceAfterOneTick(1)
	double := distanceAfterOneTick(2)

	assert.InDelta(t, 50.0/3600, single, 1e-9)
	assert.InDelta(t, 2*single, double, 1e-9)
}

func TestJitteredSpeedStaysWithinBounds(t *testing.T) {
	p := quietParams()
	route := eastboundRoute(t, "long", 2, 100/kmPerDegree)

	clock, reg := newTestClock(t, p, NewRandom(7))
	require.NoError(t, reg.ActivateRoute(route, []*domain.Vehicle{newTestVehicle(t, "bus-1", 50, 50)}))
	clock.Start()

	prev := 0.0
	for i := 0; i < 200; i++ {
		require.True(t, clock.Tick())
		vs := vehicleByID(t, reg.Store().Load(), "bus-1")
		delta := vs.State.DistanceCoveredKm - prev
		prev = vs.State.DistanceCoveredKm

		assert.GreaterOrEqual(t, delta, 50*(1-p.SpeedJitter)/3600-1e-12)
		assert.LessOrEqual(t, delta, 50*(1+p.SpeedJitter)/3600+1e-12)
	}
}

func TestBrokenDownVehicleHoldsPosition(t *testing.T) {
	p := quietParams()
	route := eastboundRoute(t, "r1", 4, 0.05)

	clock, reg := newTestClock(t, p, fixedSource{0.5})
	require.NoError(t, reg.ActivateRoute(route, []*domain.Vehicle{newTestVehicle(t, "bus-1", 40, 40)}))
	clock.Start()
	_, err := clock.SetSpeed(20)
	require.NoError(t, err)

	require.True(t, clock.Tick())
	_, err = reg.InjectBreakdown("bus-1", "")
	require.NoError(t, err)
	held := vehicleByID(t, reg.Store().Load(), "bus-1")

	for i := 0; i < 5; i++ {
		require.True(t, clock.Tick())
		vs := vehicleByID(t, reg.Store().Load(), "bus-1")
		assert.Equal(t, domain.StatusBreakdown, vs.State.Status)
		assert.Equal(t, held.State.DistanceCoveredKm, vs.State.DistanceCoveredKm)
		assert.Equal(t, 0.0, vs.State.SpeedKmh)
		assert.Equal(t, breakdownReason, vs.State.Reason())
		assert.Nil(t, vs.Position.ETAToDestinationMinutes)
	}

	_, err = reg.Recover("bus-1")
	require.NoError(t, err)
	require.True(t, clock.Tick())
	moved := vehicleByID(t, reg.Store().Load(), "bus-1")
	assert.Greater(t, moved.State.DistanceCoveredKm, held.State.DistanceCoveredKm)
	assert.NotEqual(t, domain.StatusBreakdown, moved.State.Status)
}

func TestBreakdownAccruesDelayThenDecays(t *testing.T) {
	p := quietParams()
	route := eastboundRoute(t, "r1", 4, 0.05)

	clock, reg := newTestClock(t, p, fixedSource{0.5})
	require.NoError(t, reg.ActivateRoute(route, []*domain.Vehicle{newTestVehicle(t, "bus-1", 40, 40)}))
	clock.Start()
	// One simulated minute per tick.
	_, err := clock.SetSpeed(60)
	require.NoError(t, err)

	_, err = reg.InjectBreakdown("bus-1", "")
	require.NoError(t, err)

	const stuck = 30
	for i := 0; i < stuck; i++ {
		require.True(t, clock.Tick())
	}
	vs := vehicleByID(t, reg.Store().Load(), "bus-1")
	assert.Equal(t, domain.StatusBreakdown, vs.State.Status)
	assert.InDelta(t, stuck, vs.State.CurrentDelayMinutes, 1e-9)

	vs, err = reg.Recover("bus-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelayed, vs.State.Status)
	assert.Equal(t, breakdownReason, vs.State.Reason())

	require.True(t, clock.Tick())
	vs = vehicleByID(t, reg.Store().Load(), "bus-1")
	assert.Equal(t, domain.StatusDelayed, vs.State.Status)
	assert.InDelta(t, stuck-p.DelayDecayPerMinute, vs.State.CurrentDelayMinutes, 1e-9)
	assert.Greater(t, vs.State.DistanceCoveredKm, 0.0)
}

func TestLoopPolicyRespawnsAfterLayover(t *testing.T) {
	p := quietParams()
	p.Layover = time.Minute
	route := eastboundRoute(t, "short", 2, 0.01)

	clock, reg := newTestClock(t, p, fixedSource{0.5})
	require.NoError(t, reg.ActivateRoute(route, []*domain.Vehicle{newTestVehicle(t, "bus-1", 40, 60)}))
	clock.Start()
	_, err := clock.SetSpeed(100)
	require.NoError(t, err)

	// 100 simulated seconds at 60 km/h overshoots the 1.1 km route.
	require.True(t, clock.Tick())
	end := vehicleByID(t, reg.Store().Load(), "bus-1")
	assert.Equal(t, domain.StatusOffDuty, end.State.Status)
	assert.Equal(t, route.TotalDistanceKm, end.State.DistanceCoveredKm)
	assert.Equal(t, 100.0, end.Position.ProgressPercentage)
	assert.Equal(t, 0, end.State.PassengerLoad)
	assert.Equal(t, 1, end.State.TripNumber)

	require.True(t, clock.Tick())
	again := vehicleByID(t, reg.Store().Load(), "bus-1")
	assert.Equal(t, domain.StatusOnRoute, again.State.Status)
	assert.Equal(t, 0.0, again.State.DistanceCoveredKm)
	assert.Equal(t, 2, again.State.TripNumber)
}

func TestStopPolicyParksAtTerminus(t *testing.T) {
	p := quietParams()
	p.EndOfRoutePolicy = domain.EndOfRouteStop
	route := eastboundRoute(t, "short", 2, 0.01)

	clock, reg := newTestClock(t, p, fixedSource{0.5})
	require.NoError(t, reg.ActivateRoute(route, []*domain.Vehicle{newTestVehicle(t, "bus-1", 40, 60)}))
	clock.Start()
	_, err := clock.SetSpeed(100)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.True(t, clock.Tick())
	}
	vs := vehicleByID(t, reg.Store().Load(), "bus-1")
	assert.Equal(t, domain.StatusOffDuty, vs.State.Status)
	assert.Equal(t, route.TotalDistanceKm, vs.State.DistanceCoveredKm)
	assert.Equal(t, 1, vs.State.TripNumber)
}

func TestDistanceMonotonicAndBounded(t *testing.T) {
	p := DefaultParams()
	p.EndOfRoutePolicy = domain.EndOfRouteStop
	p.BreakdownProbability = 0.01
	p.RecoveryProbability = 0.2
	p.DelayProbability = 0.05

	route := eastboundRoute(t, "r1", 8, 0.03)
	clock, reg := newTestClock(t, p, NewRandom(42))
	require.NoError(t, reg.ActivateRoute(route, []*domain.Vehicle{
		newTestVehicle(t, "bus-1", 40, 35),
		newTestVehicle(t, "bus-2", 52, 45),
		newTestVehicle(t, "bus-3", 30, 25),
	}))
	clock.Start()
	_, err := clock.SetSpeed(30)
	require.NoError(t, err)

	prev := map[string]float64{}
	for _, vs := range reg.Store().Load().Vehicles {
		prev[vs.VehicleID] = vs.State.DistanceCoveredKm
	}

	for i := 0; i < 500; i++ {
		require.True(t, clock.Tick())
		for _, vs := range reg.Store().Load().Vehicles {
			d := vs.State.DistanceCoveredKm
			assert.GreaterOrEqual(t, d, prev[vs.VehicleID])
			assert.LessOrEqual(t, d, route.TotalDistanceKm)
			assert.InDelta(t, 100*d/route.TotalDistanceKm, vs.Position.ProgressPercentage, 1e-9)
			assert.GreaterOrEqual(t, vs.State.PassengerLoad, 0)
			assert.LessOrEqual(t, vs.State.PassengerLoad, vs.Capacity)
			assert.GreaterOrEqual(t, vs.State.CurrentDelayMinutes, 0.0)
			if vs.State.Status == domain.StatusOnRoute {
				assert.Zero(t, vs.State.CurrentDelayMinutes)
			}
			prev[vs.VehicleID] = d
		}
	}
}
