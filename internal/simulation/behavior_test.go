package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayHoldsThenDecays(t *testing.T) {
	p := quietParams()
	p.DelayProbability = 0.1
	p.MaxDelayIncrementMinutes = 10
	p.DelayHold = 2 * time.Minute
	p.DelayDecayPerMinute = 1

	v := newTestVehicle(t, "bus-1", 40, 40)
	src := &scriptedSource{floats: []float64{0.05}, ints: []int{4, 1}}

	applyDelay(v, src, p, time.Minute)
	require.Equal(t, 5.0, v.State.CurrentDelayMinutes)
	require.Equal(t, "Road works", v.State.Reason())

	// Held for two minutes.
	applyDelay(v, src, p, time.Minute)
	applyDelay(v, src, p, time.Minute)
	assert.Equal(t, 5.0, v.State.CurrentDelayMinutes)

	for want := 4.0; want > 0; want-- {
		applyDelay(v, src, p, time.Minute)
		assert.Equal(t, want, v.State.CurrentDelayMinutes)
		assert.Equal(t, "Road works", v.State.Reason())
	}

	applyDelay(v, src, p, time.Minute)
	assert.Equal(t, 0.0, v.State.CurrentDelayMinutes)
	assert.Nil(t, v.State.DelayReason)
}

func TestLoadBoardsEarlyAndDrainsAtTerminus(t *testing.T) {
	p := quietParams()
	p.BoardingRate = 1
	p.AlightingRate = 0.25

	v := newTestVehicle(t, "bus-1", 40, 40)
	src := &scriptedSource{ints: []int{0, 35, 3, 20}}

	applyLoad(v, src, p, 0, true, false)
	assert.Equal(t, 35, v.State.PassengerLoad)

	// 3 alight, 20 try to board but only 8 seats are free.
	applyLoad(v, src, p, 50, true, false)
	assert.Equal(t, 40, v.State.PassengerLoad)

	applyLoad(v, src, p, 70, false, false)
	assert.Equal(t, 40, v.State.PassengerLoad)

	applyLoad(v, src, p, 100, true, true)
	assert.Equal(t, 0, v.State.PassengerLoad)
}

func TestLoadNeverLeavesCapacityBounds(t *testing.T) {
	p := quietParams()
	p.BoardingRate = 3
	p.AlightingRate = 3

	rng := NewRandom(99)
	v := newTestVehicle(t, "bus-1", 25, 40)
	for i := 0; i < 1000; i++ {
		applyLoad(v, rng, p, rng.Float64()*100, true, false)
		require.GreaterOrEqual(t, v.State.PassengerLoad, 0)
		require.LessOrEqual(t, v.State.PassengerLoad, v.Capacity)
	}
}

func TestMaybeBreakDown(t *testing.T) {
	p := quietParams()
	v := newTestVehicle(t, "bus-1", 40, 40)

	assert.False(t, maybeBreakDown(v, fixedSource{0}, p))

	p.BreakdownProbability = 0.5
	assert.False(t, maybeBreakDown(v, fixedSource{0.7}, p))
	assert.True(t, maybeBreakDown(v, fixedSource{0.1}, p))
	assert.Equal(t, breakdownReason, v.State.Reason())
	assert.Equal(t, 0.0, v.State.SpeedKmh)
}

func TestDrawEnvironmentRanges(t *testing.T) {
	rng := NewRandom(3)
	for i := 0; i < 100; i++ {
		env := drawEnvironment(rng)
		assert.Contains(t, weatherConditions, env.Weather)
		assert.Contains(t, trafficConditions, env.TrafficCondition)
		assert.GreaterOrEqual(t, env.TemperatureC, 24.0)
		assert.LessOrEqual(t, env.TemperatureC, 32.0)
	}
}
