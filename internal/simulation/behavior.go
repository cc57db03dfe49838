package simulation

import (
	"math"
	"time"

	"fleet-tracking-service/internal/domain"
)

const breakdownReason = "Mechanical breakdown"

var delayReasons = []string{
	"Traffic congestion",
	"Road works",
	"Passenger boarding delay",
	"Mechanical check",
	"Weather conditions",
}

var (
	weatherConditions = []string{"Sunny", "Partly cloudy", "Cloudy", "Light rain", "Heavy rain"}
	trafficConditions = []string{"Light", "Moderate", "Heavy"}
)

// applyDelay adds a fresh delay with a small probability, otherwise holds the
// current delay while its cause lasts and then lets it decay to zero.
func applyDelay(v *domain.Vehicle, rng RandomSource, p Params, dt time.Duration) {
	s := &v.State

	if rng.Float64() < p.DelayProbability {
		inc := 1
		if p.MaxDelayIncrementMinutes > 1 {
			inc += rng.Intn(p.MaxDelayIncrementMinutes)
		}
		reason := delayReasons[rng.Intn(len(delayReasons))]
		s.CurrentDelayMinutes += float64(inc)
		s.DelayReason = &reason
		s.DelayHoldRemaining = p.DelayHold
		return
	}

	if s.CurrentDelayMinutes <= 0 {
		s.CurrentDelayMinutes = 0
		s.DelayReason = nil
		return
	}

	if s.DelayHoldRemaining > 0 {
		s.DelayHoldRemaining -= dt
		if s.DelayHoldRemaining < 0 {
			s.DelayHoldRemaining = 0
		}
		return
	}

	s.CurrentDelayMinutes -= p.DelayDecayPerMinute * dt.Minutes()
	if s.CurrentDelayMinutes <= 0 {
		s.CurrentDelayMinutes = 0
		s.DelayReason = nil
	}
}

// maybeBreakDown injects a random mechanical fault.
func maybeBreakDown(v *domain.Vehicle, rng RandomSource, p Params) bool {
	if p.BreakdownProbability <= 0 || rng.Float64() >= p.BreakdownProbability {
		return false
	}
	breakDown(v, breakdownReason)
	return true
}

func breakDown(v *domain.Vehicle, reason string) {
	v.State.Status = domain.StatusBreakdown
	v.State.SpeedKmh = 0
	v.State.DelayReason = &reason
	v.State.DelayHoldRemaining = 0
}

// applyLoad boards and alights passengers when the vehicle reaches a new
// waypoint. Boarding dominates early in a trip and alighting late, so load
// rises near the start and drains towards the terminus.
func applyLoad(v *domain.Vehicle, rng RandomSource, p Params, progress float64, arrived, terminal bool) {
	if terminal {
		v.Alight(v.State.PassengerLoad)
		v.ClampLoad()
		return
	}

	if arrived {
		frac := clamp(progress/100, 0, 1)
		maxAlight := int(math.Round(float64(v.Capacity) * p.AlightingRate * frac))
		maxBoard := int(math.Round(float64(v.Capacity) * p.BoardingRate * (1 - frac)))

		v.Alight(rng.Intn(maxAlight + 1))
		v.Board(rng.Intn(maxBoard + 1))
	}

	v.ClampLoad()
}

// drawEnvironment picks decorative conditions. It uses its own random stream
// so that it never shifts the draws of the movement model.
func drawEnvironment(rng RandomSource) domain.Environment {
	temp := 24 + rng.Float64()*8
	return domain.Environment{
		Weather:          weatherConditions[rng.Intn(len(weatherConditions))],
		TemperatureC:     math.Round(temp*10) / 10,
		TrafficCondition: trafficConditions[rng.Intn(len(trafficConditions))],
	}
}
