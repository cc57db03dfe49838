package simulation

import (
	"fmt"
	"math"
	"time"

	"fleet-tracking-service/internal/domain"
)

// Params holds the tunables of the simulation. All probabilities are per tick.
type Params struct {
	TickInterval           time.Duration
	DefaultSpeedMultiplier float64
	MaxSpeedMultiplier     float64
	EndOfRoutePolicy       domain.EndOfRoutePolicy
	ResetOnStart           bool

	StopToleranceKm float64
	// SpeedJitter is the +/- fraction applied to a vehicle's base speed each tick.
	SpeedJitter float64
	// Layover is the simulated time a vehicle stays off duty at the terminus
	// before re-spawning under the loop policy.
	Layover time.Duration

	DelayProbability         float64
	MaxDelayIncrementMinutes int
	DelayHold                time.Duration
	DelayDecayPerMinute      float64

	BreakdownProbability float64
	RecoveryProbability  float64

	// Fractions of capacity that may board (early in a trip) or alight
	// (late in a trip) at a single stop.
	BoardingRate  float64
	AlightingRate float64
}

func DefaultParams() Params {
	return Params{
		TickInterval:             time.Second,
		DefaultSpeedMultiplier:   1,
		MaxSpeedMultiplier:       100,
		EndOfRoutePolicy:         domain.EndOfRouteLoop,
		ResetOnStart:             true,
		StopToleranceKm:          0.05,
		SpeedJitter:              0.1,
		Layover:                  5 * time.Minute,
		DelayProbability:         0.002,
		MaxDelayIncrementMinutes: 10,
		DelayHold:                10 * time.Minute,
		DelayDecayPerMinute:      0.5,
		BreakdownProbability:     0.0002,
		RecoveryProbability:      0.02,
		BoardingRate:             0.2,
		AlightingRate:            0.25,
	}
}

// Validate checks the parameters before a clock is built from them.
func (p Params) Validate() error {
	if p.TickInterval <= 0 {
		return fmt.Errorf("params: tick interval must be positive: %w", domain.ErrInvalidArgument)
	}
	if err := p.ValidateSpeed(p.DefaultSpeedMultiplier); err != nil {
		return fmt.Errorf("params: default speed multiplier: %w", err)
	}
	switch p.EndOfRoutePolicy {
	case domain.EndOfRouteLoop, domain.EndOfRouteStop:
	default:
		return fmt.Errorf("params: unknown end of route policy %q: %w", p.EndOfRoutePolicy, domain.ErrInvalidArgument)
	}
	for name, prob := range map[string]float64{
		"delay":     p.DelayProbability,
		"breakdown": p.BreakdownProbability,
		"recovery":  p.RecoveryProbability,
	} {
		if prob < 0 || prob > 1 {
			return fmt.Errorf("params: %s probability %v outside [0,1]: %w", name, prob, domain.ErrInvalidArgument)
		}
	}
	if p.SpeedJitter < 0 || p.SpeedJitter >= 1 {
		return fmt.Errorf("params: speed jitter %v outside [0,1): %w", p.SpeedJitter, domain.ErrInvalidArgument)
	}
	return nil
}

// ValidateSpeed rejects multipliers the clock cannot run at. Zero is not a
// way to pause; callers stop the clock instead.
func (p Params) ValidateSpeed(m float64) error {
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return fmt.Errorf("speed multiplier must be finite: %w", domain.ErrInvalidArgument)
	}
	if m <= 0 {
		return fmt.Errorf("speed multiplier must be positive (got %v): %w", m, domain.ErrInvalidArgument)
	}
	if p.MaxSpeedMultiplier > 0 && m > p.MaxSpeedMultiplier {
		return fmt.Errorf("speed multiplier %v exceeds maximum %v: %w", m, p.MaxSpeedMultiplier, domain.ErrInvalidArgument)
	}
	return nil
}
