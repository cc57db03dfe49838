// Package simulation advances vehicles along route geometry on a single
// global clock.
//
// The Clock is the only component that drives time. Each tick it asks the
// Registry to advance every vehicle by tickInterval × speedMultiplier of
// simulated time; the Registry commits an immutable snapshot that readers pick
// up through the SnapshotStore without ever taking the registry lock.
//
// Ticks never overlap. Stop waits for an in-flight tick to commit before it
// returns, so once Stop returns the committed snapshot no longer changes.
package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"fleet-tracking-service/internal/domain"
)

type Clock struct {
	registry *Registry
	params   Params
	now      func() time.Time

	// tickMu serialises ticks with Start/Stop; mu guards state.
	// Lock order: tickMu, then mu.
	tickMu sync.Mutex
	mu     sync.Mutex
	state  domain.SimulationState

	wake chan struct{}
}

func NewClock(registry *Registry, p Params) (*Clock, error) {
	if registry == nil {
		return nil, fmt.Errorf("new clock: registry is nil: %w", domain.ErrInvalidArgument)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("new clock: %w", err)
	}

	return &Clock{
		registry: registry,
		params:   p,
		now:      time.Now,
		state: domain.SimulationState{
			Status:          domain.ClockStopped,
			SpeedMultiplier: p.DefaultSpeedMultiplier,
			TickInterval:    p.TickInterval,
		},
		wake: make(chan struct{}, 1),
	}, nil
}

// Start begins ticking. Starting a running clock returns its current state.
func (c *Clock) Start() domain.SimulationState {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()

	c.mu.Lock()
	if c.state.IsRunning() {
		st := c.state
		c.mu.Unlock()
		return st
	}
	c.mu.Unlock()

	if c.params.ResetOnStart {
		c.registry.Reset()
	}

	c.mu.Lock()
	started := c.now()
	c.state.Status = domain.ClockRunning
	c.state.StartedAt = &started
	st := c.state
	c.mu.Unlock()

	c.signal()
	log.WithFields(log.Fields{"speed": st.SpeedMultiplier}).Info("simulation started")
	return st
}

// Stop freezes the simulation. It returns after any in-flight tick has
// committed. Stopping a stopped clock returns its current state.
func (c *Clock) Stop() domain.SimulationState {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsRunning() {
		return c.state
	}
	c.state.Status = domain.ClockStopped
	c.signal()

	log.WithFields(log.Fields{"ticks": c.state.TickCount}).Info("simulation stopped")
	return c.state
}

// SetSpeed changes the multiplier used by subsequent ticks.
func (c *Clock) SetSpeed(multiplier float64) (domain.SimulationState, error) {
	if err := c.params.ValidateSpeed(multiplier); err != nil {
		return c.Status(), fmt.Errorf("set speed: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SpeedMultiplier = multiplier

	log.WithFields(log.Fields{"speed": multiplier}).Info("simulation speed changed")
	return c.state, nil
}

func (c *Clock) Status() domain.SimulationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Tick advances the simulation once if the clock is running and reports
// whether it did. Run calls it on the wall-clock cadence; tests call it
// directly.
func (c *Clock) Tick() bool {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()

	c.mu.Lock()
	running := c.state.IsRunning()
	dt := time.Duration(float64(c.state.TickInterval) * c.state.SpeedMultiplier)
	c.mu.Unlock()

	if !running {
		return false
	}

	c.registry.Advance(dt)

	c.mu.Lock()
	c.state.TickCount++
	c.mu.Unlock()
	return true
}

// Run drives ticks until ctx is cancelled. While stopped it parks on the
// wake channel instead of polling.
func (c *Clock) Run(ctx context.Context) error {
	for {
		if !c.Status().IsRunning() {
			select {
			case <-ctx.Done():
				return nil
			case <-c.wake:
			}
			continue
		}

		timer := time.NewTimer(c.params.TickInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			c.Tick()
		}
	}
}

func (c *Clock) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
