package services

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"fleet-tracking-service/internal/domain"
	"fleet-tracking-service/internal/simulation"
)

// Control is the operator surface over the clock and registry.
type Control struct {
	clock    *simulation.Clock
	registry *simulation.Registry
}

func NewControl(clock *simulation.Clock, registry *simulation.Registry) *Control {
	return &Control{clock: clock, registry: registry}
}

func (c *Control) Start() domain.SimulationState { return c.clock.Start() }
func (c *Control) Stop() domain.SimulationState  { return c.clock.Stop() }
func (c *Control) Status() domain.SimulationState {
	return c.clock.Status()
}

func (c *Control) SetSpeed(multiplier float64) (domain.SimulationState, error) {
	st, err := c.clock.SetSpeed(multiplier)
	if err != nil {
		return st, fmt.Errorf("control: %w", err)
	}
	return st, nil
}

func (c *Control) InjectBreakdown(vehicleID, reason string) (domain.VehicleSnapshot, error) {
	vs, err := c.registry.InjectBreakdown(vehicleID, reason)
	if err != nil {
		return vs, fmt.Errorf("inject breakdown: %w", err)
	}
	log.WithFields(log.Fields{"vehicle_id": vehicleID, "reason": vs.State.Reason()}).Info("breakdown injected")
	return vs, nil
}

func (c *Control) Recover(vehicleID string) (domain.VehicleSnapshot, error) {
	vs, err := c.registry.Recover(vehicleID)
	if err != nil {
		return vs, fmt.Errorf("recover vehicle: %w", err)
	}
	log.WithField("vehicle_id", vehicleID).Info("vehicle recovered")
	return vs, nil
}
