package dto

import (
	"time"

	"fleet-tracking-service/internal/domain"
)

type SimulationStatus struct {
	IsRunning       bool       `json:"isRunning"`
	Status          string     `json:"status"`
	SpeedMultiplier float64    `json:"speedMultiplier"`
	TickIntervalMs  int64      `json:"tickIntervalMs"`
	StartedAt       *time.Time `json:"startedAt"`
	TickCount       uint64     `json:"tickCount"`
}

func FromSimulationState(s domain.SimulationState) SimulationStatus {
	return SimulationStatus{
		IsRunning:       s.IsRunning(),
		Status:          string(s.Status),
		SpeedMultiplier: s.SpeedMultiplier,
		TickIntervalMs:  s.TickInterval.Milliseconds(),
		StartedAt:       s.StartedAt,
		TickCount:       s.TickCount,
	}
}

type SpeedRequest struct {
	Speed *float64 `json:"speed"`
}

type BreakdownRequest struct {
	Reason string `json:"reason"`
}

type RouteActivationResponse struct {
	RouteID  string `json:"routeId"`
	Vehicles int    `json:"vehicles"`
}
