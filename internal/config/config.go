package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"fleet-tracking-service/internal/domain"
	"fleet-tracking-service/internal/simulation"
)

// Get returns the environment value for key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// SimConfig is the YAML form of the simulation parameters.
type SimConfig struct {
	TickIntervalMs         int      `yaml:"tickIntervalMs" validate:"gte=10,lte=60000"`
	DefaultSpeedMultiplier float64  `yaml:"defaultSpeedMultiplier" validate:"gt=0"`
	MaxSpeedMultiplier     float64  `yaml:"maxSpeedMultiplier" validate:"gtefield=DefaultSpeedMultiplier"`
	EndOfRoutePolicy       string   `yaml:"endOfRoutePolicy" validate:"oneof=loop stop"`
	ResetOnStart           bool     `yaml:"resetOnStart"`
	AutoStart              bool     `yaml:"autoStart"`
	ActiveRoutes           []string `yaml:"activeRoutes" validate:"dive,required"`
	Seed                   int64    `yaml:"seed"`

	StopToleranceKm float64 `yaml:"stopToleranceKm" validate:"gte=0"`
	SpeedJitter     float64 `yaml:"speedJitter" validate:"gte=0,lt=1"`
	LayoverMinutes  float64 `yaml:"layoverMinutes" validate:"gte=0"`

	Delay     DelayConfig     `yaml:"delay"`
	Breakdown BreakdownConfig `yaml:"breakdown"`
	Load      LoadConfig      `yaml:"load"`
}

type DelayConfig struct {
	Probability         float64 `yaml:"probability" validate:"gte=0,lte=1"`
	MaxIncrementMinutes int     `yaml:"maxIncrementMinutes" validate:"gte=1"`
	HoldMinutes         float64 `yaml:"holdMinutes" validate:"gte=0"`
	DecayPerMinute      float64 `yaml:"decayPerMinute" validate:"gt=0"`
}

type BreakdownConfig struct {
	Probability         float64 `yaml:"probability" validate:"gte=0,lte=1"`
	RecoveryProbability float64 `yaml:"recoveryProbability" validate:"gte=0,lte=1"`
}

type LoadConfig struct {
	BoardingRate  float64 `yaml:"boardingRate" validate:"gte=0,lte=1"`
	AlightingRate float64 `yaml:"alightingRate" validate:"gte=0,lte=1"`
}

// Default mirrors simulation.DefaultParams. Seed 0 means "seed from the wall clock".
func Default() SimConfig {
	p := simulation.DefaultParams()
	return SimConfig{
		TickIntervalMs:         int(p.TickInterval / time.Millisecond),
		DefaultSpeedMultiplier: p.DefaultSpeedMultiplier,
		MaxSpeedMultiplier:     p.MaxSpeedMultiplier,
		EndOfRoutePolicy:       string(p.EndOfRoutePolicy),
		ResetOnStart:           p.ResetOnStart,
		StopToleranceKm:        p.StopToleranceKm,
		SpeedJitter:            p.SpeedJitter,
		LayoverMinutes:         p.Layover.Minutes(),
		Delay: DelayConfig{
			Probability:         p.DelayProbability,
			MaxIncrementMinutes: p.MaxDelayIncrementMinutes,
			HoldMinutes:         p.DelayHold.Minutes(),
			DecayPerMinute:      p.DelayDecayPerMinute,
		},
		Breakdown: BreakdownConfig{
			Probability:         p.BreakdownProbability,
			RecoveryProbability: p.RecoveryProbability,
		},
		Load: LoadConfig{
			BoardingRate:  p.BoardingRate,
			AlightingRate: p.AlightingRate,
		},
	}
}

// Load reads the simulation config at path. Keys missing from the file keep
// their defaults; a missing file yields the defaults.
func Load(path string) (SimConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return SimConfig{}, fmt.Errorf("load sim config %q: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (SimConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SimConfig{}, fmt.Errorf("parse sim config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return SimConfig{}, fmt.Errorf("validate sim config: %w", err)
	}
	return cfg, nil
}

func (c SimConfig) Params() simulation.Params {
	return simulation.Params{
		TickInterval:             time.Duration(c.TickIntervalMs) * time.Millisecond,
		DefaultSpeedMultiplier:   c.DefaultSpeedMultiplier,
		MaxSpeedMultiplier:       c.MaxSpeedMultiplier,
		EndOfRoutePolicy:         domain.EndOfRoutePolicy(c.EndOfRoutePolicy),
		ResetOnStart:             c.ResetOnStart,
		StopToleranceKm:          c.StopToleranceKm,
		SpeedJitter:              c.SpeedJitter,
		Layover:                  minutes(c.LayoverMinutes),
		DelayProbability:         c.Delay.Probability,
		MaxDelayIncrementMinutes: c.Delay.MaxIncrementMinutes,
		DelayHold:                minutes(c.Delay.HoldMinutes),
		DelayDecayPerMinute:      c.Delay.DecayPerMinute,
		BreakdownProbability:     c.Breakdown.Probability,
		RecoveryProbability:      c.Breakdown.RecoveryProbability,
		BoardingRate:             c.Load.BoardingRate,
		AlightingRate:            c.Load.AlightingRate,
	}
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}
