package scheduler

import (
	"fmt"
	"time"

	"github.com/viant/rrsim/model"
)

// Config represents scheduler configuration
type Config struct {
	// Quantum is the maximum number of units a preemptible record runs per slice
	Quantum int `json:"quantum" yaml:"quantum"`
	// TickUnits subdivides a slice so a pause lands within one tick
	TickUnits int `json:"tickUnits" yaml:"tickUnits"`
	// UnitDuration is the wall time of one simulated unit; zero disables pacing
	UnitDuration time.Duration `json:"unitDuration" yaml:"unitDuration"`
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Quantum:      200,
		TickUnits:    20,
		UnitDuration: time.Millisecond,
	}
}

// Validate returns an error describing the first invalid setting
func (c *Config) Validate() error {
	if c.Quantum <= 0 {
		return fmt.Errorf("scheduler.quantum: %w", model.ErrInvalidQuantum)
	}
	if c.TickUnits <= 0 {
		return fmt.Errorf("scheduler.tickUnits must be > 0")
	}
	if c.UnitDuration < 0 {
		return fmt.Errorf("scheduler.unitDuration must be >= 0")
	}
	return nil
}
