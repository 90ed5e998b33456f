package session

import (
	"fmt"
	"time"
)

// Config sets the per-channel ceilings and the set score weighting.
type Config struct {
	ROMMax           float64 `yaml:"rom_max"`
	XTiltMax         float64 `yaml:"x_tilt_max"`
	ZTiltMax         float64 `yaml:"z_tilt_max"`
	RepTimeMax       float64 `yaml:"rep_time_max"`
	VerticalAccelMax float64 `yaml:"vertical_accel_max"`
	// ROMWeight is the share of the set score that comes from range of
	// motion; the rest comes from stability (100 minus the tilt penalties).
	ROMWeight float64 `yaml:"rom_weight"`
	// IdleTimeout drops live sessions that saw no request for this long.
	// Zero keeps them until they are finished or abandoned.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// DefaultConfig returns the stock channel settings. Tilt ceilings are degrees,
// rep time seconds, vertical acceleration m/s².
func DefaultConfig() Config {
	return Config{
		ROMMax:           100,
		XTiltMax:         30,
		ZTiltMax:         30,
		RepTimeMax:       10,
		VerticalAccelMax: 20,
		ROMWeight:        0.6,
		IdleTimeout:      2 * time.Hour,
	}
}

// Validate rejects non-positive ceilings and weights outside 0..1.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"rom_max":            c.ROMMax,
		"x_tilt_max":         c.XTiltMax,
		"z_tilt_max":         c.ZTiltMax,
		"rep_time_max":       c.RepTimeMax,
		"vertical_accel_max": c.VerticalAccelMax,
	} {
		if v <= 0 {
			return fmt.Errorf("scoring.%s must be positive, got %v", name, v)
		}
	}
	if c.ROMWeight < 0 || c.ROMWeight > 1 {
		return fmt.Errorf("scoring.rom_weight must be within 0..1, got %v", c.ROMWeight)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("scoring.idle_timeout must not be negative, got %v", c.IdleTimeout)
	}
	return nil
}
