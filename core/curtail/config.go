package curtail

import (
	"fmt"
	"time"
)

// Config defines the curtailment parameters loaded from configuration.
type Config struct {
	BatteryCapacityKWh float64 `json:"battery_capacity_kwh"`
	DesiredSoC         float64 `json:"desired_soc"`
	LocationID         int     `json:"location_id"`
	DefaultRateKW      float64 `json:"default_rate_kw"`
	Bounds             Bounds  `json:"bounds"`
	StartHour          int     `json:"start_hour"`
	StopHour           int     `json:"stop_hour"`
	ConnectorCount     int     `json:"connectors_per_charger"`

	PollInterval   time.Duration `json:"-"`
	RecalcInterval time.Duration `json:"-"`
}

// SetDefaults applies defaults for optional fields.
func (c *Config) SetDefaults() {
	if c.ConnectorCount <= 0 {
		c.ConnectorCount = 2
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Minute
	}
	if c.RecalcInterval <= 0 {
		c.RecalcInterval = 15 * time.Minute
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.BatteryCapacityKWh <= 0 {
		return fmt.Errorf("battery_capacity_kwh must be positive")
	}
	if c.DesiredSoC <= 0 || c.DesiredSoC > 100 {
		return fmt.Errorf("desired_soc must be in (0,100], got %v", c.DesiredSoC)
	}
	if c.Bounds.LowerKW > c.Bounds.UpperKW {
		return fmt.Errorf("clamp bounds inverted: lower %v > upper %v", c.Bounds.LowerKW, c.Bounds.UpperKW)
	}
	if c.Bounds.LowerKW < 0 {
		return fmt.Errorf("clamp_lower_kw must not be negative")
	}
	if c.StartHour < 0 || c.StartHour > 23 {
		return fmt.Errorf("start_hour must be in 0..23, got %d", c.StartHour)
	}
	if c.StopHour < 0 || c.StopHour > 23 {
		return fmt.Errorf("stop_hour must be in 0..23, got %d", c.StopHour)
	}
	if c.DefaultRateKW < 0 {
		return fmt.Errorf("default_rate_kw must not be negative")
	}
	return nil
}
