package control

import (
	"fmt"
	"math"
)

func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidGains, name, v)
	}
	return nil
}

// Validate rejects gains that would make every tick misbehave rather than
// only ticks with bad sensor data.
func (c AltitudeConfig) Validate() error {
	for name, v := range c.GetParams() {
		if err := finite(name, v); err != nil {
			return err
		}
	}
	if err := validDt(c.Dt); err != nil {
		return err
	}
	if c.Deadband < 0 {
		return fmt.Errorf("%w: deadband must not be negative, got %v", ErrInvalidGains, c.Deadband)
	}
	if c.WindupMax < 0 {
		return fmt.Errorf("%w: windup must not be negative, got %v", ErrInvalidGains, c.WindupMax)
	}
	if c.Decay < 0 || c.Decay >= 1 {
		return fmt.Errorf("%w: decay must be in [0, 1), got %v", ErrInvalidGains, c.Decay)
	}
	return nil
}

func (c RateConfig) Validate() error {
	axes := [...]struct {
		name string
		g    AxisGains
	}{{"roll", c.Roll}, {"pitch", c.Pitch}, {"yaw", c.Yaw}}
	for _, a := range axes {
		for term, v := range map[string]float64{"kp": a.g.Kp, "ki": a.g.Ki, "kd": a.g.Kd} {
			if err := finite(a.name+" "+term, v); err != nil {
				return err
			}
		}
	}
	if err := finite("max_rate", c.MaxRate); err != nil {
		return err
	}
	if err := finite("windup", c.WindupMax); err != nil {
		return err
	}
	if err := validDt(c.Dt); err != nil {
		return err
	}
	if c.MaxRate < 0 {
		return fmt.Errorf("%w: max_rate must not be negative, got %v", ErrInvalidGains, c.MaxRate)
	}
	if c.WindupMax < 0 {
		return fmt.Errorf("%w: windup must not be negative, got %v", ErrInvalidGains, c.WindupMax)
	}
	return nil
}

func validDt(dt float64) error {
	if err := finite("dt", dt); err != nil {
		return err
	}
	if dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidGains, dt)
	}
	return nil
}
