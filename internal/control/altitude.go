package control

import (
	"fmt"
	"math"

	"github.com/san-kum/flightpid/internal/flight"
)

type AltitudeConfig struct {
	Kp float64
	Ki float64
	Kd float64
	// Hover is the throttle that holds altitude with zero error.
	Hover float64
	// Deadband is the |error| in meters below which integral action runs.
	Deadband float64
	// WindupMax bounds ErrorIntegral symmetrically.
	WindupMax float64
	// Decay is the fraction of the integral shed per tick while out of
	// band. Zero freezes it.
	Decay float64
	// Dt is the tick period in seconds.
	Dt float64
}

// Altitude is the altitude-hold controller state.
type Altitude struct {
	Config        AltitudeConfig
	ErrorIntegral float64
	InBand        bool
	Target        float64
	// Throttle is the last emitted throttle, kept for bump-less
	// re-engagement.
	Throttle float64
}

func (a Altitude) update(d flight.Demands, v flight.VehicleState) (flight.Demands, Altitude) {
	cfg := a.Config

	err := a.Target - v.Altitude
	inBand := math.Abs(err) < cfg.Deadband

	integral := a.ErrorIntegral
	if inBand {
		integral = flight.ClampAbs(integral+err*cfg.Dt, cfg.WindupMax)
	} else {
		integral *= 1 - cfg.Decay
	}

	// climb rate stands in for the error derivative
	throttle := cfg.Hover + threeTerm(cfg.Kp, cfg.Ki, cfg.Kd, err, integral, -v.ClimbRate)
	throttle = flight.Clamp(throttle, 0, 1)

	d.Throttle = throttle
	a.ErrorIntegral = integral
	a.InBand = inBand
	a.Throttle = throttle
	return d, a
}

func engageAltitude(cfg AltitudeConfig, d flight.Demands, v flight.VehicleState) Altitude {
	a := Altitude{
		Config:   cfg,
		Target:   v.Altitude,
		InBand:   cfg.Deadband > 0,
		Throttle: d.Throttle,
	}
	if cfg.Ki != 0 {
		a.ErrorIntegral = flight.ClampAbs((d.Throttle-cfg.Hover)/cfg.Ki, cfg.WindupMax)
	}
	return a
}

// GetParams returns tunable parameters for live adjustment.
func (c AltitudeConfig) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":       c.Kp,
		"ki":       c.Ki,
		"kd":       c.Kd,
		"hover":    c.Hover,
		"deadband": c.Deadband,
		"windup":   c.WindupMax,
		"decay":    c.Decay,
	}
}

// SetParam adjusts one altitude gain by name.
func (c *AltitudeConfig) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		c.Kp = value
	case "ki":
		c.Ki = value
	case "kd":
		c.Kd = value
	case "hover":
		c.Hover = value
	case "deadband":
		c.Deadband = value
	case "windup":
		c.WindupMax = value
	case "decay":
		c.Decay = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
