package ffi

import (
	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/flight"
)

// Demands has the layout of flightpid_demands_t.
type Demands struct {
	Throttle float32
	Roll     float32
	Pitch    float32
	Yaw      float32
}

// AltHoldState has the layout of flightpid_althold_t. InBand is a C
// boolean: zero is false, anything else true.
type AltHoldState struct {
	ErrorIntegral float32
	InBand        int32
	Target        float32
	Throttle      float32
}

// boundary gains, installed by the host before the first tick
var active = control.AltitudeConfig{
	Kp:        1.0,
	Hover:     0.5,
	Deadband:  0.2,
	WindupMax: 0.4,
	Dt:        0.001,
}

// Configure installs the altitude gains used by RunAltHold. Gains that fail
// AltitudeConfig.Validate are rejected and the previous gains stay active.
// It must not run concurrently with RunAltHold.
func Configure(cfg control.AltitudeConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	active = cfg
	return nil
}

func ActiveConfig() control.AltitudeConfig {
	return active
}

// RunAltHold runs one altitude-hold tick on firmware records and returns
// the successor state by value. d and old must be valid; see the package
// documentation.
func RunAltHold(d *Demands, altitude, climbRate float32, old *AltHoldState) AltHoldState {
	demands := d.toFlight()
	prior := old.toAltitude(active)

	_, next := control.Update(
		control.Controller{Kind: control.KindAltitude, Altitude: prior},
		demands,
		flight.VehicleState{Altitude: float64(altitude), ClimbRate: float64(climbRate)},
	)
	return fromAltitude(next.Altitude)
}

func (d *Demands) toFlight() flight.Demands {
	return flight.Demands{
		Throttle: float64(d.Throttle),
		Roll:     float64(d.Roll),
		Pitch:    float64(d.Pitch),
		Yaw:      float64(d.Yaw),
	}
}

func (s *AltHoldState) toAltitude(cfg control.AltitudeConfig) control.Altitude {
	return control.Altitude{
		Config:        cfg,
		ErrorIntegral: float64(s.ErrorIntegral),
		InBand:        s.InBand != 0,
		Target:        float64(s.Target),
		Throttle:      float64(s.Throttle),
	}
}

func fromAltitude(a control.Altitude) AltHoldState {
	s := AltHoldState{
		ErrorIntegral: float32(a.ErrorIntegral),
		Target:        float32(a.Target),
		Throttle:      float32(a.Throttle),
	}
	if a.InBand {
		s.InBand = 1
	}
	return s
}
