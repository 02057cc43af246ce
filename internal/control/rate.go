package control

import "github.com/san-kum/flightpid/internal/flight"

type AxisGains struct {
	Kp float64
	Ki float64
	Kd float64
}

func (g AxisGains) isZero() bool {
	return g.Kp == 0 && g.Ki == 0 && g.Kd == 0
}

type RateConfig struct {
	Roll  AxisGains
	Pitch AxisGains
	Yaw   AxisGains
	// MaxRate is the body rate in rad/s commanded by a full-scale stick.
	MaxRate   float64
	WindupMax float64
	Dt        float64
}

// Configured reports whether any axis has a non-zero gain. An
// unconfigured rate controller passes demands through untouched.
func (c RateConfig) Configured() bool {
	return !(c.Roll.isZero() && c.Pitch.isZero() && c.Yaw.isZero())
}

// Axis holds the persistent state of one body axis.
type Axis struct {
	Integral float64
	PrevRate float64
}

// AngleRate is the angle-rate controller state, one independent
// accumulator per body axis.
type AngleRate struct {
	Config RateConfig
	Roll   Axis
	Pitch  Axis
	Yaw    Axis
}

func (r AngleRate) update(d flight.Demands, v flight.VehicleState) (flight.Demands, AngleRate) {
	if !r.Config.Configured() {
		return d, r
	}
	cfg := r.Config
	d.Roll, r.Roll = cfg.axis(cfg.Roll, r.Roll, d.Roll, v.RollRate)
	d.Pitch, r.Pitch = cfg.axis(cfg.Pitch, r.Pitch, d.Pitch, v.PitchRate)
	d.Yaw, r.Yaw = cfg.axis(cfg.Yaw, r.Yaw, d.Yaw, v.YawRate)
	return d, r
}

func (c RateConfig) axis(g AxisGains, s Axis, demand, measured float64) (float64, Axis) {
	err := demand*c.MaxRate - measured
	s.Integral = flight.ClampAbs(s.Integral+err*c.Dt, c.WindupMax)
	derivative := -(measured - s.PrevRate) / c.Dt
	s.PrevRate = measured
	return flight.Clamp(threeTerm(g.Kp, g.Ki, g.Kd, err, s.Integral, derivative), -1, 1), s
}

func engageAngleRate(cfg RateConfig, v flight.VehicleState) AngleRate {
	return AngleRate{
		Config: cfg,
		Roll:   Axis{PrevRate: v.RollRate},
		Pitch:  Axis{PrevRate: v.PitchRate},
		Yaw:    Axis{PrevRate: v.YawRate},
	}
}
