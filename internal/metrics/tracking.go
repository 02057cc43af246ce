package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/replay"
)

// AltitudeError is the RMS of target minus measured altitude over the
// altitude-hold ticks.
type AltitudeError struct {
	name string
	sq   []float64
}

func NewAltitudeError() *AltitudeError {
	return &AltitudeError{name: "altitude_rms"}
}

func (a *AltitudeError) Name() string { return a.name }

func (a *AltitudeError) Observe(s replay.Sample) {
	if s.Controller.Kind != control.KindAltitude {
		return
	}
	e := s.Controller.Altitude.Target - s.State.Altitude
	a.sq = append(a.sq, e*e)
}

func (a *AltitudeError) Value() float64 {
	if len(a.sq) == 0 {
		return 0
	}
	return math.Sqrt(stat.Mean(a.sq, nil))
}

func (a *AltitudeError) Reset() { a.sq = a.sq[:0] }

// RateError is the RMS rate tracking error across the three body axes
// over the angle-rate ticks.
type RateError struct {
	name string
	sq   []float64
}

func NewRateError() *RateError {
	return &RateError{name: "rate_rms"}
}

func (r *RateError) Name() string { return r.name }

func (r *RateError) Observe(s replay.Sample) {
	if s.Controller.Kind != control.KindAngleRate {
		return
	}
	maxRate := s.Controller.AngleRate.Config.MaxRate
	for _, e := range [3]float64{
		s.Input.Roll*maxRate - s.State.RollRate,
		s.Input.Pitch*maxRate - s.State.PitchRate,
		s.Input.Yaw*maxRate - s.State.YawRate,
	} {
		r.sq = append(r.sq, e*e)
	}
}

func (r *RateError) Value() float64 {
	if len(r.sq) == 0 {
		return 0
	}
	return math.Sqrt(stat.Mean(r.sq, nil))
}

func (r *RateError) Reset() { r.sq = r.sq[:0] }

// Defaults returns the metrics recorded for every replay.
func Defaults() []replay.Metric {
	return []replay.Metric{
		NewThrottleEffort(),
		NewSaturation(),
		NewInBand(),
		NewAltitudeError(),
		NewRateError(),
		NewThrottleRipple(),
	}
}
