package metrics

import (
	"github.com/san-kum/flightpid/internal/analysis"
	"github.com/san-kum/flightpid/internal/replay"
)

// ThrottleRipple is the amplitude of the strongest oscillation in the
// output throttle. It is zero for traces too short to analyse or with
// non-finite output.
type ThrottleRipple struct {
	name     string
	throttle []float64
	times    []float64
}

func NewThrottleRipple() *ThrottleRipple {
	return &ThrottleRipple{
		name:     "throttle_ripple",
		throttle: make([]float64, 0, 1000),
		times:    make([]float64, 0, 1000),
	}
}

func (r *ThrottleRipple) Name() string { return r.name }

func (r *ThrottleRipple) Observe(s replay.Sample) {
	r.throttle = append(r.throttle, s.Output.Throttle)
	r.times = append(r.times, s.Time)
}

func (r *ThrottleRipple) Value() float64 {
	if len(r.times) < 2 {
		return 0
	}
	dt := r.times[1] - r.times[0]
	if dt <= 0 {
		return 0
	}
	sp, err := analysis.AmplitudeSpectrum(r.throttle, dt)
	if err != nil {
		return 0
	}
	_, amp := sp.Dominant()
	return amp
}

func (r *ThrottleRipple) Reset() {
	r.throttle = r.throttle[:0]
	r.times = r.times[:0]
}
