package metrics

import (
	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/replay"
)

// Saturation is the fraction of ticks whose throttle sat on a clamp limit.
type Saturation struct {
	name      string
	saturated int
	samples   int
}

func NewSaturation() *Saturation {
	return &Saturation{
		name: "saturation",
	}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) Observe(sample replay.Sample) {
	s.samples++
	if th := sample.Output.Throttle; th <= 0 || th >= 1 {
		s.saturated++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}

// InBand is the fraction of altitude-hold ticks spent inside the deadband.
type InBand struct {
	name    string
	inBand  int
	samples int
}

func NewInBand() *InBand {
	return &InBand{
		name: "in_band",
	}
}

func (b *InBand) Name() string { return b.name }

func (b *InBand) Observe(s replay.Sample) {
	if s.Controller.Kind != control.KindAltitude {
		return
	}
	b.samples++
	if s.Controller.Altitude.InBand {
		b.inBand++
	}
}

func (b *InBand) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return float64(b.inBand) / float64(b.samples)
}

func (b *InBand) Reset() {
	b.inBand = 0
	b.samples = 0
}
