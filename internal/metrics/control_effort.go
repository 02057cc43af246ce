package metrics

import (
	"math"

	"github.com/san-kum/flightpid/internal/replay"
)

// ThrottleEffort is the mean absolute tick-to-tick change of the output
// throttle.
type ThrottleEffort struct {
	name    string
	sum     float64
	prev    float64
	samples int
}

func NewThrottleEffort() *ThrottleEffort {
	return &ThrottleEffort{
		name: "throttle_effort",
	}
}

func (c *ThrottleEffort) Name() string {
	return c.name
}

func (c *ThrottleEffort) Observe(s replay.Sample) {
	if c.samples > 0 {
		c.sum += math.Abs(s.Output.Throttle - c.prev)
	}
	c.prev = s.Output.Throttle
	c.samples++
}

func (c *ThrottleEffort) Value() float64 {
	if c.samples < 2 {
		return 0
	}
	return c.sum / float64(c.samples-1)
}

func (c *ThrottleEffort) Reset() {
	c.sum = 0
	c.prev = 0
	c.samples = 0
}
