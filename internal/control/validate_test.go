package control_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/flightpid/internal/control"
)

var _ = Describe("Gain validation", func() {
	It("accepts the test gains", func() {
		Expect(altCfg.Validate()).To(Succeed())
		Expect(rateCfg.Validate()).To(Succeed())
	})

	It("accepts an unconfigured rate controller", func() {
		Expect(control.RateConfig{Dt: 0.01}.Validate()).To(Succeed())
	})

	DescribeTable("rejects altitude gains",
		func(mutate func(*control.AltitudeConfig)) {
			cfg := altCfg
			mutate(&cfg)
			Expect(cfg.Validate()).To(MatchError(control.ErrInvalidGains))
		},
		Entry("zero dt", func(c *control.AltitudeConfig) { c.Dt = 0 }),
		Entry("NaN dt", func(c *control.AltitudeConfig) { c.Dt = math.NaN() }),
		Entry("NaN kp", func(c *control.AltitudeConfig) { c.Kp = math.NaN() }),
		Entry("infinite ki", func(c *control.AltitudeConfig) { c.Ki = math.Inf(1) }),
		Entry("NaN hover", func(c *control.AltitudeConfig) { c.Hover = math.NaN() }),
		Entry("negative deadband", func(c *control.AltitudeConfig) { c.Deadband = -0.1 }),
		Entry("negative windup", func(c *control.AltitudeConfig) { c.WindupMax = -1 }),
		Entry("decay of one", func(c *control.AltitudeConfig) { c.Decay = 1 }),
		Entry("NaN decay", func(c *control.AltitudeConfig) { c.Decay = math.NaN() }),
	)

	DescribeTable("rejects rate gains",
		func(mutate func(*control.RateConfig)) {
			cfg := rateCfg
			mutate(&cfg)
			Expect(cfg.Validate()).To(MatchError(control.ErrInvalidGains))
		},
		Entry("zero dt", func(c *control.RateConfig) { c.Dt = 0 }),
		Entry("NaN pitch kd", func(c *control.RateConfig) { c.Pitch.Kd = math.NaN() }),
		Entry("infinite yaw ki", func(c *control.RateConfig) { c.Yaw.Ki = math.Inf(-1) }),
		Entry("NaN max rate", func(c *control.RateConfig) { c.MaxRate = math.NaN() }),
		Entry("negative max rate", func(c *control.RateConfig) { c.MaxRate = -1 }),
		Entry("negative windup", func(c *control.RateConfig) { c.WindupMax = -0.1 }),
	)
})
