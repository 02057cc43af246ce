package control_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/flight"
)

var _ = Describe("Dispatch", func() {
	gains := control.Gains{Altitude: altCfg, Rate: rateCfg}
	d := flight.Demands{Throttle: 0.5, Roll: 0.1}
	v := flight.VehicleState{Altitude: 4, ClimbRate: 0.1, RollRate: 0.2}

	It("handles every declared kind and preserves it", func() {
		for _, k := range control.Kinds() {
			var next control.Controller
			Expect(func() { _, next = control.Update(control.Zero(k, gains), d, v) }).NotTo(Panic())
			Expect(next.Kind).To(Equal(k))

			Expect(func() { _, next = control.Update(control.Engage(k, gains, d, v), d, v) }).NotTo(Panic())
			Expect(next.Kind).To(Equal(k))
		}
	})

	It("panics on an undeclared kind", func() {
		bogus := control.Controller{Kind: control.Kind(200)}
		Expect(func() { control.Update(bogus, d, v) }).To(PanicWith(MatchError(control.ErrUnknownKind)))
		Expect(func() { control.Zero(bogus.Kind, gains) }).To(PanicWith(MatchError(control.ErrUnknownKind)))
		Expect(func() { control.Engage(bogus.Kind, gains, d, v) }).To(PanicWith(MatchError(control.ErrUnknownKind)))
	})

	DescribeTable("parses kind names",
		func(name string, expected control.Kind) {
			k, err := control.ParseKind(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(k).To(Equal(expected))
			Expect(k.String()).To(Equal(name))
		},
		Entry("altitude", "altitude", control.KindAltitude),
		Entry("angle rate", "angle_rate", control.KindAngleRate),
	)

	It("rejects unknown kind names", func() {
		_, err := control.ParseKind("position_hold")
		Expect(err).To(MatchError(control.ErrUnknownKind))
		Expect(control.Kind(9).String()).To(Equal("Kind(9)"))
	})
})

var _ = Describe("Engage", func() {
	gains := control.Gains{Altitude: altCfg, Rate: rateCfg}

	It("captures altitude and continues the current throttle", func() {
		d := flight.Demands{Throttle: 0.55}
		v := flight.VehicleState{Altitude: 7.5}

		c := control.Engage(control.KindAltitude, gains, d, v)
		Expect(c.Altitude.Target).To(Equal(7.5))
		Expect(c.Altitude.Throttle).To(Equal(0.55))
		Expect(c.Altitude.InBand).To(BeTrue())

		out, _ := control.Update(c, d, v)
		Expect(out.Throttle).To(BeNumerically("~", 0.55, 1e-9))
	})

	It("limits the seeded integral to the windup bound", func() {
		c := control.Engage(control.KindAltitude, gains, flight.Demands{Throttle: 1}, flight.VehicleState{})
		Expect(c.Altitude.ErrorIntegral).To(Equal(altCfg.WindupMax))
	})

	It("starts from a clean state regardless of the previous mode", func() {
		_, old := control.Update(control.Zero(control.KindAngleRate, gains), flight.Demands{Roll: 1}, flight.VehicleState{})
		Expect(old.AngleRate.Roll.Integral).NotTo(BeZero())

		c := control.Engage(control.KindAltitude, gains, flight.Demands{Throttle: 0.5}, flight.VehicleState{Altitude: 3})
		Expect(c.AngleRate).To(Equal(control.AngleRate{}))
	})

	It("seeds rate axes with the measured rates", func() {
		c := control.Engage(control.KindAngleRate, gains, flight.Demands{}, flight.VehicleState{RollRate: 0.2, PitchRate: -0.4})

		Expect(c.AngleRate.Roll).To(Equal(control.Axis{PrevRate: 0.2}))
		Expect(c.AngleRate.Pitch).To(Equal(control.Axis{PrevRate: -0.4}))
		Expect(c.Altitude).To(Equal(control.Altitude{}))
	})
})
