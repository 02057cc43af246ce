package control_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/flight"
)

var altCfg = control.AltitudeConfig{
	Kp:        0.1,
	Ki:        0.05,
	Kd:        0.2,
	Hover:     0.5,
	Deadband:  1.0,
	WindupMax: 2.0,
	Dt:        0.01,
}

func altitudeAt(target, integral float64) control.Controller {
	return control.Controller{
		Kind: control.KindAltitude,
		Altitude: control.Altitude{
			Config:        altCfg,
			Target:        target,
			ErrorIntegral: integral,
		},
	}
}

var _ = Describe("Altitude hold", func() {
	pilot := flight.Demands{Throttle: 0.4, Roll: 0.1, Pitch: -0.2, Yaw: 0.3}

	It("holds hover throttle at the setpoint", func() {
		out, next := control.Update(altitudeAt(10, 0), pilot, flight.VehicleState{Altitude: 10})

		Expect(out.Throttle).To(BeNumerically("~", altCfg.Hover, 1e-12))
		Expect(next.Altitude.InBand).To(BeTrue())
		Expect(next.Altitude.ErrorIntegral).To(Equal(0.0))
		Expect(next.Altitude.Throttle).To(Equal(out.Throttle))
	})

	It("leaves the integral alone at zero error", func() {
		_, next := control.Update(altitudeAt(10, 0.4), pilot, flight.VehicleState{Altitude: 10})

		Expect(next.Altitude.InBand).To(BeTrue())
		Expect(next.Altitude.ErrorIntegral).To(Equal(0.4))
	})

	It("saturates on the proportional term far below target", func() {
		out, next := control.Update(altitudeAt(10, 0.3), pilot, flight.VehicleState{Altitude: 0})

		Expect(next.Altitude.InBand).To(BeFalse())
		Expect(next.Altitude.ErrorIntegral).To(Equal(0.3))
		Expect(altCfg.Hover + altCfg.Kp*10).To(BeNumerically(">=", 1.0))
		Expect(out.Throttle).To(Equal(1.0))
	})

	It("passes roll, pitch and yaw through", func() {
		out, _ := control.Update(altitudeAt(10, 0), pilot, flight.VehicleState{Altitude: 9.7, ClimbRate: 0.2})

		Expect(out.Roll).To(Equal(pilot.Roll))
		Expect(out.Pitch).To(Equal(pilot.Pitch))
		Expect(out.Yaw).To(Equal(pilot.Yaw))
	})

	It("keeps the target and kind", func() {
		_, next := control.Update(altitudeAt(12.5, 0), pilot, flight.VehicleState{Altitude: 3})

		Expect(next.Kind).To(Equal(control.KindAltitude))
		Expect(next.Altitude.Target).To(Equal(12.5))
		Expect(next.Altitude.Config).To(Equal(altCfg))
	})

	DescribeTable("accumulates in the direction of the error inside the band",
		func(altitude float64) {
			_, next := control.Update(altitudeAt(10, 0), pilot, flight.VehicleState{Altitude: altitude})
			err := 10 - altitude

			Expect(next.Altitude.InBand).To(BeTrue())
			Expect(math.Signbit(next.Altitude.ErrorIntegral)).To(Equal(math.Signbit(err)))
			Expect(next.Altitude.ErrorIntegral).To(BeNumerically("~", err*altCfg.Dt, 1e-12))
		},
		Entry("just below", 9.99),
		Entry("half band below", 9.5),
		Entry("edge below", 9.01),
		Entry("just above", 10.01),
		Entry("half band above", 10.5),
		Entry("edge above", 10.99),
	)

	DescribeTable("does not grow the integral outside the band",
		func(altitude, decay float64) {
			c := altitudeAt(10, -1.5)
			c.Altitude.Config.Decay = decay

			_, next := control.Update(c, pilot, flight.VehicleState{Altitude: altitude})

			Expect(next.Altitude.InBand).To(BeFalse())
			Expect(math.Abs(next.Altitude.ErrorIntegral)).To(BeNumerically("<=", 1.5))
		},
		Entry("frozen below", 2.0, 0.0),
		Entry("frozen above", 25.0, 0.0),
		Entry("frozen at band edge", 11.0, 0.0),
		Entry("decaying below", 2.0, 0.1),
		Entry("decaying above", 25.0, 0.5),
	)

	It("decays by the configured fraction", func() {
		c := altitudeAt(10, 1.0)
		c.Altitude.Config.Decay = 0.25

		_, next := control.Update(c, pilot, flight.VehicleState{Altitude: 0})
		Expect(next.Altitude.ErrorIntegral).To(BeNumerically("~", 0.75, 1e-12))
	})

	It("bounds the integral by the windup limit", func() {
		c := altitudeAt(10, 0)
		for range 100000 {
			_, c = control.Update(c, pilot, flight.VehicleState{Altitude: 9.1})
		}
		Expect(c.Altitude.ErrorIntegral).To(Equal(altCfg.WindupMax))
	})

	DescribeTable("clamps throttle to [0, 1]",
		func(altitude, climb, integral float64) {
			out, next := control.Update(altitudeAt(10, integral), pilot,
				flight.VehicleState{Altitude: altitude, ClimbRate: climb})

			Expect(out.Throttle).To(BeNumerically(">=", 0.0))
			Expect(out.Throttle).To(BeNumerically("<=", 1.0))
			Expect(next.Altitude.Throttle).To(Equal(out.Throttle))
		},
		Entry("far below", -1e6, 0.0, 0.0),
		Entry("far above", 1e6, 0.0, 0.0),
		Entry("diving fast", 10.0, -1e4, 0.0),
		Entry("climbing fast", 10.0, 1e4, 0.0),
		Entry("integral high", 10.0, 0.0, 1e9),
		Entry("integral low", 10.0, 0.0, -1e9),
		Entry("infinite altitude", math.Inf(1), 0.0, 0.0),
	)

	It("never grows the integral when re-fed at equilibrium", func() {
		_, first := control.Update(altitudeAt(10, 0), pilot, flight.VehicleState{Altitude: 9.6})
		_, second := control.Update(first, pilot, flight.VehicleState{Altitude: 10})

		Expect(math.Abs(second.Altitude.ErrorIntegral)).
			To(BeNumerically("<=", math.Abs(first.Altitude.ErrorIntegral)))
	})

	It("propagates NaN instead of substituting a default", func() {
		out, next := control.Update(altitudeAt(10, 0.2), pilot, flight.VehicleState{Altitude: math.NaN()})

		Expect(math.IsNaN(out.Throttle)).To(BeTrue())
		Expect(math.IsNaN(next.Altitude.Throttle)).To(BeTrue())
		Expect(out.IsFinite()).To(BeFalse())
	})

	Describe("params", func() {
		It("round-trips named gains", func() {
			cfg := altCfg
			Expect(cfg.SetParam("kp", 0.7)).To(Succeed())
			Expect(cfg.SetParam("decay", 0.05)).To(Succeed())
			Expect(cfg.GetParams()).To(HaveKeyWithValue("kp", 0.7))
			Expect(cfg.GetParams()).To(HaveKeyWithValue("decay", 0.05))
		})

		It("rejects unknown names", func() {
			cfg := altCfg
			Expect(cfg.SetParam("gain", 1)).To(MatchError(ContainSubstring("unknown param")))
		})
	})
})
