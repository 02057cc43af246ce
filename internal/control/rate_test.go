package control_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/flight"
)

var rateCfg = control.RateConfig{
	Roll:      control.AxisGains{Kp: 0.225, Ki: 0.001875, Kd: 0.375},
	Pitch:     control.AxisGains{Kp: 0.225, Ki: 0.001875, Kd: 0.375},
	Yaw:       control.AxisGains{Kp: 1.0625, Ki: 0.005625},
	MaxRate:   2.0,
	WindupMax: 0.4,
	Dt:        0.01,
}

func bits(d flight.Demands) [4]uint64 {
	return [4]uint64{
		math.Float64bits(d.Throttle),
		math.Float64bits(d.Roll),
		math.Float64bits(d.Pitch),
		math.Float64bits(d.Yaw),
	}
}

var _ = Describe("Angle rate", func() {
	Context("unconfigured", func() {
		prior := control.Controller{
			Kind: control.KindAngleRate,
			AngleRate: control.AngleRate{
				Config: control.RateConfig{MaxRate: 2, Dt: 0.01},
				Roll:   control.Axis{Integral: 0.1, PrevRate: -0.3},
				Yaw:    control.Axis{Integral: -0.2},
			},
		}

		DescribeTable("passes demands through bit for bit",
			func(d flight.Demands, v flight.VehicleState) {
				out, next := control.Update(prior, d, v)

				Expect(bits(out)).To(Equal(bits(d)))
				Expect(next).To(Equal(prior))
			},
			Entry("zero", flight.Demands{}, flight.VehicleState{}),
			Entry("negative zero", flight.Demands{Roll: math.Copysign(0, -1)}, flight.VehicleState{RollRate: 1}),
			Entry("out of range", flight.Demands{Throttle: 1.7, Roll: -3, Pitch: 0.1, Yaw: 9}, flight.VehicleState{}),
			Entry("NaN", flight.Demands{Pitch: math.NaN()}, flight.VehicleState{PitchRate: math.NaN()}),
		)

		It("is idempotent across ticks", func() {
			d := flight.Demands{Throttle: 0.6, Roll: 0.2}
			out1, c1 := control.Update(prior, d, flight.VehicleState{RollRate: 0.4})
			out2, c2 := control.Update(c1, out1, flight.VehicleState{RollRate: 0.4})

			Expect(out2).To(Equal(d))
			Expect(c2).To(Equal(prior))
		})
	})

	Context("configured", func() {
		zero := control.Zero(control.KindAngleRate, control.Gains{Rate: rateCfg})

		It("drives the axis toward the commanded rate", func() {
			out, next := control.Update(zero, flight.Demands{Roll: 0.5}, flight.VehicleState{})

			Expect(out.Roll).To(BeNumerically(">", 0))
			Expect(next.AngleRate.Roll.Integral).To(BeNumerically("~", 1.0*rateCfg.Dt, 1e-12))
		})

		It("opposes an uncommanded rate", func() {
			out, _ := control.Update(zero, flight.Demands{}, flight.VehicleState{PitchRate: 0.05})
			Expect(out.Pitch).To(BeNumerically("<", 0))
		})

		It("keeps axes independent", func() {
			out, next := control.Update(zero, flight.Demands{Roll: 0.5}, flight.VehicleState{})

			Expect(out.Pitch).To(Equal(0.0))
			Expect(out.Yaw).To(Equal(0.0))
			Expect(next.AngleRate.Pitch).To(Equal(control.Axis{}))
			Expect(next.AngleRate.Yaw).To(Equal(control.Axis{}))
		})

		It("passes throttle through", func() {
			out, _ := control.Update(zero, flight.Demands{Throttle: 0.42, Yaw: 0.3}, flight.VehicleState{YawRate: 0.1})
			Expect(out.Throttle).To(Equal(0.42))
		})

		It("remembers the measured rate for the next derivative", func() {
			_, next := control.Update(zero, flight.Demands{}, flight.VehicleState{RollRate: 0.3, YawRate: -0.1})

			Expect(next.AngleRate.Roll.PrevRate).To(Equal(0.3))
			Expect(next.AngleRate.Yaw.PrevRate).To(Equal(-0.1))
		})

		It("clamps outputs and integrals", func() {
			c := zero
			var out flight.Demands
			for range 10000 {
				out, c = control.Update(c, flight.Demands{Roll: 1, Pitch: -1, Yaw: 1}, flight.VehicleState{})
			}

			// kp*maxRate + ki*windup on roll and pitch stays inside the range
			settled := rateCfg.Roll.Kp*rateCfg.MaxRate + rateCfg.Roll.Ki*rateCfg.WindupMax
			Expect(out.Roll).To(BeNumerically("~", settled, 1e-12))
			Expect(out.Pitch).To(BeNumerically("~", -settled, 1e-12))
			Expect(out.Yaw).To(Equal(1.0))
			Expect(c.AngleRate.Roll.Integral).To(Equal(rateCfg.WindupMax))
			Expect(c.AngleRate.Pitch.Integral).To(Equal(-rateCfg.WindupMax))
			Expect(c.AngleRate.Yaw.Integral).To(Equal(rateCfg.WindupMax))
		})

		It("saturates every axis with stiff gains", func() {
			stiff := rateCfg
			stiff.Roll.Kp = 0.6
			stiff.Pitch.Kp = 0.6
			c := control.Zero(control.KindAngleRate, control.Gains{Rate: stiff})

			var out flight.Demands
			for range 100 {
				out, c = control.Update(c, flight.Demands{Roll: 1, Pitch: -1, Yaw: -1}, flight.VehicleState{})
			}

			Expect(out.Roll).To(Equal(1.0))
			Expect(out.Pitch).To(Equal(-1.0))
			Expect(out.Yaw).To(Equal(-1.0))
		})
	})
})
