package flight

import "math"

// Demands carries one tick of actuator commands. Throttle is nominally
// in [0, 1], the attitude channels in [-1, 1].
type Demands struct {
	Throttle float64
	Roll     float64
	Pitch    float64
	Yaw      float64
}

// Clamped returns d with every channel forced into its nominal range.
func (d Demands) Clamped() Demands {
	return Demands{
		Throttle: Clamp(d.Throttle, 0, 1),
		Roll:     Clamp(d.Roll, -1, 1),
		Pitch:    Clamp(d.Pitch, -1, 1),
		Yaw:      Clamp(d.Yaw, -1, 1),
	}
}

func (d Demands) IsFinite() bool {
	return finite(d.Throttle) && finite(d.Roll) && finite(d.Pitch) && finite(d.Yaw)
}

// VehicleState is the subset of estimated kinematics a controller reads.
// Altitude is in meters, ClimbRate in m/s (positive up), body rates in
// rad/s. Fields a controller does not use may be left zero.
type VehicleState struct {
	Altitude  float64
	ClimbRate float64
	RollRate  float64
	PitchRate float64
	YawRate   float64
}

func (v VehicleState) IsFinite() bool {
	return finite(v.Altitude) && finite(v.ClimbRate) &&
		finite(v.RollRate) && finite(v.PitchRate) && finite(v.YawRate)
}

// Clamp limits v to [lo, hi]. NaN falls through both comparisons and is
// returned as is.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampAbs limits v to [-bound, bound].
func ClampAbs(v, bound float64) float64 {
	return Clamp(v, -bound, bound)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
