// Package flight defines the per-tick values exchanged between the host
// control loop and the feedback controllers:
//
//   - [Demands]: normalized actuator commands (throttle, roll, pitch, yaw)
//   - [VehicleState]: read-only kinematics snapshot from the estimator
//
// Both are plain values. Construction never fails and out-of-range
// channels are tolerated; consumers clamp with [Clamp] or
// [Demands.Clamped]. NaN is never replaced with a default, so a host
// safety layer can spot it with [Demands.IsFinite].
package flight
