// Package control provides the per-axis feedback controllers of the flight
// core.
//
// A [Controller] is a tagged union over a closed set of kinds:
//
//   - [KindAltitude]: altitude-hold PID acting on throttle
//   - [KindAngleRate]: per-axis rate PID acting on roll, pitch and yaw
//
// Controllers are values. [Update] consumes one and returns its successor
// together with the corrected demands, so the host threads a single value
// from tick to tick and never shares it:
//
//	c := control.Engage(control.KindAltitude, gains, demands, vstate)
//	for range ticks {
//		demands, c = control.Update(c, demands, vstate)
//	}
//
// The tick path does no I/O, never blocks and does not allocate. Switching
// kinds goes through [Engage] or [Zero], which discard the old value
// entirely.
package control
