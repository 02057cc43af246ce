// Package replay drives the control core from a scripted trace.
//
// A [Scenario] is a list of segments, each interpolating vehicle state and
// pilot demands linearly over its duration. [Runner] expands it at the
// configured tick period and plays the role of the host loop: it threads
// one controller value through every tick, applies mode switches, feeds
// metrics and observers, and flags non-finite outputs.
//
// The trace is open loop. Outputs do not feed back into the vehicle state;
// flight dynamics are out of scope.
package replay
