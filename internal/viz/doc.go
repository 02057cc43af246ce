// Package viz is a terminal viewer for replayed runs.
//
// [Model] is a Bubble Tea program that walks a replay result tick by tick,
// showing demands against controller output, the controller state and a
// rolling throttle graph.
//
// # Key Bindings
//
//	Space     - Play/pause
//	Left/H    - Step back one tick
//	Right/L   - Step forward one tick
//	Home/End  - Jump to first/last tick
//	+/-       - Playback speed
//	Q         - Quit
package viz
