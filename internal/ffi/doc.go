// Package ffi adapts firmware-owned memory to the control core.
//
// [Demands] and [AltHoldState] mirror the C records exchanged with the
// firmware field for field:
//
//	typedef struct { float throttle, roll, pitch, yaw; } flightpid_demands_t;
//	typedef struct {
//	    float   error_integral;
//	    int32_t in_band;
//	    float   target;
//	    float   throttle;
//	} flightpid_althold_t;
//
// [RunAltHold] is the only code in the module that dereferences memory it
// does not own. The caller guarantees both pointers are non-nil, aligned
// and valid for the duration of the call; nothing is checked here. The
// records are copied into safe values on entry, never written through, and
// never retained.
//
// The exported C symbols live in cmd/flightpid-ffi, which converts the cgo
// types and forwards here.
package ffi
