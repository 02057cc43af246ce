// Command flightpid-ffi exposes the altitude-hold controller to C firmware.
//
// Build it as a static archive and link it into the firmware image:
//
//	go build -buildmode=c-archive -o libflightpid.a ./cmd/flightpid-ffi
//
// cgo writes libflightpid.h alongside the archive with the declarations
// below.
package main

/*
#include <stdint.h>

typedef struct {
    float throttle;
    float roll;
    float pitch;
    float yaw;
} flightpid_demands_t;

typedef struct {
    float   error_integral;
    int32_t in_band;
    float   target;
    float   throttle;
} flightpid_althold_t;
*/
import "C"

import (
	"unsafe"

	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/ffi"
)

// flightpid_run_alt_hold runs one altitude-hold tick. demands and oldpid
// are owned by the caller and must be valid, aligned and non-NULL; they are
// read once and never written or retained.
//
//export flightpid_run_alt_hold
func flightpid_run_alt_hold(demands *C.flightpid_demands_t, altitude, climbRate C.float, oldpid *C.flightpid_althold_t) C.flightpid_althold_t {
	next := ffi.RunAltHold(
		(*ffi.Demands)(unsafe.Pointer(demands)),
		float32(altitude),
		float32(climbRate),
		(*ffi.AltHoldState)(unsafe.Pointer(oldpid)),
	)
	return *(*C.flightpid_althold_t)(unsafe.Pointer(&next))
}

// flightpid_configure_alt_hold installs the altitude gains and returns 0.
// It returns -1 and keeps the previous gains when any value is NaN or
// infinite, dt is not positive, deadband or windup_max is negative, or
// decay is outside [0, 1). Call it before the control loop starts, never
// concurrently with flightpid_run_alt_hold.
//
//export flightpid_configure_alt_hold
func flightpid_configure_alt_hold(kp, ki, kd, hover, deadband, windupMax, decay, dt C.float) C.int {
	err := ffi.Configure(control.AltitudeConfig{
		Kp:        float64(kp),
		Ki:        float64(ki),
		Kd:        float64(kd),
		Hover:     float64(hover),
		Deadband:  float64(deadband),
		WindupMax: float64(windupMax),
		Decay:     float64(decay),
		Dt:        float64(dt),
	})
	if err != nil {
		return -1
	}
	return 0
}

func main() {}
