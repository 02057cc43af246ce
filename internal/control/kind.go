package control

import (
	"fmt"

	"github.com/san-kum/flightpid/internal/flight"
)

type Kind uint8

const (
	KindAltitude Kind = iota
	KindAngleRate

	numKinds
)

// Update and Engage switch over every kind. Adding a kind breaks this line
// until both are extended and the assertion is bumped.
var _ = [1]struct{}{}[numKinds-2]

var kindNames = [numKinds]string{
	KindAltitude:  "altitude",
	KindAngleRate: "angle_rate",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Kinds lists every declared kind in order.
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Controller is a tagged union over the controller kinds. Only the payload
// selected by Kind is meaningful; the others stay zero.
type Controller struct {
	Kind      Kind
	Altitude  Altitude
	AngleRate AngleRate
}

// Gains bundles the configuration of every kind so a mode switch can build
// whichever controller the host asks for.
type Gains struct {
	Altitude AltitudeConfig
	Rate     RateConfig
}

// Update runs one control tick. The returned controller always has the
// same kind as c.
func Update(c Controller, d flight.Demands, v flight.VehicleState) (flight.Demands, Controller) {
	switch c.Kind {
	case KindAltitude:
		out, next := c.Altitude.update(d, v)
		return out, Controller{Kind: KindAltitude, Altitude: next}
	case KindAngleRate:
		out, next := c.AngleRate.update(d, v)
		return out, Controller{Kind: KindAngleRate, AngleRate: next}
	}
	panic(fmt.Errorf("%w: %v", ErrUnknownKind, c.Kind))
}

// Zero returns the boot-time controller of the given kind: configured
// gains, no accumulated state.
func Zero(kind Kind, g Gains) Controller {
	switch kind {
	case KindAltitude:
		return Controller{Kind: KindAltitude, Altitude: Altitude{Config: g.Altitude}}
	case KindAngleRate:
		return Controller{Kind: KindAngleRate, AngleRate: AngleRate{Config: g.Rate}}
	}
	panic(fmt.Errorf("%w: %v", ErrUnknownKind, kind))
}

// Engage builds a fresh controller for a mode switch. Nothing carries over
// from whatever controller was active before; the new one is seeded from
// the current demands and vehicle state so its first output continues
// where the previous mode left off.
func Engage(kind Kind, g Gains, d flight.Demands, v flight.VehicleState) Controller {
	switch kind {
	case KindAltitude:
		return Controller{Kind: KindAltitude, Altitude: engageAltitude(g.Altitude, d, v)}
	case KindAngleRate:
		return Controller{Kind: KindAngleRate, AngleRate: engageAngleRate(g.Rate, v)}
	}
	panic(fmt.Errorf("%w: %v", ErrUnknownKind, kind))
}
