package control

import "errors"

// ErrUnknownKind indicates a Kind outside the declared set. Update and
// Engage panic with it, since it can only come from a programming error.
var ErrUnknownKind = errors.New("control: unknown controller kind")

// ErrInvalidGains indicates a configuration the controllers cannot run
// with: a non-finite value, a non-positive Dt or an out-of-range bound.
var ErrInvalidGains = errors.New("control: invalid gains")
