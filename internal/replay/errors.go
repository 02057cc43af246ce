package replay

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyScenario indicates a scenario with no ticks to play.
	ErrEmptyScenario = errors.New("replay: scenario has no ticks")

	// ErrInvalidDt indicates a non-positive tick period.
	ErrInvalidDt = errors.New("replay: dt must be positive")

	// ErrNonFinite indicates the controller emitted NaN or Inf demands.
	ErrNonFinite = errors.New("replay: non-finite demands")
)

// TickError wraps an error with the tick it occurred on.
type TickError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
