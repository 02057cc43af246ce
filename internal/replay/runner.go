package replay

import (
	"context"

	"go.uber.org/zap"

	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/flight"
)

// Sample records one tick: what went in, what came out, and the
// controller value handed to the next tick.
type Sample struct {
	Tick       int
	Time       float64
	State      flight.VehicleState
	Input      flight.Demands
	Output     flight.Demands
	Controller control.Controller
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(s Sample)
}

type Result struct {
	Scenario string
	Kind     control.Kind
	Dt       float64
	Samples  []Sample
	Metrics  map[string]float64
	Errors   []error
}

type Runner struct {
	logger    *zap.Logger
	metrics   []Metric
	observers []Observer
}

func New(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger:    logger,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run plays the scenario at dt using the given gains. Non-finite outputs
// are logged and collected in Result.Errors; the replay carries on so the
// whole trace is visible. Cancellation returns the partial result with the
// context error.
func (r *Runner) Run(ctx context.Context, sc *Scenario, gains control.Gains, dt float64) (*Result, error) {
	frames, err := sc.Expand(dt)
	if err != nil {
		return nil, err
	}

	first := frames[0]
	c := engage(sc, gains, first)

	result := &Result{
		Scenario: sc.Name,
		Kind:     first.Kind,
		Dt:       dt,
		Samples:  make([]Sample, 0, len(frames)),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	log := r.logger.With(zap.String("scenario", sc.Name))
	log.Debug("replay started",
		zap.Stringer("kind", c.Kind),
		zap.Int("ticks", len(frames)),
		zap.Float64("dt", dt),
	)

	for i, f := range frames {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if f.Engage && i > 0 {
			prev := c.Kind
			c = engage(sc, gains, f)
			log.Info("mode switch",
				zap.Int("tick", i),
				zap.Stringer("from", prev),
				zap.Stringer("to", c.Kind),
			)
		}

		var out flight.Demands
		out, c = control.Update(c, f.Demands, f.State)

		s := Sample{
			Tick:       i,
			Time:       f.Time,
			State:      f.State,
			Input:      f.Demands,
			Output:     out,
			Controller: c,
		}

		if !out.IsFinite() {
			log.Warn("non-finite demands",
				zap.Int("tick", i),
				zap.Float64("time", f.Time),
				zap.Float64("throttle", out.Throttle),
				zap.Float64("roll", out.Roll),
				zap.Float64("pitch", out.Pitch),
				zap.Float64("yaw", out.Yaw),
			)
			result.Errors = append(result.Errors, &TickError{Tick: i, Time: f.Time, Wrapped: ErrNonFinite})
		}

		for _, m := range r.metrics {
			m.Observe(s)
		}
		for _, o := range r.observers {
			o.OnTick(s)
		}

		result.Samples = append(result.Samples, s)
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	log.Debug("replay finished",
		zap.Int("ticks", len(result.Samples)),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// engage builds the controller for f's kind. The scenario target, when set,
// replaces the captured altitude on every altitude engagement, not just the
// first.
func engage(sc *Scenario, gains control.Gains, f Frame) control.Controller {
	c := control.Engage(f.Kind, gains, f.Demands, f.State)
	if sc.Target != nil && c.Kind == control.KindAltitude {
		c.Altitude.Target = *sc.Target
	}
	return c
}
