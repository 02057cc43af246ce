package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/flightpid/internal/config"
	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/metrics"
	"github.com/san-kum/flightpid/internal/replay"
)

// Experiment is one scenario replayed against one set of gains.
type Experiment struct {
	cfg      *config.Config
	preset   string
	scenario *replay.Scenario
	runner   *replay.Runner
}

func New(cfg *config.Config, preset string, sc *replay.Scenario, logger *zap.Logger) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		preset:   preset,
		scenario: sc,
		runner:   replay.New(logger),
	}
	for _, m := range metrics.Defaults() {
		e.runner.AddMetric(m)
	}
	return e
}

func (e *Experiment) Run(ctx context.Context) (*replay.Result, error) {
	if e.scenario == nil {
		return nil, fmt.Errorf("experiment has no scenario")
	}
	return e.runner.Run(ctx, e.scenario, e.cfg.Gains(), e.cfg.Dt)
}

// Runner exposes the underlying runner for adding observers.
func (e *Experiment) Runner() *replay.Runner {
	return e.runner
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) Preset() string         { return e.preset }
func (e *Experiment) Gains() control.Gains   { return e.cfg.Gains() }
