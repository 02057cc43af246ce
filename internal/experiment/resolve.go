package experiment

import (
	"errors"
	"fmt"

	"github.com/san-kum/flightpid/internal/config"
	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/replay"
)

var ErrUnknownPreset = errors.New("flightpid: unknown preset")

// Options select where the gains come from. A config file replaces the
// defaults; a preset (the flag, else the scenario's own) then overlays the
// section for the scenario's kind together with dt, since preset gains are
// tuned for their own loop rate; Params override altitude gains last.
type Options struct {
	ConfigPath string
	Preset     string
	Params     map[string]float64
}

// Resolve builds the config for sc and reports which preset was applied.
func Resolve(sc *replay.Scenario, opts Options) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, "", fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	kind, err := sc.ControllerKind()
	if err != nil {
		return nil, "", err
	}

	name := opts.Preset
	if name == "" {
		name = sc.Preset
	}
	if name != "" {
		p := config.GetPreset(kind.String(), name)
		if p == nil {
			return nil, "", fmt.Errorf("%w: %s/%s", ErrUnknownPreset, kind, name)
		}
		overlay(cfg, kind, p)
	}

	if len(opts.Params) > 0 {
		if err := cfg.ApplyParams(opts.Params); err != nil {
			return nil, "", err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

// overlay copies the preset's dt and its kind's section; the other kind's
// section keeps whatever the defaults or config file set.
func overlay(cfg *config.Config, kind control.Kind, p *config.Config) {
	cfg.Dt = p.Dt
	switch kind {
	case control.KindAltitude:
		cfg.Altitude = p.Altitude
	case control.KindAngleRate:
		cfg.Rate = p.Rate
	}
}
