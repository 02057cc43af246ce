package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/flightpid/internal/control"
)

const (
	DefaultDt        = 0.01
	DefaultKp        = 0.1
	DefaultKi        = 0.05
	DefaultKd        = 0.2
	DefaultHover     = 0.5
	DefaultDeadband  = 1.0
	DefaultWindupMax = 2.0
	DefaultMaxRate   = 3.5
	DefaultRateWind  = 0.4
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("flightpid: invalid config")

type Config struct {
	Dt       float64        `yaml:"dt"`
	Altitude AltitudeConfig `yaml:"altitude"`
	Rate     RateConfig     `yaml:"rate"`
}

type AltitudeConfig struct {
	Kp        float64 `yaml:"kp"`
	Ki        float64 `yaml:"ki"`
	Kd        float64 `yaml:"kd"`
	Hover     float64 `yaml:"hover"`
	Deadband  float64 `yaml:"deadband"`
	WindupMax float64 `yaml:"windup_max"`
	Decay     float64 `yaml:"decay"`
}

type AxisConfig struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

type RateConfig struct {
	Roll      AxisConfig `yaml:"roll"`
	Pitch     AxisConfig `yaml:"pitch"`
	Yaw       AxisConfig `yaml:"yaw"`
	MaxRate   float64    `yaml:"max_rate"`
	WindupMax float64    `yaml:"windup_max"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt: DefaultDt,
		Altitude: AltitudeConfig{
			Kp:        DefaultKp,
			Ki:        DefaultKi,
			Kd:        DefaultKd,
			Hover:     DefaultHover,
			Deadband:  DefaultDeadband,
			WindupMax: DefaultWindupMax,
		},
		Rate: RateConfig{
			MaxRate:   DefaultMaxRate,
			WindupMax: DefaultRateWind,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings that would make the controllers misbehave on
// every tick rather than on bad sensor data. NaN and infinities are
// rejected everywhere; yaml happily decodes .nan and .inf.
func (c *Config) Validate() error {
	if err := c.AltitudeGains().Validate(); err != nil {
		return fmt.Errorf("%w: altitude: %w", ErrInvalidConfig, err)
	}
	if err := c.RateGains().Validate(); err != nil {
		return fmt.Errorf("%w: rate: %w", ErrInvalidConfig, err)
	}
	return nil
}

// AltitudeGains converts the altitude section, stamping the shared dt.
func (c *Config) AltitudeGains() control.AltitudeConfig {
	a := c.Altitude
	return control.AltitudeConfig{
		Kp:        a.Kp,
		Ki:        a.Ki,
		Kd:        a.Kd,
		Hover:     a.Hover,
		Deadband:  a.Deadband,
		WindupMax: a.WindupMax,
		Decay:     a.Decay,
		Dt:        c.Dt,
	}
}

// RateGains converts the rate section, stamping the shared dt.
func (c *Config) RateGains() control.RateConfig {
	r := c.Rate
	return control.RateConfig{
		Roll:      control.AxisGains(r.Roll),
		Pitch:     control.AxisGains(r.Pitch),
		Yaw:       control.AxisGains(r.Yaw),
		MaxRate:   r.MaxRate,
		WindupMax: r.WindupMax,
		Dt:        c.Dt,
	}
}

func (c *Config) Gains() control.Gains {
	return control.Gains{Altitude: c.AltitudeGains(), Rate: c.RateGains()}
}

// ApplyParams overrides altitude gains by name, as used by the CLI flags
// and the grid search.
func (c *Config) ApplyParams(params map[string]float64) error {
	gains := c.AltitudeGains()
	for name, v := range params {
		if err := gains.SetParam(name, v); err != nil {
			return err
		}
	}
	c.Altitude = AltitudeConfig{
		Kp:        gains.Kp,
		Ki:        gains.Ki,
		Kd:        gains.Kd,
		Hover:     gains.Hover,
		Deadband:  gains.Deadband,
		WindupMax: gains.WindupMax,
		Decay:     gains.Decay,
	}
	return nil
}
