package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/flightpid/internal/control"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Greater(t, cfg.Dt, 0.0)
	assert.Equal(t, DefaultHover, cfg.Altitude.Hover)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.RateGains().Configured(), "default rate gains should pass through")
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gains.yaml")
	data := []byte(`
dt: 0.002
altitude:
  kp: 0.3
  deadband: 0.5
rate:
  roll: {kp: 0.2, ki: 0.01, kd: 0.3}
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.002, cfg.Dt)
	assert.Equal(t, 0.3, cfg.Altitude.Kp)
	assert.Equal(t, 0.5, cfg.Altitude.Deadband)
	assert.Equal(t, DefaultKi, cfg.Altitude.Ki, "unset fields keep defaults")
	assert.Equal(t, 0.2, cfg.Rate.Roll.Kp)

	gains := cfg.AltitudeGains()
	assert.Equal(t, 0.002, gains.Dt)
	assert.Equal(t, 0.002, cfg.RateGains().Dt)
	assert.True(t, cfg.RateGains().Configured())
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dt: -1\n"), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadRejectsNonFinite(t *testing.T) {
	for name, body := range map[string]string{
		"dt":    "dt: .nan\n",
		"kp":    "altitude:\n  kp: .nan\n",
		"decay": "altitude:\n  decay: .nan\n",
		"yaw":   "rate:\n  yaw: {ki: .inf}\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))

			cfg, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorIs(t, err, control.ErrInvalidGains)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("angle_rate", "hackflight")
	require.NotNil(t, cfg)

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative deadband", func(c *Config) { c.Altitude.Deadband = -1 }},
		{"negative windup", func(c *Config) { c.Altitude.WindupMax = -0.1 }},
		{"decay too large", func(c *Config) { c.Altitude.Decay = 1 }},
		{"negative decay", func(c *Config) { c.Altitude.Decay = -0.5 }},
		{"negative rate windup", func(c *Config) { c.Rate.WindupMax = -1 }},
		{"negative max rate", func(c *Config) { c.Rate.MaxRate = -2 }},
		{"NaN dt", func(c *Config) { c.Dt = math.NaN() }},
		{"infinite dt", func(c *Config) { c.Dt = math.Inf(1) }},
		{"NaN kp", func(c *Config) { c.Altitude.Kp = math.NaN() }},
		{"infinite hover", func(c *Config) { c.Altitude.Hover = math.Inf(-1) }},
		{"NaN decay", func(c *Config) { c.Altitude.Decay = math.NaN() }},
		{"NaN deadband", func(c *Config) { c.Altitude.Deadband = math.NaN() }},
		{"NaN roll kd", func(c *Config) { c.Rate.Roll.Kd = math.NaN() }},
		{"infinite max rate", func(c *Config) { c.Rate.MaxRate = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestApplyParams(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyParams(map[string]float64{"kp": 0.9, "windup": 3}))

	assert.Equal(t, 0.9, cfg.Altitude.Kp)
	assert.Equal(t, 3.0, cfg.Altitude.WindupMax)
	assert.Equal(t, DefaultKd, cfg.Altitude.Kd)

	assert.Error(t, cfg.ApplyParams(map[string]float64{"bogus": 1}))
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("altitude", "proxy")
	require.NotNil(t, cfg)
	assert.Equal(t, 1.0, cfg.Altitude.Kp)
	assert.NoError(t, cfg.Validate())

	cfg.Altitude.Kp = 42
	assert.Equal(t, 1.0, GetPreset("altitude", "proxy").Altitude.Kp, "presets are copied")
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("altitude", "nonexistent"))
	assert.Nil(t, GetPreset("nonexistent", "default"))
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"default", "proxy", "soft", "stiff"}, ListPresets("altitude"))
	assert.Equal(t, []string{"hackflight", "passthrough"}, ListPresets("angle_rate"))
	assert.Nil(t, ListPresets("nonexistent"))
}

func TestAllPresetsValid(t *testing.T) {
	for kind, presets := range Presets {
		for name, cfg := range presets {
			assert.NoError(t, cfg.Validate(), "%s/%s", kind, name)
		}
	}
}
