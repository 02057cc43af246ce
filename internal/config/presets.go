package config

import "sort"

var Presets = map[string]map[string]*Config{
	"altitude": {
		"default": DefaultConfig(),
		"proxy": {
			Dt: 0.001,
			Altitude: AltitudeConfig{
				Kp: 1.0, Ki: 0.0, Kd: 0.0,
				Hover: 0.6, Deadband: 0.2, WindupMax: 0.4,
			},
		},
		"soft": {
			Dt: 0.01,
			Altitude: AltitudeConfig{
				Kp: 0.05, Ki: 0.02, Kd: 0.1,
				Hover: 0.5, Deadband: 2.0, WindupMax: 1.0, Decay: 0.01,
			},
		},
		"stiff": {
			Dt: 0.005,
			Altitude: AltitudeConfig{
				Kp: 0.4, Ki: 0.15, Kd: 0.35,
				Hover: 0.55, Deadband: 0.5, WindupMax: 2.0,
			},
		},
	},
	"angle_rate": {
		"passthrough": {
			Dt:   0.01,
			Rate: RateConfig{MaxRate: DefaultMaxRate, WindupMax: DefaultRateWind},
		},
		"hackflight": {
			Dt: 0.002,
			Rate: RateConfig{
				Roll:      AxisConfig{Kp: 0.225, Ki: 0.001875, Kd: 0.375},
				Pitch:     AxisConfig{Kp: 0.225, Ki: 0.001875, Kd: 0.375},
				Yaw:       AxisConfig{Kp: 1.0625, Ki: 0.005625},
				MaxRate:   DefaultMaxRate,
				WindupMax: DefaultRateWind,
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(kind, preset string) *Config {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	cfg, ok := kindPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
