package config

import "sort"

// Presets holds named run setups per model. Each preset is applied on top of
// DefaultConfig.
var Presets = map[string]map[string]func(c *Config){
	"cluster": {
		"kohnert": func(c *Config) {
			c.Dt, c.Duration = 1e-6, 1e-3
		},
		"hot": func(c *Config) {
			c.Temperature = 400
			c.Dt, c.Duration = 1e-7, 1e-4
		},
		"dense-sinks": func(c *Config) {
			c.Cluster.SinkConcentration = 8e-5
			c.Dt, c.Duration = 1e-7, 1e-4
		},
		"small": func(c *Config) {
			c.Cluster.MaxSize = 10
			c.Dt, c.Duration = 1e-6, 1e-3
		},
	},
	"mfrt": {
		"sa304": func(c *Config) {
			c.Model = "mfrt"
			c.Temperature = 600
			c.K0Exp, c.CsExp = 11, 12
			c.Dt, c.Duration, c.SampleInterval = 1e-3, 10, 0.1
		},
		"sa304-cold": func(c *Config) {
			c.Model = "mfrt"
			c.Temperature = 450
			c.K0Exp, c.CsExp = 11, 12
			c.Dt, c.Duration, c.SampleInterval = 1e-2, 100, 1
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	apply, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Model = model
	apply(cfg)
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
