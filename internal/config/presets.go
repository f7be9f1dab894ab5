package config

import "sort"

var Presets = map[string]map[string]*Config{
	"mooney-rivlin": {
		"rubber": {
			Model:    "mooney-rivlin",
			Material: MaterialConfig{Mu01: 3.0e5, Mu10: 1.5e5, V1: 5.0e7, Density: 1100},
		},
		"soft-tissue": {
			Model:    "mooney-rivlin",
			Material: MaterialConfig{Mu01: 2.0e3, Mu10: 1.0e3, V1: 1.0e5, Density: 1060},
		},
	},
	"neo-hookean": {
		"soft-tissue": {
			Model:    "neo-hookean",
			Material: MaterialConfig{E: 1.0e4, Nu: 0.49, Density: 1060},
		},
		"foam": {
			Model:    "neo-hookean",
			Material: MaterialConfig{E: 5.0e5, Nu: 0.1, Density: 50},
		},
	},
	"stvk": {
		"stiff": {
			Model:    "stvk",
			Material: MaterialConfig{E: 2.0e9, Nu: 0.3, Density: 1200},
		},
		"foam": {
			Model:    "stvk",
			Material: MaterialConfig{E: 5.0e5, Nu: 0.1, Density: 50},
		},
	},
}

// GetPreset returns a copy of the preset with the reducer settings and
// data directory filled from the defaults.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	p, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Model = p.Model
	cfg.Material = p.Material
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
