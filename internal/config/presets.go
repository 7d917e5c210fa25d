package config

import "sort"

// Presets override the sweep shape only; output and logging settings are
// kept from whatever they are applied to.
var Presets = map[string]*Config{
	"default": {
		T0: DefaultT0, Tf: DefaultTf, Size: DefaultSize, Steps: DefaultSteps,
		EvolveSteps: DefaultEvolveSteps, AverageSteps: DefaultAverageSteps,
	},
	"quick": {
		T0: 0.5, Tf: 4.0, Size: 16, Steps: 36,
		EvolveSteps: 500, AverageSteps: 100,
	},
	"critical": {
		T0: 2.0, Tf: 2.6, Size: 64, Steps: 61,
		EvolveSteps: 2000, AverageSteps: 400,
	},
	"fine": {
		T0: 0.1, Tf: 5.0, Size: 128, Steps: 1000,
		EvolveSteps: 2000, AverageSteps: 200,
	},
}

func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply copies the sweep shape of p onto c.
func (c *Config) Apply(p *Config) {
	c.T0 = p.T0
	c.Tf = p.Tf
	c.Size = p.Size
	c.Steps = p.Steps
	c.EvolveSteps = p.EvolveSteps
	c.AverageSteps = p.AverageSteps
}
