package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultT0           = 0.1
	DefaultTf           = 5.0
	DefaultSize         = 64
	DefaultSteps        = 400
	DefaultEvolveSteps  = 1000
	DefaultAverageSteps = 100
	DefaultOutput       = "data.csv"
	DefaultPrecision    = 6
	DefaultLogLevel     = "info"
	DefaultDataPath     = ".isingsim/runs.db"
)

// ErrInvalid marks every validation failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	T0           float64 `yaml:"t0"`
	Tf           float64 `yaml:"tf"`
	Size         int     `yaml:"size"`
	Steps        int     `yaml:"steps"`
	EvolveSteps  int     `yaml:"evolve_steps"`
	AverageSteps int     `yaml:"average_steps"`
	// Workers 0 means one per CPU, minus one for the writer.
	Workers int   `yaml:"workers"`
	Seed    int64 `yaml:"seed"`

	Output    string `yaml:"output"`
	Precision int    `yaml:"precision"`
	LogLevel  string `yaml:"log_level"`
	DataPath  string `yaml:"data_path"`
}

func DefaultConfig() *Config {
	return &Config{
		T0:           DefaultT0,
		Tf:           DefaultTf,
		Size:         DefaultSize,
		Steps:        DefaultSteps,
		EvolveSteps:  DefaultEvolveSteps,
		AverageSteps: DefaultAverageSteps,
		Output:       DefaultOutput,
		Precision:    DefaultPrecision,
		LogLevel:     DefaultLogLevel,
		DataPath:     DefaultDataPath,
	}
}

// LoadOver reads path on top of base; keys the file omits keep base's
// values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	switch {
	case c.Size <= 0:
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalid, c.Size)
	case c.Steps < 1:
		return fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalid, c.Steps)
	case !(c.T0 > 0):
		return fmt.Errorf("%w: t0 must be positive, got %v", ErrInvalid, c.T0)
	case c.Tf < c.T0:
		return fmt.Errorf("%w: tf (%v) below t0 (%v)", ErrInvalid, c.Tf, c.T0)
	case c.EvolveSteps < 0:
		return fmt.Errorf("%w: evolve_steps must be non-negative, got %d", ErrInvalid, c.EvolveSteps)
	case c.AverageSteps < 1:
		return fmt.Errorf("%w: average_steps must be at least 1, got %d", ErrInvalid, c.AverageSteps)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalid, c.Workers)
	case c.Precision < 1 || c.Precision > 17:
		return fmt.Errorf("%w: precision must be in [1, 17], got %d", ErrInvalid, c.Precision)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// ResolveSeed replaces a zero seed with one taken from the clock and
// returns the seed in effect.
func (c *Config) ResolveSeed() int64 {
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return c.Seed
}
