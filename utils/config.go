package utils

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate when a field is out of range
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the configuration for the game
type Config struct {
	Rows                int           `yaml:"rows" json:"rows"`
	Cols                int           `yaml:"cols" json:"cols"`
	TickInterval        time.Duration `yaml:"tick_interval" json:"tick_interval"`
	RandomThreshold     float64       `yaml:"random_threshold" json:"random_threshold"`
	Seed                int64         `yaml:"seed" json:"seed"`
	MaxGenerations      int           `yaml:"max_generations" json:"max_generations"`
	StagnationThreshold int           `yaml:"stagnation_threshold" json:"stagnation_threshold"`
	AutoRestart         bool          `yaml:"auto_restart" json:"auto_restart"`
	InjectionCount      int           `yaml:"injection_count" json:"injection_count"`
	HistorySize         int           `yaml:"history_size" json:"history_size"`
	LogLevel            string        `yaml:"log_level" json:"log_level"`
	LogFormat           string        `yaml:"log_format" json:"log_format"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Rows:                25,
		Cols:                50,
		TickInterval:        100 * time.Millisecond,
		RandomThreshold:     0.7, // ~30% of cells start alive
		MaxGenerations:      0,
		StagnationThreshold: 5,
		AutoRestart:         false,
		InjectionCount:      3,
		HistorySize:         5,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// LoadConfig loads configuration from a YAML or JSON file on top of the defaults
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	if err = config.Validate(); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] invalid values in file: %+v", filename)
	}

	return config, nil
}

// Validate checks that every field holds a usable value
func (c Config) Validate() error {
	switch {
	case c.Rows < 0 || c.Cols < 0:
		return errors.Wrapf(ErrInvalidConfig, "grid dimensions must not be negative, got %dx%d", c.Rows, c.Cols)
	case c.TickInterval <= 0:
		return errors.Wrapf(ErrInvalidConfig, "tick_interval must be positive, got %s", c.TickInterval)
	case c.RandomThreshold < 0 || c.RandomThreshold > 1:
		return errors.Wrapf(ErrInvalidConfig, "random_threshold must be within [0, 1], got %v", c.RandomThreshold)
	case c.MaxGenerations < 0:
		return errors.Wrapf(ErrInvalidConfig, "max_generations must not be negative, got %d", c.MaxGenerations)
	case c.StagnationThreshold < 0 || c.InjectionCount < 0:
		return errors.Wrap(ErrInvalidConfig, "stagnation_threshold and injection_count must not be negative")
	case c.HistorySize < 3:
		return errors.Wrapf(ErrInvalidConfig, "history_size must be at least 3, got %d", c.HistorySize)
	}
	return nil
}
