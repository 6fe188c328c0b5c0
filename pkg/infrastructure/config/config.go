// Package config provides YAML-based configuration loading for cutplan.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rollwise/cutplan/pkg/application/services/orchestration"
	"github.com/rollwise/cutplan/pkg/application/services/selector"
	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// Config is the top-level cutplan configuration, loaded from cutplan.yaml.
type Config struct {
	Machine  MachineConfig  `yaml:"machine"`
	Solver   SolverConfig   `yaml:"solver"`
	Database DatabaseConfig `yaml:"database"`
}

// MachineConfig holds the physical parameters of the slitting machine.
type MachineConfig struct {
	RollWidth         string `yaml:"roll_width"`
	TrimCap           string `yaml:"trim_cap"`
	HighTrimThreshold string `yaml:"high_trim_threshold"`
	MaxPieces         int    `yaml:"max_pieces"`
}

// SolverConfig holds pattern selection settings.
type SolverConfig struct {
	Strategy         string `yaml:"strategy"`
	MaxPatterns      int    `yaml:"max_patterns"`
	TimeLimitSeconds int    `yaml:"time_limit_seconds"`
	Strict           bool   `yaml:"strict"`
	Parallelism      int    `yaml:"parallelism"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values from the standard
// planning configuration.
func (c *Config) applyDefaults() {
	def := orchestration.DefaultConfig()
	if c.Machine.RollWidth == "" {
		c.Machine.RollWidth = def.RollWidth.String()
	}
	if c.Machine.TrimCap == "" {
		c.Machine.TrimCap = def.TrimCap.String()
	}
	if c.Machine.HighTrimThreshold == "" {
		c.Machine.HighTrimThreshold = def.HighTrimThreshold.String()
	}
	if c.Machine.MaxPieces == 0 {
		c.Machine.MaxPieces = def.MaxPieces
	}
	if c.Solver.Strategy == "" {
		c.Solver.Strategy = string(def.Strategy)
	}
	if c.Solver.MaxPatterns == 0 {
		c.Solver.MaxPatterns = def.MaxPatterns
	}
	if c.Solver.TimeLimitSeconds == 0 {
		c.Solver.TimeLimitSeconds = int(def.SolverTimeLimit / time.Second)
	}
	if c.Solver.Parallelism == 0 {
		c.Solver.Parallelism = def.Parallelism
	}
	if c.Database.Path == "" {
		c.Database.Path = "cutplan.db"
	}
}

// validate checks that all fields parse and are consistent.
func (c *Config) validate() error {
	var errs []string
	if _, err := entities.ParseWidth(c.Machine.RollWidth); err != nil {
		errs = append(errs, fmt.Sprintf("machine.roll_width: %v", err))
	}
	if _, err := entities.ParseWidth(c.Machine.TrimCap); err != nil {
		errs = append(errs, fmt.Sprintf("machine.trim_cap: %v", err))
	}
	if _, err := entities.ParseWidth(c.Machine.HighTrimThreshold); err != nil {
		errs = append(errs, fmt.Sprintf("machine.high_trim_threshold: %v", err))
	}
	if c.Machine.MaxPieces < 1 {
		errs = append(errs, "machine.max_pieces must be at least 1")
	}
	if !selector.Strategy(c.Solver.Strategy).Valid() {
		errs = append(errs, fmt.Sprintf("solver.strategy: unknown strategy %q", c.Solver.Strategy))
	}
	if c.Solver.MaxPatterns < 1 {
		errs = append(errs, "solver.max_patterns must be at least 1")
	}
	if c.Solver.TimeLimitSeconds < 0 {
		errs = append(errs, "solver.time_limit_seconds cannot be negative")
	}
	if c.Solver.Parallelism < 1 {
		errs = append(errs, "solver.parallelism must be at least 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Planning converts the file representation into the orchestrator's config.
// Call only on a validated Config.
func (c *Config) Planning() (orchestration.Config, error) {
	rollWidth, err := entities.ParseWidth(c.Machine.RollWidth)
	if err != nil {
		return orchestration.Config{}, err
	}
	trimCap, err := entities.ParseWidth(c.Machine.TrimCap)
	if err != nil {
		return orchestration.Config{}, err
	}
	highTrim, err := entities.ParseWidth(c.Machine.HighTrimThreshold)
	if err != nil {
		return orchestration.Config{}, err
	}
	return orchestration.Config{
		RollWidth:         rollWidth,
		TrimCap:           trimCap,
		HighTrimThreshold: highTrim,
		MaxPieces:         c.Machine.MaxPieces,
		MaxPatterns:       c.Solver.MaxPatterns,
		Strategy:          selector.Strategy(c.Solver.Strategy),
		SolverTimeLimit:   time.Duration(c.Solver.TimeLimitSeconds) * time.Second,
		Strict:            c.Solver.Strict,
		Parallelism:       c.Solver.Parallelism,
	}, nil
}
