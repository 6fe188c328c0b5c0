package orchestration

import (
	"runtime"
	"time"

	"github.com/rollwise/cutplan/pkg/application/services/selector"
	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// Config carries the machine and solver parameters of a planning run.
type Config struct {
	// RollWidth is the usable width of every jumbo and set roll.
	RollWidth entities.Width
	// TrimCap is the largest per-roll trim a pattern may leave.
	TrimCap entities.Width
	// HighTrimThreshold marks the trim level above which a selected pattern
	// is flagged for confirmation.
	HighTrimThreshold entities.Width
	// MaxPieces bounds how many pieces one pattern may cut from a roll.
	MaxPieces int
	// MaxPatterns caps the candidate pattern set per specification group.
	MaxPatterns int
	// Strategy picks the pattern selection algorithm.
	Strategy selector.Strategy
	// SolverTimeLimit bounds the exact solver per group. Ignored by greedy.
	SolverTimeLimit time.Duration
	// Strict makes the run fail on any rejected line or failed group.
	Strict bool
	// Parallelism is the number of specification groups planned at once.
	Parallelism int
}

// DefaultConfig returns the standard machine parameters: a 118 inch roll,
// trim accepted up to 20 inches with confirmation required above 6, and at
// most 4 pieces per pattern.
func DefaultConfig() Config {
	return Config{
		RollWidth:         entities.MustWidth("118.00"),
		TrimCap:           entities.MustWidth("20.00"),
		HighTrimThreshold: entities.MustWidth("6.00"),
		MaxPieces:         4,
		MaxPatterns:       200,
		Strategy:          selector.StrategyGreedy,
		SolverTimeLimit:   10 * time.Second,
		Parallelism:       runtime.NumCPU(),
	}
}

// Validate checks the configuration for internally consistent values.
func (c Config) Validate() error {
	if c.RollWidth <= 0 {
		return entities.NewValidationError("roll_width", "must be positive, got %s", c.RollWidth)
	}
	if c.TrimCap < 0 {
		return entities.NewValidationError("trim_cap", "cannot be negative, got %s", c.TrimCap)
	}
	if c.HighTrimThreshold < 0 {
		return entities.NewValidationError("high_trim_threshold", "cannot be negative, got %s", c.HighTrimThreshold)
	}
	if c.HighTrimThreshold > c.TrimCap {
		return entities.NewValidationError("high_trim_threshold", "%s exceeds trim cap %s", c.HighTrimThreshold, c.TrimCap)
	}
	if c.MaxPieces < 1 {
		return entities.NewValidationError("max_pieces", "must be at least 1, got %d", c.MaxPieces)
	}
	if c.MaxPatterns < 1 {
		return entities.NewValidationError("max_patterns", "must be at least 1, got %d", c.MaxPatterns)
	}
	if !c.Strategy.Valid() {
		return entities.NewValidationError("strategy", "unknown strategy %q", string(c.Strategy))
	}
	if c.Parallelism < 1 {
		return entities.NewValidationError("parallelism", "must be at least 1, got %d", c.Parallelism)
	}
	return nil
}
