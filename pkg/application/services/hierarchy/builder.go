// Package hierarchy materializes selected pattern instances into the
// three-level roll structure: each pattern repetition becomes one set roll,
// set rolls are grouped three to a jumbo, and every piece of the pattern
// becomes a cut roll under its set roll.
package hierarchy

import (
	"log/slog"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// Builder expands pattern instances into roll nodes.
type Builder struct {
	RollWidth entities.Width
	Logger    *slog.Logger
}

// New creates a Builder. A nil logger falls back to slog.Default.
func New(rollWidth entities.Width, logger *slog.Logger) (*Builder, error) {
	if rollWidth <= 0 {
		return nil, entities.NewValidationError("rollWidth", "must be positive, got %s", rollWidth)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{RollWidth: rollWidth, Logger: logger}, nil
}

// Build expands the instances in order into jumbo, set and cut roll nodes.
// Set rolls are assigned to jumbos in groups of three; a final group of one
// or two set rolls still gets its own jumbo, which is logged. The returned
// nodes satisfy ValidateHierarchy.
func (b *Builder) Build(spec entities.PaperSpec, instances []entities.PatternInstance) ([]entities.RollNode, error) {
	totalSets := 0
	for _, inst := range instances {
		totalSets += inst.Repeat
	}
	if totalSets == 0 {
		return nil, nil
	}

	nodes := make([]entities.RollNode, 0, totalSets*2)
	var jumbo entities.RollNode
	setIdx := 0

	for _, inst := range instances {
		for rep := 0; rep < inst.Repeat; rep++ {
			if setIdx%entities.SetRollsPerJumbo == 0 {
				jumbo = entities.NewJumbo(spec, b.RollWidth)
				nodes = append(nodes, jumbo)
			}
			seq := setIdx%entities.SetRollsPerJumbo + 1
			set := entities.NewSetRoll(jumbo.ID, seq, spec, b.RollWidth, inst.Pattern.Trim)
			nodes = append(nodes, set)
			for _, w := range inst.Pattern.Pieces {
				nodes = append(nodes, entities.NewCutRoll(set.ID, spec, w))
			}
			setIdx++
		}
	}

	if rem := totalSets % entities.SetRollsPerJumbo; rem != 0 {
		b.Logger.Warn("final jumbo under capacity",
			"spec", spec.Key(),
			"set_rolls", rem,
			"capacity", entities.SetRollsPerJumbo)
	}

	if err := entities.ValidateHierarchy(nodes, b.RollWidth); err != nil {
		return nil, err
	}
	return nodes, nil
}

// JumboCount returns how many jumbos the given number of set rolls needs.
func JumboCount(setRolls int) int {
	if setRolls <= 0 {
		return 0
	}
	return (setRolls + entities.SetRollsPerJumbo - 1) / entities.SetRollsPerJumbo
}
