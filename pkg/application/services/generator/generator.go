// Package generator enumerates cutting patterns for a single paper
// specification. A pattern is a multiset of piece widths cut from one set
// roll; only patterns whose leftover trim falls within the configured cap
// are emitted.
package generator

import (
	"fmt"
	"sort"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// Generator produces the candidate pattern set for one planning run.
type Generator struct {
	RollWidth   entities.Width
	TrimCap     entities.Width
	MaxPieces   int
	MaxPatterns int
}

// New creates a Generator after validating its parameters.
func New(rollWidth, trimCap entities.Width, maxPieces, maxPatterns int) (*Generator, error) {
	if rollWidth <= 0 {
		return nil, entities.NewValidationError("rollWidth", "must be positive, got %s", rollWidth)
	}
	if trimCap < 0 {
		return nil, entities.NewValidationError("trimCap", "cannot be negative, got %s", trimCap)
	}
	if maxPieces < 1 {
		return nil, entities.NewValidationError("maxPieces", "must be at least 1, got %d", maxPieces)
	}
	if maxPatterns < 1 {
		return nil, entities.NewValidationError("maxPatterns", "must be at least 1, got %d", maxPatterns)
	}
	return &Generator{
		RollWidth:   rollWidth,
		TrimCap:     trimCap,
		MaxPieces:   maxPieces,
		MaxPatterns: maxPatterns,
	}, nil
}

// Generate enumerates every combination-with-repetition of the given widths
// that fits the roll with trim at or below the cap, sorted by ascending trim
// and then by descending piece count. The result is truncated to MaxPatterns.
func (g *Generator) Generate(spec entities.PaperSpec, widths []entities.Width) ([]entities.Pattern, error) {
	for _, w := range widths {
		if w <= 0 {
			return nil, entities.NewValidationError("width", "must be positive, got %s", w)
		}
		if w > g.RollWidth {
			return nil, entities.NewValidationError("width",
				"%s exceeds roll width %s", w, g.RollWidth)
		}
	}

	// Deduplicate and sort descending so recursion explores wide pieces first
	// and combinations stay non-increasing, which avoids permuted duplicates.
	uniq := dedupeDesc(widths)

	var patterns []entities.Pattern
	combo := make([]entities.Width, 0, g.MaxPieces)

	var walk func(start int, used entities.Width) error
	walk = func(start int, used entities.Width) error {
		if len(combo) > 0 {
			trim := g.RollWidth - used
			if trim <= g.TrimCap {
				p, err := entities.NewPattern(spec, combo, g.RollWidth)
				if err != nil {
					return fmt.Errorf("building pattern: %w", err)
				}
				patterns = append(patterns, *p)
			}
		}
		if len(combo) == g.MaxPieces {
			return nil
		}
		for i := start; i < len(uniq); i++ {
			w := uniq[i]
			if used+w > g.RollWidth {
				continue
			}
			combo = append(combo, w)
			if err := walk(i, used+w); err != nil {
				return err
			}
			combo = combo[:len(combo)-1]
		}
		return nil
	}
	if err := walk(0, 0); err != nil {
		return nil, err
	}

	sortPatterns(patterns)
	if len(patterns) > g.MaxPatterns {
		patterns = patterns[:g.MaxPatterns]
	}
	return patterns, nil
}

// sortPatterns orders by trim ascending, piece count descending, then by
// pattern key so equal candidates always land in the same position.
func sortPatterns(patterns []entities.Pattern) {
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Trim != patterns[j].Trim {
			return patterns[i].Trim < patterns[j].Trim
		}
		if len(patterns[i].Pieces) != len(patterns[j].Pieces) {
			return len(patterns[i].Pieces) > len(patterns[j].Pieces)
		}
		return patterns[i].Key() < patterns[j].Key()
	})
}

func dedupeDesc(widths []entities.Width) []entities.Width {
	seen := make(map[entities.Width]bool, len(widths))
	uniq := make([]entities.Width, 0, len(widths))
	for _, w := range widths {
		if !seen[w] {
			seen[w] = true
			uniq = append(uniq, w)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] > uniq[j] })
	return uniq
}
