package entities

import (
	"fmt"
	"sort"
	"strings"
)

// Pattern is one combination of piece widths assigned to a single roll.
// Patterns are value objects generated fresh for every planning run.
type Pattern struct {
	Spec      PaperSpec
	Pieces    []Width // sorted descending
	UsedWidth Width
	Trim      Width
}

// NewPattern creates a validated Pattern for the given roll width
func NewPattern(spec PaperSpec, pieces []Width, rollWidth Width) (*Pattern, error) {
	if len(pieces) == 0 {
		return nil, fmt.Errorf("pattern must contain at least one piece")
	}

	sorted := make([]Width, len(pieces))
	copy(sorted, pieces)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	var used Width
	for _, p := range sorted {
		if p <= 0 {
			return nil, fmt.Errorf("piece width must be positive, got %s", p)
		}
		used += p
	}
	if used > rollWidth {
		return nil, fmt.Errorf("pattern width %s exceeds roll width %s", used, rollWidth)
	}

	return &Pattern{
		Spec:      spec,
		Pieces:    sorted,
		UsedWidth: used,
		Trim:      rollWidth - used,
	}, nil
}

// Count returns how many pieces of the given width the pattern produces
func (p *Pattern) Count(w Width) int {
	n := 0
	for _, piece := range p.Pieces {
		if piece == w {
			n++
		}
	}
	return n
}

// PieceCounts returns the pattern's pieces as a width -> count map
func (p *Pattern) PieceCounts() map[Width]int {
	counts := make(map[Width]int, len(p.Pieces))
	for _, piece := range p.Pieces {
		counts[piece]++
	}
	return counts
}

// Key returns a canonical identifier for the piece combination
func (p *Pattern) Key() string {
	parts := make([]string, len(p.Pieces))
	for i, piece := range p.Pieces {
		parts[i] = piece.String()
	}
	return strings.Join(parts, "+")
}

func (p *Pattern) String() string {
	return fmt.Sprintf("[%s] trim %s", p.Key(), p.Trim)
}

// PatternInstance records how many physical rolls are cut with one pattern
type PatternInstance struct {
	Pattern Pattern
	Repeat  int
}

// NewPatternInstance creates a validated PatternInstance
func NewPatternInstance(pattern Pattern, repeat int) (*PatternInstance, error) {
	if repeat < 1 {
		return nil, fmt.Errorf("repeat count must be at least 1, got %d", repeat)
	}
	return &PatternInstance{Pattern: pattern, Repeat: repeat}, nil
}

// TotalTrim returns the trim contributed by all repeats of this instance
func (pi *PatternInstance) TotalTrim() Width {
	return pi.Pattern.Trim * Width(pi.Repeat)
}
