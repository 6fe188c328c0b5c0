package selector

import (
	"context"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// Greedy applies patterns in their given order, repeating each one as long
// as the remaining demand covers every piece of the pattern. Patterns are
// expected pre-sorted by ascending trim, so low-waste patterns are consumed
// first. The result is deterministic for a given pattern order and demand.
type Greedy struct{}

var _ Selector = (*Greedy)(nil)

// NewGreedy creates a greedy selector.
func NewGreedy() *Greedy {
	return &Greedy{}
}

// Select walks the pattern list once, applying each pattern at its maximum
// feasible repeat count before moving on.
func (g *Greedy) Select(_ context.Context, patterns []entities.Pattern, demand map[entities.Width]int) (Selection, error) {
	remaining := cloneDemand(demand)
	var instances []entities.PatternInstance

	for _, p := range patterns {
		repeat := maxRepeat(p, remaining)
		if repeat == 0 {
			continue
		}
		inst, err := entities.NewPatternInstance(p, repeat)
		if err != nil {
			return Selection{}, err
		}
		instances = append(instances, *inst)
		for w, count := range p.PieceCounts() {
			remaining[w] -= count * repeat
		}
	}

	produced, residual := tally(instances, demand)
	return Selection{
		Instances: instances,
		Produced:  produced,
		Residual:  residual,
	}, nil
}
