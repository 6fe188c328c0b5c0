// Package selector chooses how many times to run each candidate pattern so
// that piece production covers as much of the demand as possible without
// overproducing any width.
package selector

import (
	"context"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// Strategy names a pattern selection algorithm.
type Strategy string

const (
	// StrategyGreedy walks patterns in trim order and applies each as many
	// times as the remaining demand fully covers.
	StrategyGreedy Strategy = "greedy"
	// StrategyExact searches pattern multiplicities exhaustively for the
	// minimum-waste selection, subject to a time limit.
	StrategyExact Strategy = "exact"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyGreedy || s == StrategyExact
}

// Selection is the outcome of one selection run.
type Selection struct {
	Instances []entities.PatternInstance
	Produced  map[entities.Width]int
	Residual  map[entities.Width]int
	TimedOut  bool
}

// TotalTrim sums the trim across all selected instances.
func (s Selection) TotalTrim() entities.Width {
	var total entities.Width
	for _, inst := range s.Instances {
		total += inst.TotalTrim()
	}
	return total
}

// Selector picks pattern multiplicities against a demand map. Implementations
// never produce more pieces of a width than the demand asks for.
type Selector interface {
	Select(ctx context.Context, patterns []entities.Pattern, demand map[entities.Width]int) (Selection, error)
}

// maxRepeat returns the largest repeat count for which remaining demand
// still covers every piece of the pattern.
func maxRepeat(p entities.Pattern, remaining map[entities.Width]int) int {
	repeat := -1
	for w, count := range p.PieceCounts() {
		fit := remaining[w] / count
		if repeat < 0 || fit < repeat {
			repeat = fit
		}
	}
	if repeat < 0 {
		return 0
	}
	return repeat
}

func cloneDemand(demand map[entities.Width]int) map[entities.Width]int {
	out := make(map[entities.Width]int, len(demand))
	for w, q := range demand {
		out[w] = q
	}
	return out
}

func tally(instances []entities.PatternInstance, demand map[entities.Width]int) (produced, residual map[entities.Width]int) {
	produced = make(map[entities.Width]int, len(demand))
	residual = cloneDemand(demand)
	for _, inst := range instances {
		for w, count := range inst.Pattern.PieceCounts() {
			produced[w] += count * inst.Repeat
			residual[w] -= count * inst.Repeat
		}
	}
	return produced, residual
}
