package selector

import (
	"context"
	"time"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// Exact searches pattern multiplicities by branch and bound, minimizing a
// cost of total trim plus a per-unpacked-piece penalty large enough that
// packing a piece always beats leaving it. The search is seeded with the
// greedy solution and stops at the time limit, reporting the best selection
// found so far with TimedOut set.
type Exact struct {
	// TimeLimit bounds the wall-clock search time. Zero means no limit.
	TimeLimit time.Duration
}

var _ Selector = (*Exact)(nil)

// NewExact creates an exact selector with the given time limit.
func NewExact(timeLimit time.Duration) *Exact {
	return &Exact{TimeLimit: timeLimit}
}

// deadlineCheckInterval is how many search nodes pass between clock reads.
const deadlineCheckInterval = 1024

type exactSearch struct {
	patterns []entities.Pattern
	penalty  entities.Width
	deadline time.Time
	hasLimit bool

	best      []int
	bestCost  entities.Width
	current   []int
	nodes     int
	timedOut  bool
	cancelled bool
}

// Select runs the branch and bound search. A timeout is not an error; the
// best selection found before the deadline is returned.
func (e *Exact) Select(ctx context.Context, patterns []entities.Pattern, demand map[entities.Width]int) (Selection, error) {
	seed, err := NewGreedy().Select(ctx, patterns, demand)
	if err != nil {
		return Selection{}, err
	}
	if len(patterns) == 0 {
		return seed, nil
	}

	// A penalty above any single pattern's trim guarantees that any selection
	// packing strictly more pieces costs less than one packing fewer.
	var penalty entities.Width
	for _, p := range patterns {
		if p.Trim >= penalty {
			penalty = p.Trim + 1
		}
	}
	for _, q := range demand {
		if q < 0 {
			return Selection{}, entities.NewValidationError("demand", "negative quantity %d", q)
		}
	}

	s := &exactSearch{
		patterns: patterns,
		penalty:  penalty,
		current:  make([]int, len(patterns)),
		best:     seedCounts(patterns, seed.Instances),
		bestCost: cost(seed, penalty),
	}
	if e.TimeLimit > 0 {
		s.deadline = time.Now().Add(e.TimeLimit)
		s.hasLimit = true
	}
	if d, ok := ctx.Deadline(); ok && (!s.hasLimit || d.Before(s.deadline)) {
		s.deadline = d
		s.hasLimit = true
	}

	select {
	case <-ctx.Done():
		s.cancelled = true
	default:
		remaining := cloneDemand(demand)
		s.branch(ctx, 0, remaining, 0)
	}

	instances, err := instancesFromCounts(patterns, s.best)
	if err != nil {
		return Selection{}, err
	}
	produced, residual := tally(instances, demand)
	return Selection{
		Instances: instances,
		Produced:  produced,
		Residual:  residual,
		TimedOut:  s.timedOut || s.cancelled,
	}, nil
}

func (s *exactSearch) expired(ctx context.Context) bool {
	if s.timedOut || s.cancelled {
		return true
	}
	s.nodes++
	if s.nodes%deadlineCheckInterval != 0 {
		return false
	}
	select {
	case <-ctx.Done():
		s.cancelled = true
		return true
	default:
	}
	if s.hasLimit && time.Now().After(s.deadline) {
		s.timedOut = true
		return true
	}
	return false
}

func (s *exactSearch) branch(ctx context.Context, idx int, remaining map[entities.Width]int, trimSoFar entities.Width) {
	if s.expired(ctx) {
		return
	}
	// Remaining cost is nonnegative, so accrued trim alone bounds the leaf.
	if trimSoFar >= s.bestCost {
		return
	}
	if idx == len(s.patterns) {
		total := trimSoFar + s.penalty*entities.Width(countPieces(remaining))
		if total < s.bestCost {
			s.bestCost = total
			copy(s.best, s.current)
		}
		return
	}

	p := s.patterns[idx]
	counts := p.PieceCounts()
	for repeat := maxRepeat(p, remaining); repeat >= 0; repeat-- {
		s.current[idx] = repeat
		for w, c := range counts {
			remaining[w] -= c * repeat
		}
		s.branch(ctx, idx+1, remaining, trimSoFar+p.Trim*entities.Width(repeat))
		for w, c := range counts {
			remaining[w] += c * repeat
		}
		if s.timedOut || s.cancelled {
			break
		}
	}
	s.current[idx] = 0
}

func cost(sel Selection, penalty entities.Width) entities.Width {
	unpacked := 0
	for _, q := range sel.Residual {
		unpacked += q
	}
	return sel.TotalTrim() + penalty*entities.Width(unpacked)
}

func countPieces(remaining map[entities.Width]int) int {
	total := 0
	for _, q := range remaining {
		total += q
	}
	return total
}

func seedCounts(patterns []entities.Pattern, instances []entities.PatternInstance) []int {
	counts := make([]int, len(patterns))
	byKey := make(map[string]int, len(patterns))
	for i, p := range patterns {
		byKey[p.Key()] = i
	}
	for _, inst := range instances {
		if i, ok := byKey[inst.Pattern.Key()]; ok {
			counts[i] = inst.Repeat
		}
	}
	return counts
}

func instancesFromCounts(patterns []entities.Pattern, counts []int) ([]entities.PatternInstance, error) {
	var instances []entities.PatternInstance
	for i, repeat := range counts {
		if repeat == 0 {
			continue
		}
		inst, err := entities.NewPatternInstance(patterns[i], repeat)
		if err != nil {
			return nil, err
		}
		instances = append(instances, *inst)
	}
	return instances, nil
}
