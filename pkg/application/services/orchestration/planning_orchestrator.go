// Package orchestration coordinates one complete planning run: validation,
// remnant netting, backlog inclusion, per-specification optimization and
// the pending bookkeeping that follows it.
package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rollwise/cutplan/pkg/application/dto"
	"github.com/rollwise/cutplan/pkg/application/services/deferral"
	"github.com/rollwise/cutplan/pkg/application/services/generator"
	"github.com/rollwise/cutplan/pkg/application/services/hierarchy"
	"github.com/rollwise/cutplan/pkg/application/services/selector"
	"github.com/rollwise/cutplan/pkg/domain/entities"
	"github.com/rollwise/cutplan/pkg/domain/repositories"
	"github.com/rollwise/cutplan/pkg/infrastructure/events"
)

// PlanningOrchestrator runs the cutting optimizer end to end. Specification
// groups are independent and are planned concurrently; pending and remnant
// stores are only touched for the group that owns them.
type PlanningOrchestrator struct {
	config     Config
	generator  *generator.Generator
	selector   selector.Selector
	builder    *hierarchy.Builder
	deferral   *deferral.Manager
	remnants   repositories.RemnantRepository
	eventStore events.EventStore
	logger     *slog.Logger
}

// NewPlanningOrchestrator creates a new planning orchestrator. The remnant
// repository and event store are optional; pass nil to disable remnant
// netting and event recording.
func NewPlanningOrchestrator(
	config Config,
	pendingRepo repositories.PendingRepository,
	remnantRepo repositories.RemnantRepository,
	eventStore events.EventStore,
	logger *slog.Logger,
) (*PlanningOrchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid planning config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	gen, err := generator.New(config.RollWidth, config.TrimCap, config.MaxPieces, config.MaxPatterns)
	if err != nil {
		return nil, err
	}
	builder, err := hierarchy.New(config.RollWidth, logger)
	if err != nil {
		return nil, err
	}
	mgr, err := deferral.New(pendingRepo)
	if err != nil {
		return nil, err
	}

	var sel selector.Selector
	switch config.Strategy {
	case selector.StrategyExact:
		sel = selector.NewExact(config.SolverTimeLimit)
	default:
		sel = selector.NewGreedy()
	}

	return &PlanningOrchestrator{
		config:     config,
		generator:  gen,
		selector:   sel,
		builder:    builder,
		deferral:   mgr,
		remnants:   remnantRepo,
		eventStore: eventStore,
		logger:     logger,
	}, nil
}

// PlanRequest is the input to one planning run.
type PlanRequest struct {
	// Orders holds the order-origin demand lines to plan.
	Orders []entities.DemandItem
	// IncludePending adds the open backlog to the run's demand.
	IncludePending bool
	// IncludeRemnants nets matching remnant stock against order demand
	// before optimization.
	IncludeRemnants bool
}

// Plan executes a complete planning run and returns its immutable result.
// Invalid lines are rejected, not fatal, unless the configuration is strict.
func (po *PlanningOrchestrator) Plan(ctx context.Context, req PlanRequest) (*dto.PlanningResult, error) {
	started := time.Now()
	runID := uuid.New()
	po.record(events.NewPlanStartedEvent(runID, len(req.Orders), string(po.config.Strategy)))

	items, rejected := po.validateLines(req.Orders)

	var allocations []dto.RemnantAllocation
	if req.IncludeRemnants && po.remnants != nil {
		var err error
		items, allocations, err = po.netRemnants(items)
		if err != nil {
			return nil, fmt.Errorf("netting remnants: %w", err)
		}
	}

	if req.IncludePending {
		backlog, err := po.deferral.AllOpenDemand()
		if err != nil {
			return nil, fmt.Errorf("loading pending backlog: %w", err)
		}
		items = append(items, backlog...)
	}

	groups, keys := groupBySpec(items)
	results := make([]dto.GroupResult, len(keys))

	workers := po.config.Parallelism
	if workers > len(keys) {
		workers = len(keys)
	}
	if workers > 0 {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = po.planGroup(ctx, runID, groups[keys[i]])
				}
			}()
		}
		for i := range keys {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	result := po.assemble(runID, results, allocations, rejected, started)

	if po.config.Strict {
		if len(result.Rejected) > 0 {
			return result, fmt.Errorf("strict mode: %d demand lines rejected", len(result.Rejected))
		}
		if failed := result.FailedGroups(); len(failed) > 0 {
			return result, fmt.Errorf("strict mode: %d specification groups failed", len(failed))
		}
	}
	return result, nil
}

// validateLines splits demand lines into plannable items and rejections.
func (po *PlanningOrchestrator) validateLines(orders []entities.DemandItem) ([]entities.DemandItem, []dto.RejectedLine) {
	items := make([]entities.DemandItem, 0, len(orders))
	var rejected []dto.RejectedLine
	for _, item := range orders {
		var err error
		switch {
		case item.Width <= 0:
			err = entities.NewValidationError("width", "must be positive, got %s", item.Width)
		case item.Width > po.config.RollWidth:
			err = entities.NewValidationError("width",
				"%s exceeds roll width %s", item.Width, po.config.RollWidth)
		case item.Quantity < 1:
			err = entities.NewValidationError("quantity", "must be at least 1, got %d", item.Quantity)
		}
		if err != nil {
			po.logger.Warn("demand line rejected", "origin", item.Origin.Ref, "error", err)
			rejected = append(rejected, dto.RejectedLine{Item: item, Err: err})
			continue
		}
		items = append(items, item)
	}
	return items, rejected
}

// netRemnants substitutes available remnant rolls for order demand, one
// remnant per demanded roll, heaviest stock first.
func (po *PlanningOrchestrator) netRemnants(items []entities.DemandItem) ([]entities.DemandItem, []dto.RemnantAllocation, error) {
	kept := make([]entities.DemandItem, 0, len(items))
	var allocations []dto.RemnantAllocation
	for _, item := range items {
		if item.Origin.Kind != entities.OriginOrder {
			kept = append(kept, item)
			continue
		}
		available, err := po.remnants.Available(item.Spec, item.Width)
		if err != nil {
			return nil, nil, fmt.Errorf("querying remnants for %s @ %s: %w", item.Spec.Key(), item.Width, err)
		}
		for _, rem := range available {
			if item.Quantity == 0 {
				break
			}
			if err := po.remnants.Allocate(rem.ID, item.Origin.ID); err != nil {
				return nil, nil, fmt.Errorf("allocating remnant %s: %w", rem.FrontendID, err)
			}
			item.Quantity--
			allocations = append(allocations, dto.RemnantAllocation{
				RemnantID:  rem.ID,
				FrontendID: rem.FrontendID,
				OrderID:    item.Origin.ID,
				Spec:       item.Spec,
				Width:      item.Width,
			})
			po.record(events.NewRemnantAllocatedEvent(rem.ID, rem.FrontendID, item.Origin.ID, item.Width))
		}
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	return kept, allocations, nil
}

// planGroup optimizes one specification group and settles its backlog.
func (po *PlanningOrchestrator) planGroup(ctx context.Context, runID uuid.UUID, items []entities.DemandItem) dto.GroupResult {
	spec := items[0].Spec
	result := dto.GroupResult{SpecKey: spec.Key(), Spec: spec}

	demand := make(map[entities.Width]int)
	widths := make([]entities.Width, 0, len(items))
	for _, item := range items {
		if demand[item.Width] == 0 {
			widths = append(widths, item.Width)
		}
		demand[item.Width] += item.Quantity
	}

	patterns, err := po.generator.Generate(spec, widths)
	if err != nil {
		result.Err = fmt.Errorf("generating patterns: %w", err)
		po.record(events.NewGroupFailedEvent(runID, result.SpecKey, result.Err))
		return result
	}

	sel, err := po.selector.Select(ctx, patterns, demand)
	if err != nil {
		result.Err = fmt.Errorf("selecting patterns: %w", err)
		po.record(events.NewGroupFailedEvent(runID, result.SpecKey, result.Err))
		return result
	}
	result.Instances = sel.Instances
	result.Produced = sel.Produced
	result.Residual = sel.Residual
	result.TimedOut = sel.TimedOut

	nodes, err := po.builder.Build(spec, sel.Instances)
	if err != nil {
		result.Err = fmt.Errorf("building roll hierarchy: %w", err)
		po.record(events.NewGroupFailedEvent(runID, result.SpecKey, result.Err))
		return result
	}
	result.Hierarchy = nodes

	for _, inst := range sel.Instances {
		if inst.Pattern.Trim > po.config.HighTrimThreshold {
			po.logger.Warn("high-trim pattern accepted",
				"spec", result.SpecKey,
				"pattern", inst.Pattern.Key(),
				"trim", inst.Pattern.Trim,
				"repeat", inst.Repeat)
			po.record(events.NewHighTrimAcceptedEvent(runID, result.SpecKey, inst))
		}
	}

	if err := po.settleBacklog(spec, items, patterns, sel, &result); err != nil {
		result.Err = err
		po.record(events.NewGroupFailedEvent(runID, result.SpecKey, result.Err))
		return result
	}

	setRolls := 0
	for _, inst := range sel.Instances {
		setRolls += inst.Repeat
	}
	po.record(events.NewGroupPlannedEvent(runID, result.SpecKey, len(patterns), setRolls, sel.TimedOut))
	return result
}

// settleBacklog applies the group's production against open pending units
// first, then defers any uncovered order demand as new backlog.
func (po *PlanningOrchestrator) settleBacklog(spec entities.PaperSpec, items []entities.DemandItem, patterns []entities.Pattern, sel selector.Selection, result *dto.GroupResult) error {
	pendingDemand := make(map[entities.Width]int)
	for _, item := range items {
		if item.Origin.Kind == entities.OriginPending {
			pendingDemand[item.Width] += item.Quantity
		}
	}

	// Production first satisfies the backlog that was pulled into the run.
	// Widths are walked in descending order so the result and the event
	// stream come out the same on every run.
	forOrders := make(map[entities.Width]int, len(sel.Produced))
	for _, w := range sortedWidthsDesc(sel.Produced) {
		produced := sel.Produced[w]
		served := produced
		if open := pendingDemand[w]; served > open {
			served = open
		}
		forOrders[w] = produced - served
		if served == 0 {
			continue
		}
		changed, unmatched, err := po.deferral.Consume(spec, w, served)
		if err != nil {
			return fmt.Errorf("consuming backlog at %s: %w", w, err)
		}
		if unmatched > 0 {
			po.logger.Warn("backlog consumption short",
				"spec", spec.Key(), "width", w, "unmatched", unmatched)
		}
		for _, unit := range changed {
			result.ResolvedPending = append(result.ResolvedPending, unit)
			if unit.Status == entities.PendingResolved {
				po.record(events.NewPendingResolvedEvent(unit))
			}
		}
	}

	// Whatever production is left covers order lines in input order; the
	// uncovered remainder becomes new backlog keyed by originating order.
	residualByOrigin := make(map[uuid.UUID]map[entities.Width]int)
	var originOrder []uuid.UUID
	for _, item := range items {
		if item.Origin.Kind != entities.OriginOrder {
			continue
		}
		covered := item.Quantity
		if forOrders[item.Width] < covered {
			covered = forOrders[item.Width]
		}
		forOrders[item.Width] -= covered
		short := item.Quantity - covered
		if short == 0 {
			continue
		}
		if residualByOrigin[item.Origin.ID] == nil {
			residualByOrigin[item.Origin.ID] = make(map[entities.Width]int)
			originOrder = append(originOrder, item.Origin.ID)
		}
		residualByOrigin[item.Origin.ID][item.Width] += short
	}

	for _, originID := range originOrder {
		byWidth := residualByOrigin[originID]
		for _, w := range sortedWidthsDesc(byWidth) {
			qty := byWidth[w]
			reason := entities.InsufficientEfficiency
			if !widthAppears(patterns, w) {
				reason = entities.NoMatchingPattern
			}
			deltas, err := po.deferral.Defer(spec,
				map[entities.Width]int{w: qty}, originID, reason)
			if err != nil {
				return fmt.Errorf("deferring residual at %s: %w", w, err)
			}
			for _, d := range deltas {
				result.PendingDeltas = append(result.PendingDeltas, d.Unit)
				if d.Created {
					po.record(events.NewPendingCreatedEvent(d.Unit))
				} else {
					po.record(events.NewPendingGrownEvent(d.Unit))
				}
			}
		}
	}
	return nil
}

// sortedWidthsDesc returns the map's keys widest first.
func sortedWidthsDesc(m map[entities.Width]int) []entities.Width {
	widths := make([]entities.Width, 0, len(m))
	for w := range m {
		widths = append(widths, w)
	}
	sort.Slice(widths, func(i, j int) bool { return widths[i] > widths[j] })
	return widths
}

// widthAppears reports whether any candidate pattern cuts the given width.
func widthAppears(patterns []entities.Pattern, w entities.Width) bool {
	for i := range patterns {
		if patterns[i].Count(w) > 0 {
			return true
		}
	}
	return false
}

// assemble merges per-group results into the run-level view.
func (po *PlanningOrchestrator) assemble(
	runID uuid.UUID,
	groups []dto.GroupResult,
	allocations []dto.RemnantAllocation,
	rejected []dto.RejectedLine,
	started time.Time,
) *dto.PlanningResult {
	result := &dto.PlanningResult{
		Groups:             groups,
		RemnantAllocations: allocations,
		Rejected:           rejected,
		Strategy:           string(po.config.Strategy),
		PlannedAt:          started,
		Elapsed:            time.Since(started),
	}

	var totalTrim entities.Width
	setRolls, jumbos, pieces, highTrim := 0, 0, 0, 0
	for _, g := range groups {
		result.PatternsUsed = append(result.PatternsUsed, g.Instances...)
		result.Hierarchy = append(result.Hierarchy, g.Hierarchy...)
		result.PendingDeltas = append(result.PendingDeltas, g.PendingDeltas...)
		result.ResolvedPending = append(result.ResolvedPending, g.ResolvedPending...)
		for _, inst := range g.Instances {
			totalTrim += inst.TotalTrim()
			setRolls += inst.Repeat
			pieces += len(inst.Pattern.Pieces) * inst.Repeat
			if inst.Pattern.Trim > po.config.HighTrimThreshold {
				highTrim += inst.Repeat
			}
		}
		for _, node := range g.Hierarchy {
			if node.Kind == entities.JumboRoll {
				jumbos++
			}
		}
	}

	waste := dto.WasteSummary{
		TotalTrim:         totalTrim.Decimal(),
		HighTrimInstances: highTrim,
		PiecesProduced:    pieces,
		SetRollCount:      setRolls,
		JumboCount:        jumbos,
	}
	if setRolls > 0 {
		waste.AverageTrim = waste.TotalTrim.Div(decimal.NewFromInt(int64(setRolls))).Round(2)
		material := po.config.RollWidth.Decimal().Mul(decimal.NewFromInt(int64(setRolls)))
		waste.WastePercent = waste.TotalTrim.Div(material).Mul(decimal.NewFromInt(100)).Round(2)
	}
	result.Waste = waste

	po.record(events.NewPlanCompletedEvent(runID, len(groups), jumbos, setRolls, pieces, totalTrim))
	return result
}

// groupBySpec partitions demand items by specification key, preserving item
// order within a group. Keys are returned sorted for deterministic dispatch.
func groupBySpec(items []entities.DemandItem) (map[string][]entities.DemandItem, []string) {
	groups := make(map[string][]entities.DemandItem)
	for _, item := range items {
		key := item.Spec.Key()
		groups[key] = append(groups[key], item)
	}
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return groups, keys
}

func (po *PlanningOrchestrator) record(event events.Event) {
	if po.eventStore == nil {
		return
	}
	if err := po.eventStore.AppendEvent(event.StreamID(), event); err != nil {
		po.logger.Warn("event append failed", "type", event.Type(), "error", err)
	}
}
