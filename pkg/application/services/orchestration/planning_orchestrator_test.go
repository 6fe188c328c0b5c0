package orchestration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rollwise/cutplan/pkg/application/services/selector"
	"github.com/rollwise/cutplan/pkg/domain/entities"
	"github.com/rollwise/cutplan/pkg/infrastructure/events"
	"github.com/rollwise/cutplan/pkg/infrastructure/repositories/memory"
)

func testSpec(t *testing.T) entities.PaperSpec {
	t.Helper()
	spec, err := entities.NewPaperSpec(120, decimal.RequireFromString("18.0"), "Natural")
	if err != nil {
		t.Fatalf("NewPaperSpec: %v", err)
	}
	return spec
}

func orderItem(t *testing.T, spec entities.PaperSpec, orderID uuid.UUID, width string, qty int) entities.DemandItem {
	t.Helper()
	item, err := entities.NewDemandItem(spec, entities.MustWidth(width), qty,
		entities.Origin{Kind: entities.OriginOrder, ID: orderID, Ref: "ORD-00001"}, decimal.Zero)
	if err != nil {
		t.Fatalf("NewDemandItem: %v", err)
	}
	return *item
}

type fixture struct {
	orchestrator *PlanningOrchestrator
	pending      *memory.PendingRepository
	remnants     *memory.RemnantRepository
	events       *events.InMemoryEventStore
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Parallelism = 2
	if mutate != nil {
		mutate(&cfg)
	}
	pending := memory.NewPendingRepository()
	remnants := memory.NewRemnantRepository()
	store := events.NewInMemoryEventStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	orchestrator, err := NewPlanningOrchestrator(cfg, pending, remnants, store, logger)
	if err != nil {
		t.Fatalf("NewPlanningOrchestrator: %v", err)
	}
	return &fixture{orchestrator: orchestrator, pending: pending, remnants: remnants, events: store}
}

func TestPlanFullPacking(t *testing.T) {
	f := newFixture(t, nil)
	spec := testSpec(t)
	orderID := uuid.New()
	orders := []entities.DemandItem{
		orderItem(t, spec, orderID, "25.00", 62),
		orderItem(t, spec, orderID, "28.00", 82),
		orderItem(t, spec, orderID, "30.00", 28),
	}

	result, err := f.orchestrator.Plan(context.Background(), PlanRequest{Orders: orders})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if !result.FullyPacked() {
		t.Error("expected full packing")
	}
	if result.Waste.SetRollCount != 43 {
		t.Errorf("set rolls = %d, want 43", result.Waste.SetRollCount)
	}
	if result.Waste.JumboCount != 15 {
		t.Errorf("jumbos = %d, want 15", result.Waste.JumboCount)
	}
	if result.Waste.PiecesProduced != 172 {
		t.Errorf("pieces = %d, want 172", result.Waste.PiecesProduced)
	}
	if got := result.Waste.TotalTrim.StringFixed(2); got != "388.00" {
		t.Errorf("total trim = %s, want 388.00", got)
	}
	if result.Waste.HighTrimInstances != 16 {
		t.Errorf("high-trim rolls = %d, want 16", result.Waste.HighTrimInstances)
	}
	if len(result.PendingDeltas) != 0 {
		t.Errorf("unexpected pending deltas: %d", len(result.PendingDeltas))
	}

	if err := entities.ValidateHierarchy(result.Hierarchy, entities.MustWidth("118.00")); err != nil {
		t.Errorf("hierarchy invalid: %v", err)
	}
}

func TestPlanRejectsOversizedWidth(t *testing.T) {
	f := newFixture(t, nil)
	spec := testSpec(t)
	orderID := uuid.New()
	orders := []entities.DemandItem{
		orderItem(t, spec, orderID, "130.00", 2),
		orderItem(t, spec, orderID, "28.00", 4),
	}

	result, err := f.orchestrator.Plan(context.Background(), PlanRequest{Orders: orders})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if len(result.Rejected) != 1 {
		t.Fatalf("rejected = %d, want 1", len(result.Rejected))
	}
	var vErr *entities.ValidationError
	if !errors.As(result.Rejected[0].Err, &vErr) {
		t.Errorf("expected *ValidationError, got %T", result.Rejected[0].Err)
	}
	// The valid line still plans.
	if result.Waste.PiecesProduced != 4 {
		t.Errorf("pieces = %d, want 4", result.Waste.PiecesProduced)
	}
}

func TestPlanStrictFailsOnRejection(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.Strict = true })
	spec := testSpec(t)
	orders := []entities.DemandItem{
		orderItem(t, spec, uuid.New(), "130.00", 2),
	}

	if _, err := f.orchestrator.Plan(context.Background(), PlanRequest{Orders: orders}); err == nil {
		t.Error("strict mode must fail on rejected lines")
	}
}

func TestPlanDefersUnpackableWidth(t *testing.T) {
	f := newFixture(t, nil)
	spec := testSpec(t)
	orderID := uuid.New()

	// 23.5" cannot be packed within the trim cap on its own.
	result, err := f.orchestrator.Plan(context.Background(), PlanRequest{
		Orders: []entities.DemandItem{orderItem(t, spec, orderID, "23.50", 15)},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if result.Waste.PiecesProduced != 0 {
		t.Errorf("pieces = %d, want 0", result.Waste.PiecesProduced)
	}
	if len(result.PendingDeltas) != 1 {
		t.Fatalf("pending deltas = %d, want 1", len(result.PendingDeltas))
	}
	delta := result.PendingDeltas[0]
	if delta.Quantity != 15 {
		t.Errorf("deferred quantity = %d, want 15", delta.Quantity)
	}
	if delta.Reason != entities.NoMatchingPattern {
		t.Errorf("reason = %s, want NoMatchingPattern", delta.Reason)
	}
	if delta.OriginOrderID != orderID {
		t.Error("delta must trace back to the originating order")
	}
}

func TestPlanConsumesBacklogAcrossRuns(t *testing.T) {
	f := newFixture(t, nil)
	spec := testSpec(t)
	orderID := uuid.New()

	// Run 1: nothing fits, 15 rolls of 23.5" go to the backlog.
	if _, err := f.orchestrator.Plan(context.Background(), PlanRequest{
		Orders: []entities.DemandItem{orderItem(t, spec, orderID, "23.50", 15)},
	}); err != nil {
		t.Fatalf("run 1: %v", err)
	}

	// Run 2: a 94.50" order combines with one backlog roll for a
	// zero-trim pattern.
	result, err := f.orchestrator.Plan(context.Background(), PlanRequest{
		Orders:         []entities.DemandItem{orderItem(t, spec, uuid.New(), "94.50", 1)},
		IncludePending: true,
	})
	if err != nil {
		t.Fatalf("run 2: %v", err)
	}

	if result.Waste.PiecesProduced != 2 {
		t.Errorf("pieces = %d, want 2", result.Waste.PiecesProduced)
	}
	if !result.Waste.TotalTrim.IsZero() {
		t.Errorf("total trim = %s, want 0", result.Waste.TotalTrim)
	}
	if len(result.PendingDeltas) != 0 {
		t.Errorf("run 2 created %d new deltas, want 0", len(result.PendingDeltas))
	}
	if len(result.ResolvedPending) != 1 {
		t.Fatalf("resolved pending = %d, want 1", len(result.ResolvedPending))
	}
	if result.ResolvedPending[0].Quantity != 14 {
		t.Errorf("backlog quantity = %d, want 14", result.ResolvedPending[0].Quantity)
	}

	open, err := f.pending.AllOpen()
	if err != nil {
		t.Fatalf("AllOpen: %v", err)
	}
	if len(open) != 1 || open[0].Quantity != 14 {
		t.Errorf("backlog should hold one unit of 14, got %+v", open)
	}
}

func TestPlanRepeatedDeferralMerges(t *testing.T) {
	f := newFixture(t, nil)
	spec := testSpec(t)
	orderID := uuid.New()
	req := PlanRequest{
		Orders: []entities.DemandItem{orderItem(t, spec, orderID, "23.50", 5)},
	}

	if _, err := f.orchestrator.Plan(context.Background(), req); err != nil {
		t.Fatalf("run 1: %v", err)
	}
	if _, err := f.orchestrator.Plan(context.Background(), req); err != nil {
		t.Fatalf("run 2: %v", err)
	}

	open, err := f.pending.AllOpen()
	if err != nil {
		t.Fatalf("AllOpen: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("same-key deferrals must merge, got %d units", len(open))
	}
	if open[0].Quantity != 10 {
		t.Errorf("merged quantity = %d, want 10", open[0].Quantity)
	}
}

func TestPlanNetsRemnants(t *testing.T) {
	f := newFixture(t, nil)
	spec := testSpec(t)
	orderID := uuid.New()

	remnant, err := entities.NewRemnant(spec, entities.MustWidth("28.00"), decimal.RequireFromString("120.5"), uuid.New())
	if err != nil {
		t.Fatalf("NewRemnant: %v", err)
	}
	if err := f.remnants.Save(remnant); err != nil {
		t.Fatalf("Save: %v", err)
	}

	result, err := f.orchestrator.Plan(context.Background(), PlanRequest{
		Orders:          []entities.DemandItem{orderItem(t, spec, orderID, "28.00", 5)},
		IncludeRemnants: true,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if len(result.RemnantAllocations) != 1 {
		t.Fatalf("allocations = %d, want 1", len(result.RemnantAllocations))
	}
	if result.RemnantAllocations[0].OrderID != orderID {
		t.Error("allocation must reference the order")
	}
	// 4 fresh rolls instead of 5; the 28x4 pattern covers the rest.
	if result.Waste.PiecesProduced != 4 {
		t.Errorf("pieces = %d, want 4", result.Waste.PiecesProduced)
	}

	available, err := f.remnants.Available(spec, entities.MustWidth("28.00"))
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if len(available) != 0 {
		t.Error("allocated remnant must leave the available pool")
	}
}

func TestPlanSeparatesSpecGroups(t *testing.T) {
	f := newFixture(t, nil)
	natural := testSpec(t)
	golden, err := entities.NewPaperSpec(140, decimal.RequireFromString("20.0"), "Golden")
	if err != nil {
		t.Fatalf("NewPaperSpec: %v", err)
	}
	orderID := uuid.New()

	result, err := f.orchestrator.Plan(context.Background(), PlanRequest{
		Orders: []entities.DemandItem{
			orderItem(t, natural, orderID, "28.00", 4),
			orderItem(t, golden, orderID, "28.00", 4),
		},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if len(result.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(result.Groups))
	}
	for _, g := range result.Groups {
		for _, node := range g.Hierarchy {
			if !node.Spec.Equal(g.Spec) {
				t.Errorf("group %s contains node of spec %s", g.SpecKey, node.Spec.Key())
			}
		}
	}
}

func TestPlanDeterministicAcrossParallelism(t *testing.T) {
	spec := testSpec(t)
	orderID := uuid.New()
	orders := []entities.DemandItem{
		orderItem(t, spec, orderID, "25.00", 62),
		orderItem(t, spec, orderID, "28.00", 82),
		orderItem(t, spec, orderID, "30.00", 28),
	}

	summaries := make(map[string]bool)
	for _, workers := range []int{1, 4} {
		f := newFixture(t, func(cfg *Config) { cfg.Parallelism = workers })
		result, err := f.orchestrator.Plan(context.Background(), PlanRequest{Orders: orders})
		if err != nil {
			t.Fatalf("Plan (parallelism %d): %v", workers, err)
		}
		key := ""
		for _, inst := range result.PatternsUsed {
			key += inst.Pattern.Key() + "|"
		}
		summaries[key] = true
	}
	if len(summaries) != 1 {
		t.Error("pattern selection must not depend on worker count")
	}
}

func TestPlanDeferralOrderStable(t *testing.T) {
	spec := testSpec(t)

	// Neither width fits any pattern within the trim cap, so both defer.
	// Every run must emit the deltas widest first with the same frontend
	// identifiers.
	for run := 0; run < 5; run++ {
		f := newFixture(t, nil)
		orderID := uuid.New()
		result, err := f.orchestrator.Plan(context.Background(), PlanRequest{
			Orders: []entities.DemandItem{
				orderItem(t, spec, orderID, "22.00", 5),
				orderItem(t, spec, orderID, "23.50", 5),
			},
		})
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}

		if len(result.PendingDeltas) != 2 {
			t.Fatalf("run %d: pending deltas = %d, want 2", run, len(result.PendingDeltas))
		}
		first, second := result.PendingDeltas[0], result.PendingDeltas[1]
		if first.Width != entities.MustWidth("23.50") || first.FrontendID != "PND-00001" {
			t.Errorf("run %d: first delta = %s %s, want 23.50 PND-00001", run, first.Width, first.FrontendID)
		}
		if second.Width != entities.MustWidth("22.00") || second.FrontendID != "PND-00002" {
			t.Errorf("run %d: second delta = %s %s, want 22.00 PND-00002", run, second.Width, second.FrontendID)
		}
	}
}

func TestPlanExactTimeLimitReturnsBestFound(t *testing.T) {
	f := newFixture(t, func(cfg *Config) {
		cfg.Strategy = selector.StrategyExact
		cfg.SolverTimeLimit = time.Nanosecond
	})
	spec := testSpec(t)
	orderID := uuid.New()
	orders := []entities.DemandItem{
		orderItem(t, spec, orderID, "25.00", 62),
		orderItem(t, spec, orderID, "28.00", 82),
		orderItem(t, spec, orderID, "30.00", 28),
	}

	result, err := f.orchestrator.Plan(context.Background(), PlanRequest{Orders: orders})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	// The deadline expires mid-search; the run still succeeds with the
	// seed selection and flags the group.
	if len(result.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(result.Groups))
	}
	if !result.Groups[0].TimedOut {
		t.Error("expected the group to report a solver timeout")
	}
	if result.Groups[0].Err != nil {
		t.Errorf("timeout must not fail the group: %v", result.Groups[0].Err)
	}
	if len(result.Groups[0].Instances) == 0 {
		t.Error("expected a nonempty best-found selection")
	}
	if result.Waste.PiecesProduced == 0 {
		t.Error("best-found selection must produce pieces")
	}
	for w, produced := range result.Groups[0].Produced {
		if demand := map[entities.Width]int{
			entities.MustWidth("25.00"): 62,
			entities.MustWidth("28.00"): 82,
			entities.MustWidth("30.00"): 28,
		}[w]; produced > demand {
			t.Errorf("width %s overproduced: %d > %d", w, produced, demand)
		}
	}
	if err := entities.ValidateHierarchy(result.Hierarchy, entities.MustWidth("118.00")); err != nil {
		t.Errorf("hierarchy invalid: %v", err)
	}
}

func TestPlanRecordsEvents(t *testing.T) {
	f := newFixture(t, nil)
	spec := testSpec(t)

	if _, err := f.orchestrator.Plan(context.Background(), PlanRequest{
		Orders: []entities.DemandItem{orderItem(t, spec, uuid.New(), "23.50", 15)},
	}); err != nil {
		t.Fatalf("Plan: %v", err)
	}

	all, err := f.events.ReadAllEvents(0)
	if err != nil {
		t.Fatalf("ReadAllEvents: %v", err)
	}
	types := make(map[string]int)
	for _, e := range all {
		types[e.Type()]++
	}
	for _, want := range []string{events.PlanStartedEvent, events.PlanCompletedEvent, events.PendingCreatedEvent, events.GroupPlannedEvent} {
		if types[want] == 0 {
			t.Errorf("missing %s event", want)
		}
	}
}
