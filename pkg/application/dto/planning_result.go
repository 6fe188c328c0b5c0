package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// GroupResult is the outcome of planning one paper-specification group
type GroupResult struct {
	SpecKey         string
	Spec            entities.PaperSpec
	Instances       []entities.PatternInstance
	Hierarchy       []entities.RollNode
	Produced        map[entities.Width]int
	Residual        map[entities.Width]int
	PendingDeltas   []entities.PendingUnit
	ResolvedPending []entities.PendingUnit
	TimedOut        bool
	Err             error
}

// RejectedLine pairs a demand item with the validation error that kept it
// out of the planning run
type RejectedLine struct {
	Item entities.DemandItem
	Err  error
}

// RemnantAllocation records one remnant roll substituted for one unit of
// order demand before optimization
type RemnantAllocation struct {
	RemnantID  uuid.UUID
	FrontendID string
	OrderID    uuid.UUID
	Spec       entities.PaperSpec
	Width      entities.Width
}

// WasteSummary aggregates trim metrics across all specification groups
type WasteSummary struct {
	TotalTrim         decimal.Decimal
	AverageTrim       decimal.Decimal
	WastePercent      decimal.Decimal
	HighTrimInstances int
	PiecesProduced    int
	SetRollCount      int
	JumboCount        int
}

// PlanningResult is the complete, immutable output of one planning run
type PlanningResult struct {
	Groups             []GroupResult
	PatternsUsed       []entities.PatternInstance
	Hierarchy          []entities.RollNode
	PendingDeltas      []entities.PendingUnit
	ResolvedPending    []entities.PendingUnit
	RemnantAllocations []RemnantAllocation
	Rejected           []RejectedLine
	Waste              WasteSummary
	Strategy           string
	Elapsed            time.Duration
	PlannedAt          time.Time
}

// FullyPacked reports whether every group was packed with zero residual
func (r *PlanningResult) FullyPacked() bool {
	for _, g := range r.Groups {
		if g.Err != nil {
			return false
		}
		for _, qty := range g.Residual {
			if qty > 0 {
				return false
			}
		}
	}
	return true
}

// FailedGroups returns the groups that ended in an error
func (r *PlanningResult) FailedGroups() []GroupResult {
	var failed []GroupResult
	for _, g := range r.Groups {
		if g.Err != nil {
			failed = append(failed, g)
		}
	}
	return failed
}

// GetSummary returns a formatted summary of the planning results
func (r *PlanningResult) GetSummary() string {
	pendingQty := 0
	for _, p := range r.PendingDeltas {
		pendingQty += p.Quantity
	}
	summary := fmt.Sprintf("Planning Summary (%d specification groups, %s strategy):\n",
		len(r.Groups), r.Strategy)
	summary += fmt.Sprintf("  Rolls: %d jumbo, %d set rolls, %d pieces produced\n",
		r.Waste.JumboCount, r.Waste.SetRollCount, r.Waste.PiecesProduced)
	summary += fmt.Sprintf("  Waste: %s\" total trim, %s\" average, %s%% of material, %d high-trim rolls\n",
		r.Waste.TotalTrim.StringFixed(2), r.Waste.AverageTrim.StringFixed(2),
		r.Waste.WastePercent.StringFixed(2), r.Waste.HighTrimInstances)
	summary += fmt.Sprintf("  Backlog: %d pending deltas (%d rolls), %d resolved\n",
		len(r.PendingDeltas), pendingQty, len(r.ResolvedPending))
	summary += fmt.Sprintf("  Rejected lines: %d, failed groups: %d",
		len(r.Rejected), len(r.FailedGroups()))
	return summary
}
