package events

import (
	"github.com/google/uuid"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

const (
	PlanStartedEvent   = "plan.started"
	PlanCompletedEvent = "plan.completed"
	GroupPlannedEvent  = "plan.group.planned"
	GroupFailedEvent   = "plan.group.failed"

	PendingCreatedEvent  = "pending.created"
	PendingGrownEvent    = "pending.grown"
	PendingResolvedEvent = "pending.resolved"

	RemnantAllocatedEvent = "remnant.allocated"
	HighTrimAcceptedEvent = "plan.high_trim.accepted"
)

// PlanStarted records the scope of a planning run at kickoff.
type PlanStarted struct {
	RunID      uuid.UUID `json:"run_id"`
	OrderLines int       `json:"order_lines"`
	Strategy   string    `json:"strategy"`
}

// PlanCompleted summarizes a finished run.
type PlanCompleted struct {
	RunID          uuid.UUID `json:"run_id"`
	Groups         int       `json:"groups"`
	JumboCount     int       `json:"jumbo_count"`
	SetRollCount   int       `json:"set_roll_count"`
	PiecesProduced int       `json:"pieces_produced"`
	TotalTrim      string    `json:"total_trim"`
}

// GroupPlanned records the outcome of one specification group.
type GroupPlanned struct {
	RunID    uuid.UUID `json:"run_id"`
	SpecKey  string    `json:"spec_key"`
	Patterns int       `json:"patterns"`
	SetRolls int       `json:"set_rolls"`
	TimedOut bool      `json:"timed_out"`
}

// GroupFailed records a specification group that could not be planned.
type GroupFailed struct {
	RunID   uuid.UUID `json:"run_id"`
	SpecKey string    `json:"spec_key"`
	Reason  string    `json:"reason"`
}

// PendingCreated records a new backlog unit written by deferral.
type PendingCreated struct {
	Unit entities.PendingUnit `json:"unit"`
}

// PendingGrown records additional quantity merged into an open unit.
type PendingGrown struct {
	Unit entities.PendingUnit `json:"unit"`
}

// PendingResolved records an open unit consumed down to zero.
type PendingResolved struct {
	Unit entities.PendingUnit `json:"unit"`
}

// RemnantAllocated records a remnant substituted for fresh cutting.
type RemnantAllocated struct {
	RemnantID  uuid.UUID      `json:"remnant_id"`
	FrontendID string         `json:"frontend_id"`
	OrderID    uuid.UUID      `json:"order_id"`
	Width      entities.Width `json:"width"`
}

// HighTrimAccepted records a selected pattern whose trim exceeds the
// confirmation threshold.
type HighTrimAccepted struct {
	RunID      uuid.UUID `json:"run_id"`
	SpecKey    string    `json:"spec_key"`
	PatternKey string    `json:"pattern_key"`
	Trim       string    `json:"trim"`
	Repeat     int       `json:"repeat"`
}

// NewPlanStartedEvent creates a plan.started event on the run's stream.
func NewPlanStartedEvent(runID uuid.UUID, orderLines int, strategy string) Event {
	return NewEvent(PlanStartedEvent, runID.String(), PlanStarted{
		RunID:      runID,
		OrderLines: orderLines,
		Strategy:   strategy,
	})
}

// NewPlanCompletedEvent creates a plan.completed event on the run's stream.
func NewPlanCompletedEvent(runID uuid.UUID, groups, jumbos, setRolls, pieces int, totalTrim entities.Width) Event {
	return NewEvent(PlanCompletedEvent, runID.String(), PlanCompleted{
		RunID:          runID,
		Groups:         groups,
		JumboCount:     jumbos,
		SetRollCount:   setRolls,
		PiecesProduced: pieces,
		TotalTrim:      totalTrim.String(),
	})
}

// NewGroupPlannedEvent creates a plan.group.planned event.
func NewGroupPlannedEvent(runID uuid.UUID, specKey string, patterns, setRolls int, timedOut bool) Event {
	return NewEvent(GroupPlannedEvent, runID.String(), GroupPlanned{
		RunID:    runID,
		SpecKey:  specKey,
		Patterns: patterns,
		SetRolls: setRolls,
		TimedOut: timedOut,
	})
}

// NewGroupFailedEvent creates a plan.group.failed event.
func NewGroupFailedEvent(runID uuid.UUID, specKey string, err error) Event {
	return NewEvent(GroupFailedEvent, runID.String(), GroupFailed{
		RunID:   runID,
		SpecKey: specKey,
		Reason:  err.Error(),
	})
}

// NewPendingCreatedEvent creates a pending.created event on the unit's stream.
func NewPendingCreatedEvent(unit entities.PendingUnit) Event {
	return NewEvent(PendingCreatedEvent, unit.ID.String(), PendingCreated{Unit: unit})
}

// NewPendingGrownEvent creates a pending.grown event on the unit's stream.
func NewPendingGrownEvent(unit entities.PendingUnit) Event {
	return NewEvent(PendingGrownEvent, unit.ID.String(), PendingGrown{Unit: unit})
}

// NewPendingResolvedEvent creates a pending.resolved event on the unit's stream.
func NewPendingResolvedEvent(unit entities.PendingUnit) Event {
	return NewEvent(PendingResolvedEvent, unit.ID.String(), PendingResolved{Unit: unit})
}

// NewRemnantAllocatedEvent creates a remnant.allocated event.
func NewRemnantAllocatedEvent(remnantID uuid.UUID, frontendID string, orderID uuid.UUID, width entities.Width) Event {
	return NewEvent(RemnantAllocatedEvent, remnantID.String(), RemnantAllocated{
		RemnantID:  remnantID,
		FrontendID: frontendID,
		OrderID:    orderID,
		Width:      width,
	})
}

// NewHighTrimAcceptedEvent creates a plan.high_trim.accepted event.
func NewHighTrimAcceptedEvent(runID uuid.UUID, specKey string, inst entities.PatternInstance) Event {
	return NewEvent(HighTrimAcceptedEvent, runID.String(), HighTrimAccepted{
		RunID:      runID,
		SpecKey:    specKey,
		PatternKey: inst.Pattern.Key(),
		Trim:       inst.Pattern.Trim.String(),
		Repeat:     inst.Repeat,
	})
}
