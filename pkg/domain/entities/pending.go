package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PendingReason records why demand was deferred to the backlog
type PendingReason int

const (
	InsufficientEfficiency PendingReason = iota
	NoMatchingPattern
)

// String method for PendingReason enum
func (r PendingReason) String() string {
	switch r {
	case InsufficientEfficiency:
		return "InsufficientEfficiency"
	case NoMatchingPattern:
		return "NoMatchingPattern"
	default:
		return "Unknown"
	}
}

// ParsePendingReason converts a stored reason string back to the enum
func ParsePendingReason(s string) (PendingReason, error) {
	switch s {
	case "InsufficientEfficiency":
		return InsufficientEfficiency, nil
	case "NoMatchingPattern":
		return NoMatchingPattern, nil
	default:
		return 0, fmt.Errorf("unknown pending reason %q", s)
	}
}

// PendingStatus is the lifecycle state of a pending unit
type PendingStatus int

const (
	PendingOpen PendingStatus = iota
	PendingResolved
)

// String method for PendingStatus enum
func (s PendingStatus) String() string {
	switch s {
	case PendingOpen:
		return "Open"
	case PendingResolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}

// PendingUnit is demand carried over between planning cycles. It is the
// only planning entity that outlives a run: created when a cycle cannot
// pack a width economically, decremented when later cycles consume it, and
// resolved when the quantity reaches zero. Deletion and retention are the
// backlog store's concern.
type PendingUnit struct {
	ID            uuid.UUID
	FrontendID    string
	Spec          PaperSpec
	Width         Width
	Quantity      int
	OriginOrderID uuid.UUID
	Reason        PendingReason
	Status        PendingStatus
	CreatedAt     time.Time
}

// NewPendingUnit creates a validated open PendingUnit
func NewPendingUnit(spec PaperSpec, width Width, quantity int, originOrderID uuid.UUID, reason PendingReason) (*PendingUnit, error) {
	if width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %s", width)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	return &PendingUnit{
		ID:            uuid.New(),
		Spec:          spec,
		Width:         width,
		Quantity:      quantity,
		OriginOrderID: originOrderID,
		Reason:        reason,
		Status:        PendingOpen,
		CreatedAt:     time.Now(),
	}, nil
}

// Add increases the open quantity when a later cycle defers more of the
// same (specification, width, origin) demand
func (p *PendingUnit) Add(quantity int) error {
	if p.Status != PendingOpen {
		return fmt.Errorf("cannot add to %s pending unit %s", p.Status, p.ID)
	}
	if quantity < 1 {
		return fmt.Errorf("added quantity must be at least 1, got %d", quantity)
	}
	p.Quantity += quantity
	return nil
}

// Consume reduces the open quantity by up to n and returns how much was
// taken. The unit is marked resolved when the quantity reaches zero.
func (p *PendingUnit) Consume(n int) (int, error) {
	if p.Status != PendingOpen {
		return 0, fmt.Errorf("cannot consume %s pending unit %s", p.Status, p.ID)
	}
	if n < 1 {
		return 0, fmt.Errorf("consumed quantity must be at least 1, got %d", n)
	}
	taken := n
	if taken > p.Quantity {
		taken = p.Quantity
	}
	p.Quantity -= taken
	if p.Quantity == 0 {
		p.Status = PendingResolved
	}
	return taken, nil
}
