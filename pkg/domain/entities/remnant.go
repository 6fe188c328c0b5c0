package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RemnantStatus is the lifecycle state of a remnant roll
type RemnantStatus int

const (
	RemnantAvailable RemnantStatus = iota
	RemnantAllocated
)

// String method for RemnantStatus enum
func (s RemnantStatus) String() string {
	switch s {
	case RemnantAvailable:
		return "Available"
	case RemnantAllocated:
		return "Allocated"
	default:
		return "Unknown"
	}
}

// Remnant is an already-cut roll sitting in inventory that can substitute
// for one unit of matching demand, sparing a fresh cut. One remnant covers
// exactly one roll of its width.
type Remnant struct {
	ID               uuid.UUID
	FrontendID       string
	Spec             PaperSpec
	Width            Width
	WeightKG         decimal.Decimal
	Status           RemnantStatus
	SourceOrderID    uuid.UUID // order whose cutting produced this remnant
	AllocatedOrderID uuid.UUID // order the remnant was allocated to, when allocated
	CreatedAt        time.Time
}

// NewRemnant creates a validated available Remnant
func NewRemnant(spec PaperSpec, width Width, weightKG decimal.Decimal, sourceOrderID uuid.UUID) (*Remnant, error) {
	if width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %s", width)
	}
	if weightKG.Sign() < 0 {
		return nil, fmt.Errorf("weight cannot be negative, got %s", weightKG)
	}
	return &Remnant{
		ID:            uuid.New(),
		Spec:          spec,
		Width:         width,
		WeightKG:      weightKG,
		Status:        RemnantAvailable,
		SourceOrderID: sourceOrderID,
		CreatedAt:     time.Now(),
	}, nil
}
