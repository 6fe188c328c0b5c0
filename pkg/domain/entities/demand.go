package entities

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OriginKind identifies where a demand item came from
type OriginKind int

const (
	OriginOrder OriginKind = iota
	OriginPending
)

// String method for OriginKind enum
func (k OriginKind) String() string {
	switch k {
	case OriginOrder:
		return "Order"
	case OriginPending:
		return "Pending"
	default:
		return "Unknown"
	}
}

// Origin traces a demand item back to its source record
type Origin struct {
	Kind OriginKind
	ID   uuid.UUID
	Ref  string // human-facing identifier of the source, e.g. "ORD-00017"
}

// DemandItem is one cut requirement inside a planning run. Items are
// immutable for the duration of the run; the open backlog enters a run as
// items with a pending origin, while remnant stock is netted off order
// quantities before items are grouped.
type DemandItem struct {
	Spec      PaperSpec
	Width     Width
	Quantity  int
	Origin    Origin
	MinLength decimal.Decimal // minimum acceptable roll length in meters, zero when unset
}

// NewDemandItem creates a validated DemandItem
func NewDemandItem(spec PaperSpec, width Width, quantity int, origin Origin, minLength decimal.Decimal) (*DemandItem, error) {
	if width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %s", width)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	if minLength.Sign() < 0 {
		return nil, fmt.Errorf("min length cannot be negative, got %s", minLength)
	}
	return &DemandItem{
		Spec:      spec,
		Width:     width,
		Quantity:  quantity,
		Origin:    origin,
		MinLength: minLength,
	}, nil
}
