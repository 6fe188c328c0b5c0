package sqlstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// PendingUnitRecord is the stored form of a pending backlog unit.
type PendingUnitRecord struct {
	ID            string `gorm:"primaryKey;size:36"`
	FrontendID    string `gorm:"uniqueIndex;size:16"`
	GSM           int    `gorm:"not null;index:idx_pending_spec"`
	BF            string `gorm:"size:8;not null;index:idx_pending_spec"`
	Shade         string `gorm:"size:32;not null;index:idx_pending_spec"`
	Width         int64  `gorm:"not null"`
	Quantity      int    `gorm:"not null"`
	OriginOrderID string `gorm:"size:36;index"`
	Reason        string `gorm:"size:32"`
	Status        string `gorm:"size:16;default:Open;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName keeps the table name stable regardless of pluralization rules.
func (PendingUnitRecord) TableName() string { return "pending_units" }

// RemnantRecord is the stored form of a remnant roll.
type RemnantRecord struct {
	ID               string `gorm:"primaryKey;size:36"`
	FrontendID       string `gorm:"uniqueIndex;size:16"`
	GSM              int    `gorm:"not null;index:idx_remnant_spec"`
	BF               string `gorm:"size:8;not null;index:idx_remnant_spec"`
	Shade            string `gorm:"size:32;not null;index:idx_remnant_spec"`
	Width            int64  `gorm:"not null"`
	WeightKG         string `gorm:"size:16"`
	Status           string `gorm:"size:16;default:Available;index"`
	SourceOrderID    string `gorm:"size:36"`
	AllocatedOrderID string `gorm:"size:36"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (RemnantRecord) TableName() string { return "remnants" }

func pendingToRecord(unit *entities.PendingUnit) PendingUnitRecord {
	return PendingUnitRecord{
		ID:            unit.ID.String(),
		FrontendID:    unit.FrontendID,
		GSM:           unit.Spec.GSM,
		BF:            unit.Spec.BF.StringFixed(1),
		Shade:         unit.Spec.Shade,
		Width:         int64(unit.Width),
		Quantity:      unit.Quantity,
		OriginOrderID: unit.OriginOrderID.String(),
		Reason:        unit.Reason.String(),
		Status:        unit.Status.String(),
		CreatedAt:     unit.CreatedAt,
	}
}

func recordToPending(rec PendingUnitRecord) (*entities.PendingUnit, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing pending unit id %q: %w", rec.ID, err)
	}
	originID, err := uuid.Parse(rec.OriginOrderID)
	if err != nil {
		return nil, fmt.Errorf("parsing origin order id %q: %w", rec.OriginOrderID, err)
	}
	spec, err := specFromColumns(rec.GSM, rec.BF, rec.Shade)
	if err != nil {
		return nil, err
	}
	reason, err := entities.ParsePendingReason(rec.Reason)
	if err != nil {
		return nil, err
	}
	status, err := parsePendingStatus(rec.Status)
	if err != nil {
		return nil, err
	}
	return &entities.PendingUnit{
		ID:            id,
		FrontendID:    rec.FrontendID,
		Spec:          spec,
		Width:         entities.Width(rec.Width),
		Quantity:      rec.Quantity,
		OriginOrderID: originID,
		Reason:        reason,
		Status:        status,
		CreatedAt:     rec.CreatedAt,
	}, nil
}

func remnantToRecord(rem *entities.Remnant) RemnantRecord {
	return RemnantRecord{
		ID:               rem.ID.String(),
		FrontendID:       rem.FrontendID,
		GSM:              rem.Spec.GSM,
		BF:               rem.Spec.BF.StringFixed(1),
		Shade:            rem.Spec.Shade,
		Width:            int64(rem.Width),
		WeightKG:         rem.WeightKG.String(),
		Status:           rem.Status.String(),
		SourceOrderID:    rem.SourceOrderID.String(),
		AllocatedOrderID: rem.AllocatedOrderID.String(),
		CreatedAt:        rem.CreatedAt,
	}
}

func recordToRemnant(rec RemnantRecord) (*entities.Remnant, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing remnant id %q: %w", rec.ID, err)
	}
	sourceID, err := uuid.Parse(rec.SourceOrderID)
	if err != nil {
		return nil, fmt.Errorf("parsing source order id %q: %w", rec.SourceOrderID, err)
	}
	allocatedID, err := uuid.Parse(rec.AllocatedOrderID)
	if err != nil {
		return nil, fmt.Errorf("parsing allocated order id %q: %w", rec.AllocatedOrderID, err)
	}
	spec, err := specFromColumns(rec.GSM, rec.BF, rec.Shade)
	if err != nil {
		return nil, err
	}
	weight, err := decimal.NewFromString(rec.WeightKG)
	if err != nil {
		return nil, fmt.Errorf("parsing remnant weight %q: %w", rec.WeightKG, err)
	}
	status, err := parseRemnantStatus(rec.Status)
	if err != nil {
		return nil, err
	}
	return &entities.Remnant{
		ID:               id,
		FrontendID:       rec.FrontendID,
		Spec:             spec,
		Width:            entities.Width(rec.Width),
		WeightKG:         weight,
		Status:           status,
		SourceOrderID:    sourceID,
		AllocatedOrderID: allocatedID,
		CreatedAt:        rec.CreatedAt,
	}, nil
}

func specFromColumns(gsm int, bf, shade string) (entities.PaperSpec, error) {
	bfDec, err := decimal.NewFromString(bf)
	if err != nil {
		return entities.PaperSpec{}, fmt.Errorf("parsing BF %q: %w", bf, err)
	}
	return entities.NewPaperSpec(gsm, bfDec, shade)
}

func parsePendingStatus(s string) (entities.PendingStatus, error) {
	switch s {
	case "Open":
		return entities.PendingOpen, nil
	case "Resolved":
		return entities.PendingResolved, nil
	default:
		return 0, fmt.Errorf("unknown pending status %q", s)
	}
}

func parseRemnantStatus(s string) (entities.RemnantStatus, error) {
	switch s {
	case "Available":
		return entities.RemnantAvailable, nil
	case "Allocated":
		return entities.RemnantAllocated, nil
	default:
		return 0, fmt.Errorf("unknown remnant status %q", s)
	}
}
