package sqlstore

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rollwise/cutplan/pkg/domain/entities"
	"github.com/rollwise/cutplan/pkg/domain/repositories"
	"github.com/rollwise/cutplan/pkg/domain/services"
)

// PendingStore is the SQLite-backed pending backlog.
type PendingStore struct {
	db *gorm.DB
}

var _ repositories.PendingRepository = (*PendingStore)(nil)

// NewPendingStore creates a store over an open database.
func NewPendingStore(db *gorm.DB) *PendingStore {
	return &PendingStore{db: db}
}

// OpenBySpec returns open units for the specification, oldest first.
func (s *PendingStore) OpenBySpec(spec entities.PaperSpec) ([]*entities.PendingUnit, error) {
	var records []PendingUnitRecord
	err := s.db.
		Where("gsm = ? AND bf = ? AND shade = ? AND status = ?",
			spec.GSM, spec.BF.StringFixed(1), spec.Shade, entities.PendingOpen.String()).
		Order("created_at ASC, frontend_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("querying pending units: %w", err)
	}
	return recordsToPending(records)
}

// OpenByKey returns the open unit for an exact key, or nil when none exists.
func (s *PendingStore) OpenByKey(spec entities.PaperSpec, width entities.Width, originOrderID uuid.UUID) (*entities.PendingUnit, error) {
	var rec PendingUnitRecord
	err := s.db.
		Where("gsm = ? AND bf = ? AND shade = ? AND width = ? AND origin_order_id = ? AND status = ?",
			spec.GSM, spec.BF.StringFixed(1), spec.Shade, int64(width),
			originOrderID.String(), entities.PendingOpen.String()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying pending unit: %w", err)
	}
	return recordToPending(rec)
}

// AllOpen returns every open unit, oldest first.
func (s *PendingStore) AllOpen() ([]*entities.PendingUnit, error) {
	var records []PendingUnitRecord
	err := s.db.
		Where("status = ?", entities.PendingOpen.String()).
		Order("created_at ASC, frontend_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("querying pending units: %w", err)
	}
	return recordsToPending(records)
}

// Save stores a new unit, assigning the next frontend identifier inside a
// transaction so concurrent saves cannot collide.
func (s *PendingStore) Save(unit *entities.PendingUnit) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if unit.FrontendID == "" {
			maxSeq, err := maxSequence(tx, &PendingUnitRecord{})
			if err != nil {
				return err
			}
			unit.FrontendID = services.NextFrontendID(services.PendingPrefix, maxSeq)
		}
		rec := pendingToRecord(unit)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("creating pending unit: %w", err)
		}
		return nil
	})
}

// Update persists quantity and status changes of an existing unit.
func (s *PendingStore) Update(unit *entities.PendingUnit) error {
	rec := pendingToRecord(unit)
	result := s.db.Model(&PendingUnitRecord{}).
		Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"quantity": rec.Quantity,
			"status":   rec.Status,
		})
	if result.Error != nil {
		return fmt.Errorf("updating pending unit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("pending unit %s not found", unit.ID)
	}
	return nil
}

func recordsToPending(records []PendingUnitRecord) ([]*entities.PendingUnit, error) {
	units := make([]*entities.PendingUnit, 0, len(records))
	for _, rec := range records {
		unit, err := recordToPending(rec)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}

// maxSequence reads the highest frontend sequence in a table. The zero-padded
// format makes lexical and numeric order agree.
func maxSequence(tx *gorm.DB, model interface{}) (int, error) {
	var top string
	err := tx.Model(model).
		Select("frontend_id").
		Order("frontend_id DESC").
		Limit(1).
		Scan(&top).Error
	if err != nil {
		return 0, fmt.Errorf("reading max frontend id: %w", err)
	}
	if top == "" {
		return 0, nil
	}
	_, seq, err := services.ParseFrontendID(top)
	if err != nil {
		return 0, err
	}
	return seq, nil
}
