package sqlstore

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rollwise/cutplan/pkg/domain/entities"
	"github.com/rollwise/cutplan/pkg/domain/repositories"
	"github.com/rollwise/cutplan/pkg/domain/services"
)

// RemnantStore is the SQLite-backed remnant inventory.
type RemnantStore struct {
	db *gorm.DB
}

var _ repositories.RemnantRepository = (*RemnantStore)(nil)

// NewRemnantStore creates a store over an open database.
func NewRemnantStore(db *gorm.DB) *RemnantStore {
	return &RemnantStore{db: db}
}

// Available returns available remnants matching the key. Weight is stored
// as text, so ordering happens after decoding.
func (s *RemnantStore) Available(spec entities.PaperSpec, width entities.Width) ([]*entities.Remnant, error) {
	var records []RemnantRecord
	err := s.db.
		Where("gsm = ? AND bf = ? AND shade = ? AND width = ? AND status = ?",
			spec.GSM, spec.BF.StringFixed(1), spec.Shade, int64(width),
			entities.RemnantAvailable.String()).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("querying remnants: %w", err)
	}
	remnants := make([]*entities.Remnant, 0, len(records))
	for _, rec := range records {
		rem, err := recordToRemnant(rec)
		if err != nil {
			return nil, err
		}
		remnants = append(remnants, rem)
	}
	sortHeaviestFirst(remnants)
	return remnants, nil
}

// Allocate marks a remnant as allocated to the given order.
func (s *RemnantStore) Allocate(id uuid.UUID, orderID uuid.UUID) error {
	result := s.db.Model(&RemnantRecord{}).
		Where("id = ? AND status = ?", id.String(), entities.RemnantAvailable.String()).
		Updates(map[string]interface{}{
			"status":             entities.RemnantAllocated.String(),
			"allocated_order_id": orderID.String(),
		})
	if result.Error != nil {
		return fmt.Errorf("allocating remnant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("remnant %s not found or not available", id)
	}
	return nil
}

// Save stores a remnant, assigning the next frontend identifier when unset.
func (s *RemnantStore) Save(remnant *entities.Remnant) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if remnant.FrontendID == "" {
			maxSeq, err := maxSequence(tx, &RemnantRecord{})
			if err != nil {
				return err
			}
			remnant.FrontendID = services.NextFrontendID(services.RemnantPrefix, maxSeq)
		}
		rec := remnantToRecord(remnant)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("creating remnant: %w", err)
		}
		return nil
	})
}

func sortHeaviestFirst(remnants []*entities.Remnant) {
	sort.Slice(remnants, func(i, j int) bool {
		if !remnants[i].WeightKG.Equal(remnants[j].WeightKG) {
			return remnants[i].WeightKG.GreaterThan(remnants[j].WeightKG)
		}
		return remnants[i].FrontendID < remnants[j].FrontendID
	})
}
