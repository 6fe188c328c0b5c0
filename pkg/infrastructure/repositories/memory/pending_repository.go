// Package memory provides in-memory repository implementations used by
// tests and by planning runs that do not need persistence.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rollwise/cutplan/pkg/domain/entities"
	"github.com/rollwise/cutplan/pkg/domain/repositories"
	"github.com/rollwise/cutplan/pkg/domain/services"
)

// PendingRepository is a thread-safe in-memory pending backlog.
type PendingRepository struct {
	mu     sync.RWMutex
	units  map[uuid.UUID]*entities.PendingUnit
	maxSeq int
}

var _ repositories.PendingRepository = (*PendingRepository)(nil)

// NewPendingRepository creates an empty backlog store.
func NewPendingRepository() *PendingRepository {
	return &PendingRepository{
		units: make(map[uuid.UUID]*entities.PendingUnit),
	}
}

// OpenBySpec returns open units for the specification, oldest first.
func (r *PendingRepository) OpenBySpec(spec entities.PaperSpec) ([]*entities.PendingUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var open []*entities.PendingUnit
	for _, unit := range r.units {
		if unit.Status == entities.PendingOpen && unit.Spec.Equal(spec) {
			open = append(open, copyUnit(unit))
		}
	}
	sortOldestFirst(open)
	return open, nil
}

// OpenByKey returns the open unit for an exact key, or nil when none exists.
func (r *PendingRepository) OpenByKey(spec entities.PaperSpec, width entities.Width, originOrderID uuid.UUID) (*entities.PendingUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, unit := range r.units {
		if unit.Status == entities.PendingOpen &&
			unit.Spec.Equal(spec) &&
			unit.Width == width &&
			unit.OriginOrderID == originOrderID {
			return copyUnit(unit), nil
		}
	}
	return nil, nil
}

// AllOpen returns every open unit, oldest first.
func (r *PendingRepository) AllOpen() ([]*entities.PendingUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var open []*entities.PendingUnit
	for _, unit := range r.units {
		if unit.Status == entities.PendingOpen {
			open = append(open, copyUnit(unit))
		}
	}
	sortOldestFirst(open)
	return open, nil
}

// Save stores a new unit, assigning its frontend identifier.
func (r *PendingRepository) Save(unit *entities.PendingUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.units[unit.ID]; exists {
		return fmt.Errorf("pending unit %s already exists", unit.ID)
	}
	if unit.FrontendID == "" {
		unit.FrontendID = services.NextFrontendID(services.PendingPrefix, r.maxSeq)
		r.maxSeq++
	} else if _, seq, err := services.ParseFrontendID(unit.FrontendID); err == nil && seq > r.maxSeq {
		r.maxSeq = seq
	}
	r.units[unit.ID] = copyUnit(unit)
	return nil
}

// Update overwrites an existing unit's mutable state.
func (r *PendingRepository) Update(unit *entities.PendingUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.units[unit.ID]; !exists {
		return fmt.Errorf("pending unit %s not found", unit.ID)
	}
	r.units[unit.ID] = copyUnit(unit)
	return nil
}

func copyUnit(unit *entities.PendingUnit) *entities.PendingUnit {
	c := *unit
	return &c
}

func sortOldestFirst(units []*entities.PendingUnit) {
	sort.Slice(units, func(i, j int) bool {
		if !units[i].CreatedAt.Equal(units[j].CreatedAt) {
			return units[i].CreatedAt.Before(units[j].CreatedAt)
		}
		return units[i].FrontendID < units[j].FrontendID
	})
}
