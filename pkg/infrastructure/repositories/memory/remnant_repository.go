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

// RemnantRepository is a thread-safe in-memory remnant store.
type RemnantRepository struct {
	mu       sync.RWMutex
	remnants map[uuid.UUID]*entities.Remnant
	maxSeq   int
}

var _ repositories.RemnantRepository = (*RemnantRepository)(nil)

// NewRemnantRepository creates an empty remnant store.
func NewRemnantRepository() *RemnantRepository {
	return &RemnantRepository{
		remnants: make(map[uuid.UUID]*entities.Remnant),
	}
}

// Available returns available remnants matching the key, heaviest first.
func (r *RemnantRepository) Available(spec entities.PaperSpec, width entities.Width) ([]*entities.Remnant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*entities.Remnant
	for _, rem := range r.remnants {
		if rem.Status == entities.RemnantAvailable && rem.Spec.Equal(spec) && rem.Width == width {
			c := *rem
			matches = append(matches, &c)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].WeightKG.Equal(matches[j].WeightKG) {
			return matches[i].WeightKG.GreaterThan(matches[j].WeightKG)
		}
		return matches[i].FrontendID < matches[j].FrontendID
	})
	return matches, nil
}

// Allocate marks a remnant as allocated to the given order.
func (r *RemnantRepository) Allocate(id uuid.UUID, orderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rem, exists := r.remnants[id]
	if !exists {
		return fmt.Errorf("remnant %s not found", id)
	}
	if rem.Status != entities.RemnantAvailable {
		return fmt.Errorf("remnant %s is %s, not available", rem.FrontendID, rem.Status)
	}
	rem.Status = entities.RemnantAllocated
	rem.AllocatedOrderID = orderID
	return nil
}

// Save stores a remnant, assigning its frontend identifier when unset.
func (r *RemnantRepository) Save(remnant *entities.Remnant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if remnant.FrontendID == "" {
		remnant.FrontendID = services.NextFrontendID(services.RemnantPrefix, r.maxSeq)
		r.maxSeq++
	} else if _, seq, err := services.ParseFrontendID(remnant.FrontendID); err == nil && seq > r.maxSeq {
		r.maxSeq = seq
	}
	c := *remnant
	r.remnants[remnant.ID] = &c
	return nil
}
