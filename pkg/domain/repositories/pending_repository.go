package repositories

import (
	"github.com/google/uuid"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// PendingRepository provides access to the pending-order backlog that
// spans planning cycles. The optimizer reads open units as extra demand
// and writes quantity deltas back through this interface; physical
// deletion and retention policy belong to the implementing store.
type PendingRepository interface {
	// OpenBySpec returns all open pending units for a paper specification,
	// across every originating order, ordered oldest first
	OpenBySpec(spec entities.PaperSpec) ([]*entities.PendingUnit, error)

	// OpenByKey returns the open pending unit for an exact (specification,
	// width, originating order) key, or nil when none exists
	OpenByKey(spec entities.PaperSpec, width entities.Width, originOrderID uuid.UUID) (*entities.PendingUnit, error)

	// AllOpen returns every open pending unit, ordered oldest first
	AllOpen() ([]*entities.PendingUnit, error)

	// Save persists a newly created pending unit
	Save(unit *entities.PendingUnit) error

	// Update persists quantity and status changes of an existing unit
	Update(unit *entities.PendingUnit) error
}
