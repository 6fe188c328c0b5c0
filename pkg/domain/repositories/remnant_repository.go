package repositories

import (
	"github.com/google/uuid"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// RemnantRepository provides access to already-cut remnant inventory that
// can substitute for demand before fresh cutting is planned
type RemnantRepository interface {
	// Available returns available remnants matching the specification and
	// width, ordered heaviest first
	Available(spec entities.PaperSpec, width entities.Width) ([]*entities.Remnant, error)

	// Allocate marks a remnant as allocated to the given order
	Allocate(id uuid.UUID, orderID uuid.UUID) error

	// Save persists a remnant roll
	Save(remnant *entities.Remnant) error
}
