// Package deferral maintains the pending backlog: residual demand a planning
// run could not pack is deferred as pending units, and production in a later
// run consumes the backlog oldest first.
package deferral

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rollwise/cutplan/pkg/domain/entities"
	"github.com/rollwise/cutplan/pkg/domain/repositories"
)

// Manager mediates between the planning engine and the pending store.
type Manager struct {
	pending repositories.PendingRepository
}

// New creates a Manager backed by the given repository.
func New(pending repositories.PendingRepository) (*Manager, error) {
	if pending == nil {
		return nil, entities.NewValidationError("pending", "repository is required")
	}
	return &Manager{pending: pending}, nil
}

// Delta describes one backlog change made by Defer.
type Delta struct {
	Unit    entities.PendingUnit
	Created bool // false when an existing open unit was grown
}

// Defer records residual demand as pending units. When an open unit already
// exists for the same specification, width and originating order, its
// quantity is increased instead of a new unit being created. Widths are
// processed in descending order so repeated runs produce units in a stable
// order.
func (m *Manager) Defer(spec entities.PaperSpec, residual map[entities.Width]int, originOrderID uuid.UUID, reason entities.PendingReason) ([]Delta, error) {
	widths := make([]entities.Width, 0, len(residual))
	for w, qty := range residual {
		if qty > 0 {
			widths = append(widths, w)
		}
	}
	sort.Slice(widths, func(i, j int) bool { return widths[i] > widths[j] })

	var deltas []Delta
	for _, w := range widths {
		qty := residual[w]
		existing, err := m.pending.OpenByKey(spec, w, originOrderID)
		if err != nil {
			return nil, fmt.Errorf("looking up pending unit: %w", err)
		}
		if existing != nil {
			if err := existing.Add(qty); err != nil {
				return nil, err
			}
			if err := m.pending.Update(existing); err != nil {
				return nil, fmt.Errorf("updating pending unit %s: %w", existing.ID, err)
			}
			deltas = append(deltas, Delta{Unit: *existing})
			continue
		}
		unit, err := entities.NewPendingUnit(spec, w, qty, originOrderID, reason)
		if err != nil {
			return nil, err
		}
		if err := m.pending.Save(unit); err != nil {
			return nil, fmt.Errorf("saving pending unit: %w", err)
		}
		deltas = append(deltas, Delta{Unit: *unit, Created: true})
	}
	return deltas, nil
}

// Consume applies produced rolls against the open backlog for one width,
// oldest unit first. It returns the units that changed and the quantity that
// found no open unit to satisfy.
func (m *Manager) Consume(spec entities.PaperSpec, width entities.Width, qty int) ([]entities.PendingUnit, int, error) {
	if qty < 0 {
		return nil, 0, entities.NewValidationError("qty", "cannot be negative, got %d", qty)
	}
	if qty == 0 {
		return nil, 0, nil
	}
	open, err := m.pending.OpenBySpec(spec)
	if err != nil {
		return nil, 0, fmt.Errorf("listing pending units: %w", err)
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})

	var changed []entities.PendingUnit
	for _, unit := range open {
		if qty == 0 {
			break
		}
		if unit.Width != width {
			continue
		}
		taken, err := unit.Consume(qty)
		if err != nil {
			return nil, 0, err
		}
		if taken == 0 {
			continue
		}
		qty -= taken
		if err := m.pending.Update(unit); err != nil {
			return nil, 0, fmt.Errorf("updating pending unit %s: %w", unit.ID, err)
		}
		changed = append(changed, *unit)
	}
	return changed, qty, nil
}

// OpenDemand aggregates the open backlog for one specification into demand
// items carrying a pending origin.
func (m *Manager) OpenDemand(spec entities.PaperSpec) ([]entities.DemandItem, error) {
	open, err := m.pending.OpenBySpec(spec)
	if err != nil {
		return nil, fmt.Errorf("listing pending units: %w", err)
	}
	return pendingToDemand(open)
}

// AllOpenDemand aggregates the entire open backlog into demand items.
func (m *Manager) AllOpenDemand() ([]entities.DemandItem, error) {
	open, err := m.pending.AllOpen()
	if err != nil {
		return nil, fmt.Errorf("listing pending units: %w", err)
	}
	return pendingToDemand(open)
}

func pendingToDemand(units []*entities.PendingUnit) ([]entities.DemandItem, error) {
	items := make([]entities.DemandItem, 0, len(units))
	for _, u := range units {
		item, err := entities.NewDemandItem(u.Spec, u.Width, u.Quantity, entities.Origin{
			Kind: entities.OriginPending,
			ID:   u.ID,
			Ref:  u.FrontendID,
		}, decimal.Zero)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}
