package entities

import (
	"testing"

	"github.com/google/uuid"
)

func TestPendingUnitLifecycle(t *testing.T) {
	unit, err := NewPendingUnit(testSpec(t), MustWidth("23.50"), 15, uuid.New(), NoMatchingPattern)
	if err != nil {
		t.Fatalf("NewPendingUnit: %v", err)
	}
	if unit.Status != PendingOpen {
		t.Fatalf("new unit status = %s, want Open", unit.Status)
	}

	taken, err := unit.Consume(1)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if taken != 1 || unit.Quantity != 14 {
		t.Errorf("after Consume(1): taken %d quantity %d", taken, unit.Quantity)
	}
	if unit.Status != PendingOpen {
		t.Error("unit should stay open while quantity remains")
	}

	taken, err = unit.Consume(50)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if taken != 14 {
		t.Errorf("Consume(50) took %d, want 14", taken)
	}
	if unit.Status != PendingResolved {
		t.Error("unit should resolve at zero quantity")
	}

	if _, err := unit.Consume(1); err == nil {
		t.Error("expected error consuming a resolved unit")
	}
}

func TestPendingUnitAdd(t *testing.T) {
	unit, err := NewPendingUnit(testSpec(t), MustWidth("23.50"), 10, uuid.New(), InsufficientEfficiency)
	if err != nil {
		t.Fatalf("NewPendingUnit: %v", err)
	}
	if err := unit.Add(5); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if unit.Quantity != 15 {
		t.Errorf("quantity = %d, want 15", unit.Quantity)
	}
	if err := unit.Add(0); err == nil {
		t.Error("expected error adding zero")
	}
}

func TestParsePendingReasonRoundTrip(t *testing.T) {
	for _, reason := range []PendingReason{InsufficientEfficiency, NoMatchingPattern} {
		parsed, err := ParsePendingReason(reason.String())
		if err != nil {
			t.Errorf("ParsePendingReason(%q): %v", reason, err)
		}
		if parsed != reason {
			t.Errorf("round trip %q -> %q", reason, parsed)
		}
	}
	if _, err := ParsePendingReason("bogus"); err == nil {
		t.Error("expected error for unknown reason")
	}
}

func TestNewPendingUnitValidation(t *testing.T) {
	if _, err := NewPendingUnit(testSpec(t), 0, 5, uuid.New(), NoMatchingPattern); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := NewPendingUnit(testSpec(t), MustWidth("23.50"), 0, uuid.New(), NoMatchingPattern); err == nil {
		t.Error("expected error for zero quantity")
	}
}
