package entities

import (
	"errors"
	"testing"
)

func buildValidHierarchy(t *testing.T) []RollNode {
	t.Helper()
	spec := testSpec(t)
	rollWidth := MustWidth("118.00")

	jumbo := NewJumbo(spec, rollWidth)
	nodes := []RollNode{jumbo}
	for seq := 1; seq <= 3; seq++ {
		set := NewSetRoll(jumbo.ID, seq, spec, rollWidth, MustWidth("6.00"))
		nodes = append(nodes, set)
		for i := 0; i < 4; i++ {
			nodes = append(nodes, NewCutRoll(set.ID, spec, MustWidth("28.00")))
		}
	}
	return nodes
}

func TestValidateHierarchyAccepts(t *testing.T) {
	nodes := buildValidHierarchy(t)
	if err := ValidateHierarchy(nodes, MustWidth("118.00")); err != nil {
		t.Errorf("ValidateHierarchy: %v", err)
	}
}

func TestValidateHierarchyDuplicateSequence(t *testing.T) {
	nodes := buildValidHierarchy(t)
	for i := range nodes {
		if nodes[i].Kind == SetRoll {
			nodes[i].Sequence = 1
		}
	}
	err := ValidateHierarchy(nodes, MustWidth("118.00"))
	if err == nil {
		t.Fatal("expected duplicate sequence error")
	}
	var cErr *ConsistencyError
	if !errors.As(err, &cErr) {
		t.Errorf("expected *ConsistencyError, got %T", err)
	}
}

func TestValidateHierarchyOrphanCutRoll(t *testing.T) {
	spec := testSpec(t)
	jumbo := NewJumbo(spec, MustWidth("118.00"))
	set := NewSetRoll(jumbo.ID, 1, spec, MustWidth("118.00"), MustWidth("0.00"))
	orphan := NewCutRoll(jumbo.ID, spec, MustWidth("28.00")) // parent is a jumbo

	err := ValidateHierarchy([]RollNode{jumbo, set, orphan}, MustWidth("118.00"))
	if err == nil {
		t.Fatal("expected orphan cut roll error")
	}
}

func TestValidateHierarchyTrimMismatch(t *testing.T) {
	spec := testSpec(t)
	rollWidth := MustWidth("118.00")
	jumbo := NewJumbo(spec, rollWidth)
	// Cuts total 112.00 but trim says 1.00.
	set := NewSetRoll(jumbo.ID, 1, spec, rollWidth, MustWidth("1.00"))
	nodes := []RollNode{jumbo, set}
	for i := 0; i < 4; i++ {
		nodes = append(nodes, NewCutRoll(set.ID, spec, MustWidth("28.00")))
	}

	if err := ValidateHierarchy(nodes, rollWidth); err == nil {
		t.Fatal("expected trim reconciliation error")
	}
}

func TestValidateHierarchyEmptyJumbo(t *testing.T) {
	jumbo := NewJumbo(testSpec(t), MustWidth("118.00"))
	if err := ValidateHierarchy([]RollNode{jumbo}, MustWidth("118.00")); err == nil {
		t.Fatal("expected error for jumbo without set rolls")
	}
}
