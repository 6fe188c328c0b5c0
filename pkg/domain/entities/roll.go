package entities

import (
	"github.com/google/uuid"
)

// SetRollsPerJumbo is the machine constraint: one jumbo roll is slit into
// exactly three intermediate set rolls. Only the final jumbo of a group may
// carry fewer when the set-roll count is not a multiple of three.
const SetRollsPerJumbo = 3

// RollKind identifies a level of the physical roll hierarchy
type RollKind int

const (
	JumboRoll RollKind = iota
	SetRoll
	CutRoll
)

// String method for RollKind enum
func (k RollKind) String() string {
	switch k {
	case JumboRoll:
		return "Jumbo"
	case SetRoll:
		return "SetRoll"
	case CutRoll:
		return "CutRoll"
	default:
		return "Unknown"
	}
}

// RollNode is one node of the jumbo / set roll / cut roll hierarchy. The
// three kinds form a closed tagged union: field meaning depends on Kind.
type RollNode struct {
	ID       uuid.UUID
	Kind     RollKind
	Spec     PaperSpec
	ParentID uuid.UUID // zero for jumbo rolls
	Sequence int       // set rolls: position 1..3 under the parent jumbo
	Width    Width     // cut rolls: finished width; jumbo/set rolls: full roll width
	Trim     Width     // set rolls: leftover width after all cuts
}

// NewJumbo creates a jumbo roll node
func NewJumbo(spec PaperSpec, rollWidth Width) RollNode {
	return RollNode{
		ID:    uuid.New(),
		Kind:  JumboRoll,
		Spec:  spec,
		Width: rollWidth,
	}
}

// NewSetRoll creates an intermediate set roll under the given jumbo
func NewSetRoll(parent uuid.UUID, sequence int, spec PaperSpec, rollWidth, trim Width) RollNode {
	return RollNode{
		ID:       uuid.New(),
		Kind:     SetRoll,
		Spec:     spec,
		ParentID: parent,
		Sequence: sequence,
		Width:    rollWidth,
		Trim:     trim,
	}
}

// NewCutRoll creates a finished cut roll under the given set roll
func NewCutRoll(parent uuid.UUID, spec PaperSpec, width Width) RollNode {
	return RollNode{
		ID:       uuid.New(),
		Kind:     CutRoll,
		Spec:     spec,
		ParentID: parent,
		Width:    width,
	}
}

// ValidateHierarchy checks the structural invariants of a built roll
// hierarchy: parent links resolve to the right kind, jumbos carry 1..3 set
// rolls with distinct sequences, and no set roll's cuts exceed the roll
// width. A violation means the selector or builder produced a defective
// result and is reported as a *ConsistencyError.
func ValidateHierarchy(nodes []RollNode, rollWidth Width) error {
	jumbos := make(map[uuid.UUID]bool)
	sets := make(map[uuid.UUID]*RollNode)

	for i := range nodes {
		n := &nodes[i]
		switch n.Kind {
		case JumboRoll:
			jumbos[n.ID] = true
		case SetRoll:
			sets[n.ID] = n
		}
	}

	setChildren := make(map[uuid.UUID]int)
	setUsed := make(map[uuid.UUID]Width)
	setSequences := make(map[uuid.UUID]map[int]bool)

	for i := range nodes {
		n := &nodes[i]
		switch n.Kind {
		case JumboRoll:
			if n.ParentID != uuid.Nil {
				return NewConsistencyError("jumbo %s has a parent", n.ID)
			}
		case SetRoll:
			if !jumbos[n.ParentID] {
				return NewConsistencyError("set roll %s parent %s is not a jumbo", n.ID, n.ParentID)
			}
			if n.Sequence < 1 || n.Sequence > SetRollsPerJumbo {
				return NewConsistencyError("set roll %s sequence %d outside 1..%d", n.ID, n.Sequence, SetRollsPerJumbo)
			}
			seqs := setSequences[n.ParentID]
			if seqs == nil {
				seqs = make(map[int]bool)
				setSequences[n.ParentID] = seqs
			}
			if seqs[n.Sequence] {
				return NewConsistencyError("jumbo %s has duplicate set roll sequence %d", n.ParentID, n.Sequence)
			}
			seqs[n.Sequence] = true
			setChildren[n.ParentID]++
		case CutRoll:
			if sets[n.ParentID] == nil {
				return NewConsistencyError("cut roll %s parent %s is not a set roll", n.ID, n.ParentID)
			}
			setUsed[n.ParentID] += n.Width
		}
	}

	for jumboID, count := range setChildren {
		if count > SetRollsPerJumbo {
			return NewConsistencyError("jumbo %s has %d set rolls, maximum is %d", jumboID, count, SetRollsPerJumbo)
		}
	}
	for jumboID := range jumbos {
		if setChildren[jumboID] == 0 {
			return NewConsistencyError("jumbo %s has no set rolls", jumboID)
		}
	}

	for setID, used := range setUsed {
		if used > rollWidth {
			return NewConsistencyError("set roll %s cuts total %s, exceeding roll width %s", setID, used, rollWidth)
		}
		if set := sets[setID]; set != nil && used+set.Trim != rollWidth {
			return NewConsistencyError("set roll %s used %s + trim %s does not reconcile to roll width %s",
				setID, used, set.Trim, rollWidth)
		}
	}

	return nil
}
