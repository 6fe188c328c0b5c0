package hierarchy

import (
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

func testSpec(t *testing.T) entities.PaperSpec {
	t.Helper()
	spec, err := entities.NewPaperSpec(120, decimal.RequireFromString("18.0"), "Natural")
	if err != nil {
		t.Fatalf("NewPaperSpec: %v", err)
	}
	return spec
}

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := New(entities.MustWidth("118.00"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func instanceOf(t *testing.T, repeat int, pieces ...string) entities.PatternInstance {
	t.Helper()
	ws := make([]entities.Width, len(pieces))
	for i, p := range pieces {
		ws[i] = entities.MustWidth(p)
	}
	pattern, err := entities.NewPattern(testSpec(t), ws, entities.MustWidth("118.00"))
	if err != nil {
		t.Fatalf("NewPattern: %v", err)
	}
	inst, err := entities.NewPatternInstance(*pattern, repeat)
	if err != nil {
		t.Fatalf("NewPatternInstance: %v", err)
	}
	return *inst
}

func countKinds(nodes []entities.RollNode) (jumbos, sets, cuts int) {
	for _, n := range nodes {
		switch n.Kind {
		case entities.JumboRoll:
			jumbos++
		case entities.SetRoll:
			sets++
		case entities.CutRoll:
			cuts++
		}
	}
	return jumbos, sets, cuts
}

func TestBuildGroupsSetsInThrees(t *testing.T) {
	b := testBuilder(t)
	instances := []entities.PatternInstance{
		instanceOf(t, 6, "28.00", "28.00", "28.00", "28.00"),
	}

	nodes, err := b.Build(testSpec(t), instances)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	jumbos, sets, cuts := countKinds(nodes)
	if jumbos != 2 || sets != 6 || cuts != 24 {
		t.Errorf("got %d jumbos %d sets %d cuts, want 2/6/24", jumbos, sets, cuts)
	}
	if err := entities.ValidateHierarchy(nodes, entities.MustWidth("118.00")); err != nil {
		t.Errorf("ValidateHierarchy: %v", err)
	}
}

func TestBuildFinalJumboMayRunShort(t *testing.T) {
	b := testBuilder(t)
	instances := []entities.PatternInstance{
		instanceOf(t, 7, "28.00", "28.00", "28.00", "28.00"),
	}

	nodes, err := b.Build(testSpec(t), instances)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	jumbos, sets, _ := countKinds(nodes)
	if jumbos != 3 {
		t.Errorf("7 set rolls need 3 jumbos, got %d", jumbos)
	}
	if sets != 7 {
		t.Errorf("sets = %d, want 7", sets)
	}

	// The last jumbo carries exactly one set roll with sequence 1.
	lastJumbo := nodes[len(nodes)-6] // jumbo, set, 4 cuts
	if lastJumbo.Kind != entities.JumboRoll {
		t.Fatalf("expected trailing jumbo node, got %s", lastJumbo.Kind)
	}
	children := 0
	for _, n := range nodes {
		if n.Kind == entities.SetRoll && n.ParentID == lastJumbo.ID {
			children++
			if n.Sequence != 1 {
				t.Errorf("lone set roll sequence = %d, want 1", n.Sequence)
			}
		}
	}
	if children != 1 {
		t.Errorf("final jumbo has %d set rolls, want 1", children)
	}
}

func TestBuildPreservesInstanceOrder(t *testing.T) {
	b := testBuilder(t)
	instances := []entities.PatternInstance{
		instanceOf(t, 1, "30.00", "30.00", "30.00", "28.00"),
		instanceOf(t, 2, "25.00", "25.00", "25.00", "25.00"),
	}

	nodes, err := b.Build(testSpec(t), instances)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var setTrims []entities.Width
	for _, n := range nodes {
		if n.Kind == entities.SetRoll {
			setTrims = append(setTrims, n.Trim)
		}
	}
	want := []entities.Width{0, entities.MustWidth("18.00"), entities.MustWidth("18.00")}
	if len(setTrims) != len(want) {
		t.Fatalf("set rolls = %d, want %d", len(setTrims), len(want))
	}
	for i := range want {
		if setTrims[i] != want[i] {
			t.Errorf("set %d trim = %s, want %s", i, setTrims[i], want[i])
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	nodes, err := testBuilder(t).Build(testSpec(t), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if nodes != nil {
		t.Errorf("expected no nodes, got %d", len(nodes))
	}
}

func TestJumboCount(t *testing.T) {
	tests := []struct{ sets, want int }{
		{0, 0}, {1, 1}, {3, 1}, {4, 2}, {43, 15},
	}
	for _, tt := range tests {
		if got := JumboCount(tt.sets); got != tt.want {
			t.Errorf("JumboCount(%d) = %d, want %d", tt.sets, got, tt.want)
		}
	}
}
