package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadDemand(t *testing.T) {
	path := writeTemp(t, "demand.csv",
		"order_id,width,quantity,gsm,bf,shade,min_length\n"+
			"ORD-00017,25.00,62,120,18.0,Natural,1500\n"+
			"ORD-00017,23.5,15,120,18.0,Natural,\n")

	items, err := NewLoader().LoadDemand(path)
	if err != nil {
		t.Fatalf("LoadDemand: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Width != entities.MustWidth("25.00") || items[0].Quantity != 62 {
		t.Errorf("first item = %s x%d", items[0].Width, items[0].Quantity)
	}
	if items[0].Origin.Kind != entities.OriginOrder || items[0].Origin.Ref != "ORD-00017" {
		t.Errorf("origin = %+v", items[0].Origin)
	}
	if items[1].Width != entities.MustWidth("23.50") {
		t.Errorf("second width = %s, want 23.50", items[1].Width)
	}
	if !items[1].MinLength.IsZero() {
		t.Errorf("blank min_length should parse as zero, got %s", items[1].MinLength)
	}
	// Same order reference maps to the same origin ID.
	if items[0].Origin.ID != items[1].Origin.ID {
		t.Error("identical order_id must produce identical origin IDs")
	}
}

func TestLoadDemandHeaderMismatch(t *testing.T) {
	path := writeTemp(t, "demand.csv", "width,quantity\n25.00,62\n")
	if _, err := NewLoader().LoadDemand(path); err == nil {
		t.Error("expected header mismatch error")
	}
}

func TestLoadDemandBadRowReportsLine(t *testing.T) {
	path := writeTemp(t, "demand.csv",
		"order_id,width,quantity,gsm,bf,shade,min_length\n"+
			"ORD-00017,25.00,62,120,18.0,Natural,1500\n"+
			"ORD-00017,oops,15,120,18.0,Natural,\n")

	_, err := NewLoader().LoadDemand(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "row 3") {
		t.Errorf("error should name the failing row: %v", err)
	}
}

func TestLoadRemnants(t *testing.T) {
	path := writeTemp(t, "remnants.csv",
		"source_order_id,width,weight_kg,gsm,bf,shade\n"+
			"ORD-00012,28.00,120.5,120,18.0,Natural\n")

	remnants, err := NewLoader().LoadRemnants(path)
	if err != nil {
		t.Fatalf("LoadRemnants: %v", err)
	}

	if len(remnants) != 1 {
		t.Fatalf("remnants = %d, want 1", len(remnants))
	}
	rem := remnants[0]
	if rem.Width != entities.MustWidth("28.00") {
		t.Errorf("width = %s", rem.Width)
	}
	if rem.WeightKG.String() != "120.5" {
		t.Errorf("weight = %s", rem.WeightKG)
	}
	if rem.Status != entities.RemnantAvailable {
		t.Errorf("status = %s, want Available", rem.Status)
	}
}

func TestLoadDemandMissingFile(t *testing.T) {
	if _, err := NewLoader().LoadDemand("/nonexistent/demand.csv"); err == nil {
		t.Error("expected error for missing file")
	}
}
