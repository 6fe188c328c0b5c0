package services

import "testing"

func TestNextFrontendID(t *testing.T) {
	tests := []struct {
		prefix     string
		currentMax int
		want       string
	}{
		{PendingPrefix, 0, "PND-00001"},
		{PendingPrefix, 41, "PND-00042"},
		{RemnantPrefix, 99999, "WST-100000"},
		{JumboPrefix, -5, "JR-00001"},
	}

	for _, tt := range tests {
		if got := NextFrontendID(tt.prefix, tt.currentMax); got != tt.want {
			t.Errorf("NextFrontendID(%q, %d) = %q, want %q", tt.prefix, tt.currentMax, got, tt.want)
		}
	}
}

func TestParseFrontendID(t *testing.T) {
	prefix, seq, err := ParseFrontendID("PND-00042")
	if err != nil {
		t.Fatalf("ParseFrontendID: %v", err)
	}
	if prefix != "PND" || seq != 42 {
		t.Errorf("got %q %d, want PND 42", prefix, seq)
	}

	for _, bad := range []string{"", "PND42", "pnd-00042", "PND-", "-00042"} {
		if _, _, err := ParseFrontendID(bad); err == nil {
			t.Errorf("ParseFrontendID(%q): expected error", bad)
		}
	}
}

func TestNextFrontendIDRoundTrip(t *testing.T) {
	id := NextFrontendID(SetRollPrefix, 7)
	prefix, seq, err := ParseFrontendID(id)
	if err != nil {
		t.Fatalf("ParseFrontendID(%q): %v", id, err)
	}
	if prefix != SetRollPrefix || seq != 8 {
		t.Errorf("round trip gave %q %d", prefix, seq)
	}
}
