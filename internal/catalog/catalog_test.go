package catalog

import (
	"testing"

	"github.com/fpltools/gwrecap/internal/model"
)

const sampleBootstrap = `{
  "elements": [
    {"id": 1, "first_name": "Alisson", "second_name": "Becker", "web_name": "Alisson", "element_type": 1, "event_points": 6},
    {"id": 2, "first_name": "Virgil", "second_name": "van Dijk", "web_name": "", "element_type": 2, "event_points": 9},
    {"id": 3, "web_name": "Salah", "element_type": 3, "event_points": 13}
  ]
}`

func TestParse_BuildsIndex(t *testing.T) {
	idx, err := Parse(4, []byte(sampleBootstrap))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if idx.Gameweek() != 4 {
		t.Errorf("Gameweek = %d, want 4", idx.Gameweek())
	}
	if idx.Len() != 3 {
		t.Errorf("Len = %d, want 3", idx.Len())
	}

	e := idx.Lookup(3)
	if e.Name != "Salah" || e.Position != model.PositionMidfielder || e.GameweekPoints != 13 {
		t.Errorf("Lookup(3) = %+v", e)
	}
}

func TestParse_NameFallsBackToFullName(t *testing.T) {
	idx, err := Parse(1, []byte(sampleBootstrap))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := idx.Lookup(2).Name; got != "Virgil van Dijk" {
		t.Errorf("Lookup(2).Name = %q, want full name fallback", got)
	}
}

func TestLookup_AbsentReturnsSentinel(t *testing.T) {
	idx, err := Parse(1, []byte(sampleBootstrap))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	e := idx.Lookup(999)
	if !e.Unknown {
		t.Error("Lookup(999).Unknown = false, want sentinel")
	}
	if e.Name != "Unknown Player" {
		t.Errorf("sentinel Name = %q, want %q", e.Name, "Unknown Player")
	}
	if e.GameweekPoints != 0 {
		t.Errorf("sentinel GameweekPoints = %d, want 0", e.GameweekPoints)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse(1, []byte(`{"elements": "nope"}`)); err == nil {
		t.Error("Parse accepted a malformed catalog")
	}
	if _, err := Parse(1, []byte(`{"elements": []}`)); err == nil {
		t.Error("Parse accepted an empty catalog")
	}
}
