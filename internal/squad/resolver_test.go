package squad

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/fpltools/gwrecap/internal/catalog"
	"github.com/fpltools/gwrecap/internal/model"
)

// testIndex builds a catalog index where each player id maps to the given
// gameweek points, positions cycling GK/DEF/MID/FWD by id unless overridden.
func testIndex(t *testing.T, gw int, points map[int]int, positions map[int]int) *catalog.Index {
	t.Helper()
	type elem struct {
		ID          int    `json:"id"`
		WebName     string `json:"web_name"`
		ElementType int    `json:"element_type"`
		EventPoints int    `json:"event_points"`
	}
	elems := make([]elem, 0, len(points))
	for id, pts := range points {
		pos := (id % 4) + 1
		if p, ok := positions[id]; ok {
			pos = p
		}
		elems = append(elems, elem{ID: id, WebName: fmt.Sprintf("P%d", id), ElementType: pos, EventPoints: pts})
	}
	raw, err := json.Marshal(map[string]any{"elements": elems})
	if err != nil {
		t.Fatal(err)
	}
	idx, err := catalog.Parse(gw, raw)
	if err != nil {
		t.Fatalf("catalog.Parse error: %v", err)
	}
	return idx
}

// fullSquad builds a 15-pick squad: 11 starters (ids 1..11, multiplier 1,
// captain id 1 with multiplier 2) and 4 bench picks (ids 12..15).
func fullSquad() model.ManagerSquad {
	sq := model.ManagerSquad{ManagerID: 7, Gameweek: 2}
	for id := 1; id <= 11; id++ {
		mult := 1
		role := model.RoleNone
		if id == 1 {
			mult = 2
			role = model.RoleCaptain
		}
		sq.Picks = append(sq.Picks, model.Pick{PlayerID: id, Multiplier: mult, Role: role})
	}
	for id := 12; id <= 15; id++ {
		sq.Picks = append(sq.Picks, model.Pick{PlayerID: id, Multiplier: 0})
	}
	return sq
}

func uniformPoints(n, pts int) map[int]int {
	out := make(map[int]int, n)
	for id := 1; id <= n; id++ {
		out[id] = pts
	}
	return out
}

func TestResolve_StartingBenchSplit(t *testing.T) {
	idx := testIndex(t, 2, uniformPoints(15, 2), nil)
	res := Resolve(fullSquad(), idx)

	if len(res.Starting)+len(res.Bench) != 15 {
		t.Errorf("starting+bench = %d, want 15", len(res.Starting)+len(res.Bench))
	}
	if len(res.Bench) != 4 {
		t.Errorf("bench len = %d, want 4", len(res.Bench))
	}
	for _, p := range res.Bench {
		if p.Pick.Multiplier != 0 {
			t.Errorf("bench pick %d has multiplier %d, want 0", p.Pick.PlayerID, p.Pick.Multiplier)
		}
	}
}

func TestResolve_CaptainDoubled(t *testing.T) {
	idx := testIndex(t, 2, uniformPoints(15, 3), nil)
	res := Resolve(fullSquad(), idx)

	if res.Captain == nil {
		t.Fatal("Captain = nil, want pick 1")
	}
	if res.Captain.Pick.PlayerID != 1 {
		t.Errorf("Captain player = %d, want 1", res.Captain.Pick.PlayerID)
	}
	if res.Captain.EffectivePoints != 6 {
		t.Errorf("Captain effective points = %d, want 6 (3 x2)", res.Captain.EffectivePoints)
	}
	if res.CaptainNote != "" {
		t.Errorf("CaptainNote = %q, want empty for nominal captain", res.CaptainNote)
	}
}

func TestResolve_ViceSteppedUp(t *testing.T) {
	// The nominal captain was benched; the vice carries the active
	// multiplier even though is_captain was false on the wire.
	sq := fullSquad()
	sq.Picks[0].Multiplier = 1
	sq.Picks[0].Role = model.RoleNone
	sq.Picks[1].Multiplier = 2
	sq.Picks[1].Role = model.RoleVice

	idx := testIndex(t, 2, uniformPoints(15, 4), nil)
	res := Resolve(sq, idx)

	if res.Captain == nil {
		t.Fatal("Captain = nil, want the vice captain")
	}
	if res.Captain.Pick.PlayerID != 2 {
		t.Errorf("Captain player = %d, want 2", res.Captain.Pick.PlayerID)
	}
	if res.CaptainNote != NoteViceSteppedUp {
		t.Errorf("CaptainNote = %q, want %q", res.CaptainNote, NoteViceSteppedUp)
	}
}

func TestResolve_NoCaptainPlayed(t *testing.T) {
	// Neither armband holder carries an active multiplier: valid outcome,
	// not an error.
	sq := fullSquad()
	sq.Picks[0].Multiplier = 1

	idx := testIndex(t, 2, uniformPoints(15, 4), nil)
	res := Resolve(sq, idx)

	if res.Captain != nil {
		t.Errorf("Captain = %+v, want nil", res.Captain)
	}
	if res.CaptainNote != NoteNoCaptainPlay {
		t.Errorf("CaptainNote = %q, want %q", res.CaptainNote, NoteNoCaptainPlay)
	}
}

func TestResolve_TripleCaptainBeatsDouble(t *testing.T) {
	// Under 3xc the captain carries multiplier 3; a stray multiplier-2
	// pick must not win the captaincy.
	sq := fullSquad()
	sq.ActiveChip = model.ChipTripleCaptain
	sq.Picks[2].Multiplier = 2
	sq.Picks[0].Multiplier = 3

	idx := testIndex(t, 2, uniformPoints(15, 5), nil)
	res := Resolve(sq, idx)

	if res.Captain == nil || res.Captain.Pick.PlayerID != 1 {
		t.Fatalf("Captain = %+v, want player 1 (multiplier 3)", res.Captain)
	}
	if res.Captain.EffectivePoints != 15 {
		t.Errorf("Captain effective points = %d, want 15 (5 x3)", res.Captain.EffectivePoints)
	}
}

func TestResolve_CaptainTieBreakPrefersFlaggedCaptain(t *testing.T) {
	// Two multiplier-2 picks (malformed but seen in the wild): the one
	// flagged captain wins even when it appears later.
	sq := fullSquad()
	sq.Picks[0].Multiplier = 1
	sq.Picks[0].Role = model.RoleNone
	sq.Picks[3].Multiplier = 2
	sq.Picks[3].Role = model.RoleVice
	sq.Picks[5].Multiplier = 2
	sq.Picks[5].Role = model.RoleCaptain

	idx := testIndex(t, 2, uniformPoints(15, 1), nil)
	res := Resolve(sq, idx)

	if res.Captain == nil || res.Captain.Pick.PlayerID != 6 {
		t.Fatalf("Captain = %+v, want player 6 (flagged captain)", res.Captain)
	}
}

func TestResolve_BenchPointsAreRaw(t *testing.T) {
	// Bench waste is what the benched players scored raw, despite their
	// zero multiplier.
	points := uniformPoints(15, 0)
	points[12] = 6
	points[14] = 2
	idx := testIndex(t, 2, points, nil)

	res := Resolve(fullSquad(), idx)

	if res.BenchPoints != 8 {
		t.Errorf("BenchPoints = %d, want 8", res.BenchPoints)
	}
}

func TestResolve_PositionTotals(t *testing.T) {
	points := uniformPoints(15, 0)
	points[1] = 5 // captain, doubled
	points[2] = 3
	positions := map[int]int{1: 1, 2: 4} // GK and FWD
	for id := 3; id <= 15; id++ {
		positions[id] = 3
	}
	idx := testIndex(t, 2, points, positions)

	res := Resolve(fullSquad(), idx)

	if got := res.PositionTotals[model.PositionGoalkeeper]; got != 10 {
		t.Errorf("GK total = %d, want 10 (5 x2 captain)", got)
	}
	if got := res.PositionTotals[model.PositionForward]; got != 3 {
		t.Errorf("FWD total = %d, want 3", got)
	}
}

func TestResolve_UnknownPickDegrades(t *testing.T) {
	// A pick missing from the catalog contributes 0 points and a count,
	// never an abort.
	points := uniformPoints(15, 2)
	delete(points, 5)
	idx := testIndex(t, 2, points, nil)

	res := Resolve(fullSquad(), idx)

	if res.UnknownPicks != 1 {
		t.Errorf("UnknownPicks = %d, want 1", res.UnknownPicks)
	}
	for _, p := range res.Starting {
		if p.Pick.PlayerID == 5 {
			if p.EffectivePoints != 0 {
				t.Errorf("unknown pick effective points = %d, want 0", p.EffectivePoints)
			}
			if p.Player.Name != "Unknown Player" {
				t.Errorf("unknown pick name = %q, want sentinel", p.Player.Name)
			}
		}
	}
}

func TestResolve_BenchBoostHasNoBenchWaste(t *testing.T) {
	// With bboost every pick starts; there is no bench to waste points on.
	sq := fullSquad()
	sq.ActiveChip = model.ChipBenchBoost
	for i := 11; i < 15; i++ {
		sq.Picks[i].Multiplier = 1
	}

	idx := testIndex(t, 2, uniformPoints(15, 3), nil)
	res := Resolve(sq, idx)

	if len(res.Bench) != 0 {
		t.Errorf("bench len = %d, want 0 under bench boost", len(res.Bench))
	}
	if res.BenchPoints != 0 {
		t.Errorf("BenchPoints = %d, want 0 under bench boost", res.BenchPoints)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	idx := testIndex(t, 2, uniformPoints(15, 4), nil)
	sq := fullSquad()
	sq.Picks[0].Multiplier = 1
	sq.Picks[0].Role = model.RoleNone
	sq.Picks[1].Multiplier = 2
	sq.Picks[1].Role = model.RoleVice

	first := Resolve(sq, idx)
	second := Resolve(sq, idx)

	if !reflect.DeepEqual(first, second) {
		t.Error("Resolve is not idempotent over identical input")
	}
}
