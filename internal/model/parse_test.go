package model

import "testing"

const sampleStandings = `{
  "league": {"id": 892307, "name": "Office League"},
  "standings": {"results": [
    {"entry": 200, "player_name": "Bea", "entry_name": "Bea FC", "rank": 2, "event_total": 51, "total": 120},
    {"entry": 100, "player_name": "Ade", "entry_name": "Ade XI", "rank": 1, "event_total": 64, "total": 131}
  ]}
}`

const samplePicks = `{
  "active_chip": "3xc",
  "entry_history": {"event": 5, "event_transfers": 2, "event_transfers_cost": 4},
  "picks": [
    {"element": 10, "multiplier": 3, "is_captain": true, "is_vice_captain": false},
    {"element": 20, "multiplier": 1, "is_captain": false, "is_vice_captain": true},
    {"element": 30, "multiplier": 0, "is_captain": false, "is_vice_captain": false}
  ]
}`

func TestParseStandings_SortedByRank(t *testing.T) {
	s, err := ParseStandings(5, []byte(sampleStandings))
	if err != nil {
		t.Fatalf("ParseStandings error: %v", err)
	}
	if s.LeagueID != 892307 || s.LeagueName != "Office League" {
		t.Errorf("league = %d %q", s.LeagueID, s.LeagueName)
	}
	if s.Gameweek != 5 {
		t.Errorf("Gameweek = %d, want 5", s.Gameweek)
	}
	if len(s.Entries) != 2 {
		t.Fatalf("Entries len = %d, want 2", len(s.Entries))
	}
	if s.Entries[0].ManagerID != 100 || s.Entries[0].Rank != 1 {
		t.Errorf("first entry = %+v, want rank 1 first regardless of wire order", s.Entries[0])
	}
	if s.Entries[1].GameweekPoints != 51 || s.Entries[1].CumulativePoints != 120 {
		t.Errorf("second entry points = %+v", s.Entries[1])
	}
}

func TestParseStandings_Malformed(t *testing.T) {
	if _, err := ParseStandings(1, []byte(`{`)); err == nil {
		t.Error("accepted truncated JSON")
	}
	missingEntry := `{"standings": {"results": [{"player_name": "x", "rank": 1}]}}`
	if _, err := ParseStandings(1, []byte(missingEntry)); err == nil {
		t.Error("accepted a row without an entry id")
	}
}

func TestParseSquad_RolesAndHistory(t *testing.T) {
	sq, err := ParseSquad(42, 5, []byte(samplePicks))
	if err != nil {
		t.Fatalf("ParseSquad error: %v", err)
	}
	if sq.ManagerID != 42 || sq.Gameweek != 5 {
		t.Errorf("ids = %d/%d, want 42/5", sq.ManagerID, sq.Gameweek)
	}
	if sq.ActiveChip != ChipTripleCaptain {
		t.Errorf("ActiveChip = %q, want 3xc", sq.ActiveChip)
	}
	if sq.TransfersMade != 2 || sq.TransferCost != 4 {
		t.Errorf("transfers = %d cost %d, want 2/4", sq.TransfersMade, sq.TransferCost)
	}

	if sq.Picks[0].Role != RoleCaptain {
		t.Errorf("pick 0 role = %v, want captain", sq.Picks[0].Role)
	}
	if sq.Picks[1].Role != RoleVice {
		t.Errorf("pick 1 role = %v, want vice", sq.Picks[1].Role)
	}
	if sq.Picks[2].Role != RoleNone {
		t.Errorf("pick 2 role = %v, want none", sq.Picks[2].Role)
	}
}

func TestParseSquad_BothFlagsCollapseToCaptain(t *testing.T) {
	raw := `{"picks": [{"element": 1, "multiplier": 2, "is_captain": true, "is_vice_captain": true}]}`
	sq, err := ParseSquad(1, 1, []byte(raw))
	if err != nil {
		t.Fatalf("ParseSquad error: %v", err)
	}
	if sq.Picks[0].Role != RoleCaptain {
		t.Errorf("role = %v, want captain when both flags set", sq.Picks[0].Role)
	}
}

func TestParseSquad_EventFieldOverridesCaller(t *testing.T) {
	raw := `{"entry_history": {"event": 7}, "picks": [{"element": 1, "multiplier": 1}]}`
	sq, err := ParseSquad(1, 6, []byte(raw))
	if err != nil {
		t.Fatalf("ParseSquad error: %v", err)
	}
	if sq.Gameweek != 7 {
		t.Errorf("Gameweek = %d, want payload's event 7 over caller's 6", sq.Gameweek)
	}
}

func TestParseSquad_EmptyPicksIsMalformed(t *testing.T) {
	if _, err := ParseSquad(1, 1, []byte(`{"picks": []}`)); err == nil {
		t.Error("accepted a squad with no picks")
	}
}

func TestChip_UnlimitedTransfers(t *testing.T) {
	for chip, want := range map[Chip]bool{
		ChipWildcard:      true,
		ChipFreeHit:       true,
		ChipTripleCaptain: false,
		ChipBenchBoost:    false,
		ChipNone:          false,
	} {
		if got := chip.UnlimitedTransfers(); got != want {
			t.Errorf("%q.UnlimitedTransfers() = %v, want %v", chip, got, want)
		}
	}
}

func TestManagerSquad_PlayerIDs(t *testing.T) {
	sq := ManagerSquad{Picks: []Pick{{PlayerID: 1}, {PlayerID: 2}, {PlayerID: 2}}}
	ids := sq.PlayerIDs()
	if len(ids) != 2 || !ids[1] || !ids[2] {
		t.Errorf("PlayerIDs = %v", ids)
	}
}
