// Package model holds the core records the recap engine derives from:
// squad picks, league standings, and the enums that classify them. All of
// these are decoded from snapshot bytes and never mutated afterwards.
package model

// Position is the FPL element_type of a player.
type Position int

const (
	PositionUnknown    Position = 0
	PositionGoalkeeper Position = 1
	PositionDefender   Position = 2
	PositionMidfielder Position = 3
	PositionForward    Position = 4
)

func (p Position) String() string {
	switch p {
	case PositionGoalkeeper:
		return "goalkeeper"
	case PositionDefender:
		return "defender"
	case PositionMidfielder:
		return "midfielder"
	case PositionForward:
		return "forward"
	default:
		return "unknown"
	}
}

// Chip is the active_chip wire value for a gameweek, empty when none.
type Chip string

const (
	ChipNone          Chip = ""
	ChipWildcard      Chip = "wildcard"
	ChipFreeHit       Chip = "freehit"
	ChipTripleCaptain Chip = "3xc"
	ChipBenchBoost    Chip = "bboost"
)

// UnlimitedTransfers reports whether the chip grants free transfers for the
// gameweek, which makes transfer-quality comparisons meaningless.
func (c Chip) UnlimitedTransfers() bool {
	return c == ChipWildcard || c == ChipFreeHit
}

// CaptainRole is the armband flag carried by a pick. A pick is either the
// nominal captain, the vice captain, or neither — never both.
type CaptainRole int

const (
	RoleNone CaptainRole = iota
	RoleCaptain
	RoleVice
)

func (r CaptainRole) String() string {
	switch r {
	case RoleCaptain:
		return "captain"
	case RoleVice:
		return "vice_captain"
	default:
		return "none"
	}
}

// Pick is one of the 15 slots in a manager's squad for a gameweek.
// Multiplier 0 means benched; 2 (or 3 under triple captain) marks the
// active captain slot regardless of which armband flag is set.
type Pick struct {
	PlayerID   int         `json:"player_id"`
	Multiplier int         `json:"multiplier"`
	Role       CaptainRole `json:"role"`
}

// ManagerSquad is one manager's full squad for one gameweek, in wire order.
// Built once per gameweek snapshot and superseded, never mutated.
type ManagerSquad struct {
	ManagerID     int    `json:"manager_id"`
	Gameweek      int    `json:"gameweek"`
	Picks         []Pick `json:"picks"`
	ActiveChip    Chip   `json:"active_chip"`
	TransfersMade int    `json:"transfers_made"`
	TransferCost  int    `json:"transfer_cost"`
}

// PlayerIDs returns the set of player ids in the squad.
func (s *ManagerSquad) PlayerIDs() map[int]bool {
	ids := make(map[int]bool, len(s.Picks))
	for _, p := range s.Picks {
		ids[p.PlayerID] = true
	}
	return ids
}

// StandingsEntry is one row of a league's standings at a gameweek, immutable
// once recorded. Rank is unique within a league-gameweek.
type StandingsEntry struct {
	ManagerID        int    `json:"manager_id"`
	DisplayName      string `json:"display_name"`
	TeamName         string `json:"team_name"`
	Rank             int    `json:"rank"`
	GameweekPoints   int    `json:"gameweek_points"`
	CumulativePoints int    `json:"cumulative_points"`
}

// Standings is the decoded standings snapshot for one (league, gameweek).
type Standings struct {
	LeagueID   int              `json:"league_id"`
	LeagueName string           `json:"league_name"`
	Gameweek   int              `json:"gameweek"`
	Entries    []StandingsEntry `json:"entries"`
}
