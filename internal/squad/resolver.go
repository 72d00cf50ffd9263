// Package squad resolves one manager's gameweek squad against the player
// catalog: starting/bench split, effective points, captaincy outcome.
package squad

import (
	"github.com/fpltools/gwrecap/internal/catalog"
	"github.com/fpltools/gwrecap/internal/model"
)

// Side notes a resolution can carry about the captaincy outcome.
const (
	NoteViceSteppedUp  = "vice captain stepped up"
	NoteNoCaptainPlay  = "neither captain nor vice captain played"
	activeCaptainFloor = 2 // multiplier marking the active captain slot
)

// ResolvedPick is a pick joined with its catalog entry and scored.
type ResolvedPick struct {
	Pick            model.Pick    `json:"pick"`
	Player          catalog.Entry `json:"player"`
	EffectivePoints int           `json:"effective_points"`
}

// Resolved is the full per-manager squad resolution for one gameweek.
type Resolved struct {
	ManagerID      int                    `json:"manager_id"`
	Gameweek       int                    `json:"gameweek"`
	Starting       []ResolvedPick         `json:"starting"`
	Bench          []ResolvedPick         `json:"bench"`
	Captain        *ResolvedPick          `json:"captain,omitempty"`
	CaptainNote    string                 `json:"captain_note,omitempty"`
	BenchPoints    int                    `json:"bench_points"`
	PositionTotals map[model.Position]int `json:"position_totals"`
	UnknownPicks   int                    `json:"unknown_picks"`
}

// Resolve partitions the squad's picks by multiplier, scores the starters,
// and resolves the captaincy.
//
// The captain is the max-multiplier pick among those carrying an active
// captain multiplier — not simply the pick flagged captain, because a
// benched captain is auto-replaced by the vice. Ties prefer the nominally
// flagged captain, then first wire order. A squad where neither armband
// holder played resolves with no captain, which is a valid outcome.
func Resolve(sq model.ManagerSquad, idx *catalog.Index) Resolved {
	out := Resolved{
		ManagerID:      sq.ManagerID,
		Gameweek:       sq.Gameweek,
		Starting:       make([]ResolvedPick, 0, 11),
		Bench:          make([]ResolvedPick, 0, 4),
		PositionTotals: make(map[model.Position]int),
	}

	var captainAt = -1
	for _, p := range sq.Picks {
		entry := idx.Lookup(p.PlayerID)
		if entry.Unknown {
			out.UnknownPicks++
		}
		rp := ResolvedPick{Pick: p, Player: entry}

		if p.Multiplier == 0 {
			// Bench waste is what the benched player scored raw, not the
			// zero the multiplier would give it.
			out.BenchPoints += entry.GameweekPoints
			out.Bench = append(out.Bench, rp)
			continue
		}

		rp.EffectivePoints = entry.GameweekPoints * p.Multiplier
		out.Starting = append(out.Starting, rp)
		if !entry.Unknown {
			out.PositionTotals[entry.Position] += rp.EffectivePoints
		}

		if p.Multiplier >= activeCaptainFloor {
			i := len(out.Starting) - 1
			if captainAt == -1 {
				captainAt = i
				continue
			}
			cur := out.Starting[captainAt].Pick
			if p.Multiplier > cur.Multiplier ||
				(p.Multiplier == cur.Multiplier && p.Role == model.RoleCaptain && cur.Role != model.RoleCaptain) {
				captainAt = i
			}
		}
	}

	if captainAt == -1 {
		out.CaptainNote = NoteNoCaptainPlay
		return out
	}

	capt := out.Starting[captainAt]
	out.Captain = &capt
	if capt.Pick.Role == model.RoleVice {
		out.CaptainNote = NoteViceSteppedUp
	}
	return out
}
