// Package transfers compares a manager's current and previous gameweek
// squads and scores what the week's transfers delivered on the pitch.
package transfers

import (
	"sort"

	"github.com/fpltools/gwrecap/internal/catalog"
	"github.com/fpltools/gwrecap/internal/model"
)

// Delta is the derived transfer outcome for one manager-gameweek.
type Delta struct {
	ManagerID                int   `json:"manager_id"`
	GainedPlayerIDs          []int `json:"gained_player_ids"`
	LostPlayerIDs            []int `json:"lost_player_ids"`
	TransfersMade            int   `json:"transfers_made"`
	TransferCost             int   `json:"transfer_cost"`
	StartingPointsFromGained int   `json:"starting_points_from_gained"`
	NetReturn                int   `json:"net_return"`
}

// Diff derives the transfer delta between two squads of the same manager.
// Returns ok=false when the gameweek is excluded from transfer analysis:
// no previous squad, gameweek 1, no transfers made, or a wildcard/free-hit
// chip active (unlimited transfers make the comparison meaningless).
// Excluded weeks are left out of aggregation entirely, never zero-filled.
func Diff(current *model.ManagerSquad, previous *model.ManagerSquad, idx *catalog.Index) (Delta, bool) {
	if current == nil || previous == nil {
		return Delta{}, false
	}
	if current.Gameweek <= 1 || current.TransfersMade == 0 {
		return Delta{}, false
	}
	if current.ActiveChip.UnlimitedTransfers() {
		return Delta{}, false
	}

	curIDs := current.PlayerIDs()
	prevIDs := previous.PlayerIDs()

	d := Delta{
		ManagerID:     current.ManagerID,
		TransfersMade: current.TransfersMade,
		TransferCost:  current.TransferCost,
	}
	for id := range curIDs {
		if !prevIDs[id] {
			d.GainedPlayerIDs = append(d.GainedPlayerIDs, id)
		}
	}
	for id := range prevIDs {
		if !curIDs[id] {
			d.LostPlayerIDs = append(d.LostPlayerIDs, id)
		}
	}
	sort.Ints(d.GainedPlayerIDs)
	sort.Ints(d.LostPlayerIDs)

	// A gained player only counts for what he scored on the pitch; a
	// signing left on the bench contributes nothing.
	gained := make(map[int]bool, len(d.GainedPlayerIDs))
	for _, id := range d.GainedPlayerIDs {
		gained[id] = true
	}
	for _, p := range current.Picks {
		if p.Multiplier == 0 || !gained[p.PlayerID] {
			continue
		}
		d.StartingPointsFromGained += idx.Lookup(p.PlayerID).GameweekPoints * p.Multiplier
	}

	d.NetReturn = d.StartingPointsFromGained - d.TransferCost
	return d, true
}

// Best returns the delta with the highest points from gained starters, ties
// broken by manager id ascending. ok=false when deltas is empty.
func Best(deltas []Delta) (Delta, bool) {
	return pickBy(deltas, func(a, b Delta) bool {
		if a.StartingPointsFromGained != b.StartingPointsFromGained {
			return a.StartingPointsFromGained > b.StartingPointsFromGained
		}
		return a.ManagerID < b.ManagerID
	})
}

// Worst returns the delta with the lowest net return, ties broken by
// manager id ascending. ok=false when deltas is empty.
func Worst(deltas []Delta) (Delta, bool) {
	return pickBy(deltas, func(a, b Delta) bool {
		if a.NetReturn != b.NetReturn {
			return a.NetReturn < b.NetReturn
		}
		return a.ManagerID < b.ManagerID
	})
}

func pickBy(deltas []Delta, better func(a, b Delta) bool) (Delta, bool) {
	if len(deltas) == 0 {
		return Delta{}, false
	}
	best := deltas[0]
	for _, d := range deltas[1:] {
		if better(d, best) {
			best = d
		}
	}
	return best, true
}
