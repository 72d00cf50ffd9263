// Package standings compares two time-adjacent standings snapshots of the
// same league and derives per-manager rank movement.
package standings

import "github.com/fpltools/gwrecap/internal/model"

// RankDelta is a manager's rank movement since the previous gameweek.
// Known is false when no prior rank exists (gameweek 1, previous snapshot
// never cached, or a manager new to the league) — rendered as "no change
// data", never as zero movement.
type RankDelta struct {
	Delta int  `json:"delta"`
	Known bool `json:"known"`
}

// Diff maps each current manager to a RankDelta. Positive delta means the
// manager moved up the table (rank number decreased).
func Diff(current []model.StandingsEntry, previous []model.StandingsEntry) map[int]RankDelta {
	out := make(map[int]RankDelta, len(current))
	if len(previous) == 0 {
		for _, e := range current {
			out[e.ManagerID] = RankDelta{}
		}
		return out
	}

	prevRank := make(map[int]int, len(previous))
	for _, e := range previous {
		prevRank[e.ManagerID] = e.Rank
	}

	for _, e := range current {
		pr, ok := prevRank[e.ManagerID]
		if !ok {
			out[e.ManagerID] = RankDelta{}
			continue
		}
		out[e.ManagerID] = RankDelta{Delta: pr - e.Rank, Known: true}
	}
	return out
}
