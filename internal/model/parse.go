package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Wire shapes for the FPL classic API. Only the fields the recap engine
// consumes are decoded; everything else in the payload is ignored.

type rawStandings struct {
	League struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Standings struct {
		Results []struct {
			Entry      int    `json:"entry"`
			PlayerName string `json:"player_name"`
			EntryName  string `json:"entry_name"`
			Rank       int    `json:"rank"`
			EventTotal int    `json:"event_total"`
			Total      int    `json:"total"`
		} `json:"results"`
	} `json:"standings"`
}

type rawPicks struct {
	ActiveChip   string `json:"active_chip"`
	EntryHistory struct {
		Event              int `json:"event"`
		EventTransfers     int `json:"event_transfers"`
		EventTransfersCost int `json:"event_transfers_cost"`
	} `json:"entry_history"`
	Picks []struct {
		Element       int  `json:"element"`
		Multiplier    int  `json:"multiplier"`
		IsCaptain     bool `json:"is_captain"`
		IsViceCaptain bool `json:"is_vice_captain"`
	} `json:"picks"`
}

// ParseStandings decodes a leagues-classic standings snapshot. Rows come
// back sorted by rank regardless of wire order.
func ParseStandings(gw int, raw []byte) (*Standings, error) {
	var resp rawStandings
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("malformed standings snapshot: %w", err)
	}
	out := &Standings{
		LeagueID:   resp.League.ID,
		LeagueName: resp.League.Name,
		Gameweek:   gw,
		Entries:    make([]StandingsEntry, 0, len(resp.Standings.Results)),
	}
	for _, r := range resp.Standings.Results {
		if r.Entry == 0 {
			return nil, fmt.Errorf("malformed standings snapshot: entry id missing")
		}
		out.Entries = append(out.Entries, StandingsEntry{
			ManagerID:        r.Entry,
			DisplayName:      r.PlayerName,
			TeamName:         r.EntryName,
			Rank:             r.Rank,
			GameweekPoints:   r.EventTotal,
			CumulativePoints: r.Total,
		})
	}
	sort.Slice(out.Entries, func(i, j int) bool {
		return out.Entries[i].Rank < out.Entries[j].Rank
	})
	return out, nil
}

// ParseSquad decodes an entry picks snapshot into a ManagerSquad.
// The armband flags collapse into a single role; is_captain wins if a
// malformed payload sets both.
func ParseSquad(managerID int, gw int, raw []byte) (*ManagerSquad, error) {
	var resp rawPicks
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("malformed picks snapshot: %w", err)
	}
	if len(resp.Picks) == 0 {
		return nil, fmt.Errorf("malformed picks snapshot: no picks for manager %d gw %d", managerID, gw)
	}
	// The snapshot's own event field is authoritative; older snapshots
	// without entry_history fall back to the gameweek they were stored under.
	if resp.EntryHistory.Event != 0 {
		gw = resp.EntryHistory.Event
	}
	sq := &ManagerSquad{
		ManagerID:     managerID,
		Gameweek:      gw,
		Picks:         make([]Pick, 0, len(resp.Picks)),
		ActiveChip:    Chip(resp.ActiveChip),
		TransfersMade: resp.EntryHistory.EventTransfers,
		TransferCost:  resp.EntryHistory.EventTransfersCost,
	}
	for _, p := range resp.Picks {
		role := RoleNone
		switch {
		case p.IsCaptain:
			role = RoleCaptain
		case p.IsViceCaptain:
			role = RoleVice
		}
		sq.Picks = append(sq.Picks, Pick{
			PlayerID:   p.Element,
			Multiplier: p.Multiplier,
			Role:       role,
		})
	}
	return sq, nil
}
