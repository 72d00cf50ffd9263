// Package catalog builds the per-gameweek player reference index from a
// bootstrap-static snapshot: id → name, position, gameweek points.
//
// Points in the catalog are gameweek-specific. Pairing a catalog from one
// gameweek with squads from another silently yields wrong points, so the
// index remembers which gameweek it was built from and callers must check.
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fpltools/gwrecap/internal/model"
)

// Entry is one player's reference record for the index's gameweek.
type Entry struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	Position       model.Position `json:"position"`
	GameweekPoints int            `json:"gameweek_points"`
	Unknown        bool           `json:"unknown,omitempty"`
}

// Index is an immutable id → Entry lookup for one gameweek.
type Index struct {
	gameweek int
	byID     map[int]Entry
}

type rawBootstrap struct {
	Elements []struct {
		ID          int    `json:"id"`
		FirstName   string `json:"first_name"`
		SecondName  string `json:"second_name"`
		WebName     string `json:"web_name"`
		ElementType int    `json:"element_type"`
		EventPoints int    `json:"event_points"`
	} `json:"elements"`
}

// Parse builds an Index from a bootstrap-static snapshot taken at gw.
func Parse(gw int, raw []byte) (*Index, error) {
	var resp rawBootstrap
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("malformed catalog snapshot: %w", err)
	}
	if len(resp.Elements) == 0 {
		return nil, fmt.Errorf("malformed catalog snapshot: no elements")
	}
	byID := make(map[int]Entry, len(resp.Elements))
	for _, e := range resp.Elements {
		name := e.WebName
		if name == "" {
			name = strings.TrimSpace(e.FirstName + " " + e.SecondName)
		}
		byID[e.ID] = Entry{
			ID:             e.ID,
			Name:           name,
			Position:       model.Position(e.ElementType),
			GameweekPoints: e.EventPoints,
		}
	}
	return &Index{gameweek: gw, byID: byID}, nil
}

// Gameweek reports which gameweek's snapshot the index was built from.
func (ix *Index) Gameweek() int {
	return ix.gameweek
}

// Len reports how many players the index holds.
func (ix *Index) Len() int {
	return len(ix.byID)
}

// Lookup resolves a player id. Absent ids resolve to a sentinel unknown
// entry with zero points rather than failing, so one malformed pick cannot
// abort a league-wide aggregation.
func (ix *Index) Lookup(playerID int) Entry {
	if e, ok := ix.byID[playerID]; ok {
		return e
	}
	return Entry{
		ID:       playerID,
		Name:     "Unknown Player",
		Position: model.PositionUnknown,
		Unknown:  true,
	}
}
