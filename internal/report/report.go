// Package report folds per-manager derivations into the league-wide
// gameweek report record consumed by external renderers. Everything here is
// a pure function of the snapshots read from the store; no derived value is
// ever written back, so an analytics bug can never poison the cache.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fpltools/gwrecap/internal/catalog"
	"github.com/fpltools/gwrecap/internal/metrics"
	"github.com/fpltools/gwrecap/internal/model"
	"github.com/fpltools/gwrecap/internal/squad"
	"github.com/fpltools/gwrecap/internal/standings"
	"github.com/fpltools/gwrecap/internal/store"
	"github.com/fpltools/gwrecap/internal/transfers"
)

// Movement classifies a manager's rank change for rendering.
const (
	MovementUp   = "up"
	MovementDown = "down"
	MovementSame = "same"
	MovementNew  = "new" // no prior rank data — distinct from "same"
)

// Outcome statuses for per-manager processing.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
)

// Position buckets for the leaders table. Goalkeepers fold into defence.
const (
	BucketDefence  = "defence"
	BucketMidfield = "midfield"
	BucketAttack   = "attack"
)

// StandingRow is one manager's line in the report standings.
type StandingRow struct {
	ManagerID        int    `json:"manager_id"`
	DisplayName      string `json:"display_name"`
	TeamName         string `json:"team_name"`
	Rank             int    `json:"rank"`
	GameweekPoints   int    `json:"gameweek_points"`
	CumulativePoints int    `json:"cumulative_points"`
	Movement         string `json:"movement"`
	RankDelta        *int   `json:"rank_delta,omitempty"`
}

// ManagerScore names a manager with a gameweek score.
type ManagerScore struct {
	ManagerID      int    `json:"manager_id"`
	DisplayName    string `json:"display_name"`
	GameweekPoints int    `json:"gameweek_points"`
}

// CaptainPick is one manager's captaincy outcome inside a captain group.
type CaptainPick struct {
	ManagerID       int    `json:"manager_id"`
	DisplayName     string `json:"display_name"`
	EffectivePoints int    `json:"effective_points"`
	Note            string `json:"note,omitempty"`
}

// CaptainGroup collects the managers who ended up with the same resolved
// captain.
type CaptainGroup struct {
	PlayerID      int           `json:"player_id"`
	PlayerName    string        `json:"player_name"`
	CaptainPoints int           `json:"captain_points"`
	Managers      []CaptainPick `json:"managers"`
}

// BenchRow is one manager's bench-point waste.
type BenchRow struct {
	ManagerID   int    `json:"manager_id"`
	DisplayName string `json:"display_name"`
	BenchPoints int    `json:"bench_points"`
}

// PositionLeader is the top scorer in one positional bucket.
type PositionLeader struct {
	Bucket      string `json:"bucket"`
	ManagerID   int    `json:"manager_id"`
	DisplayName string `json:"display_name"`
	Points      int    `json:"points"`
}

// TransferOutcome is one manager's scored transfer week.
type TransferOutcome struct {
	ManagerID                int      `json:"manager_id"`
	DisplayName              string   `json:"display_name"`
	GainedPlayers            []string `json:"gained_players"`
	LostPlayers              []string `json:"lost_players"`
	TransfersMade            int      `json:"transfers_made"`
	TransferCost             int      `json:"transfer_cost"`
	StartingPointsFromGained int      `json:"starting_points_from_gained"`
	NetReturn                int      `json:"net_return"`
}

// TransferGroup buckets transfer outcomes by how many moves were made.
type TransferGroup struct {
	TransfersMade int               `json:"transfers_made"`
	Managers      []TransferOutcome `json:"managers"`
}

// ManagerOutcome is the first-class per-manager processing result: either
// the manager's stats made it into the report, or the reason they did not.
type ManagerOutcome struct {
	ManagerID    int    `json:"manager_id"`
	DisplayName  string `json:"display_name"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	UnknownPicks int    `json:"unknown_picks,omitempty"`
}

// GameweekReport is the full derived report record. Field names and json
// tags are the renderer contract.
type GameweekReport struct {
	ReportID       string `json:"report_id"`
	LeagueID       int    `json:"league_id"`
	LeagueName     string `json:"league_name"`
	Gameweek       int    `json:"gameweek"`
	GeneratedAtUTC string `json:"generated_at_utc"`

	Standings []StandingRow `json:"standings"`
	TopThree  []StandingRow `json:"top_three"`

	HighestScore  *ManagerScore `json:"highest_score,omitempty"`
	LowestScore   *ManagerScore `json:"lowest_score,omitempty"`
	AveragePoints float64       `json:"average_points"`

	CaptainGroups []CaptainGroup `json:"captain_groups"`

	BenchTable  []BenchRow `json:"bench_table"`
	BenchLeader *BenchRow  `json:"bench_leader,omitempty"`

	PositionLeaders []PositionLeader `json:"position_leaders"`

	TransferGroups    []TransferGroup  `json:"transfer_groups"`
	BestTransferWeek  *TransferOutcome `json:"best_transfer_week,omitempty"`
	WorstTransferWeek *TransferOutcome `json:"worst_transfer_week,omitempty"`

	Outcomes []ManagerOutcome `json:"outcomes"`
}

// BuildInput carries everything Build needs. The store is the only data
// source: Build never fetches, so a previous gameweek's truth stays exactly
// what was cached at the time.
type BuildInput struct {
	LeagueID int
	Gameweek int
	Store    store.Store
	Logger   *zap.Logger
}

// Build assembles the gameweek report. The only fatal conditions are a
// missing or malformed current standings or catalog snapshot; every
// per-manager failure degrades into a skipped Outcome instead.
func Build(ctx context.Context, in BuildInput) (*GameweekReport, error) {
	log := in.Logger
	if log == nil {
		log = zap.NewNop()
	}
	leagueKey := strconv.Itoa(in.LeagueID)

	raw, err := getSnap(ctx, in.Store, in.Gameweek, store.KindStandings, leagueKey)
	if err != nil {
		return nil, fmt.Errorf("current standings for league %d gw %d: %w", in.LeagueID, in.Gameweek, err)
	}
	cur, err := model.ParseStandings(in.Gameweek, raw)
	if err != nil {
		return nil, err
	}

	raw, err = getSnap(ctx, in.Store, in.Gameweek, store.KindCatalog, "static")
	if err != nil {
		return nil, fmt.Errorf("player catalog for gw %d: %w", in.Gameweek, err)
	}
	idx, err := catalog.Parse(in.Gameweek, raw)
	if err != nil {
		return nil, err
	}

	deltas := standings.Diff(cur.Entries, previousStandings(ctx, in, leagueKey, log))

	rep := &GameweekReport{
		ReportID:       uuid.NewString(),
		LeagueID:       in.LeagueID,
		LeagueName:     cur.LeagueName,
		Gameweek:       in.Gameweek,
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
	}

	resolved := make([]squad.Resolved, 0, len(cur.Entries))
	tdeltas := make([]transfers.Delta, 0, len(cur.Entries))

	// Entries are already in rank order; every later tie-break that says
	// "first in standings order" relies on walking them in this order.
	for _, e := range cur.Entries {
		rep.Standings = append(rep.Standings, standingRow(e, deltas[e.ManagerID]))

		sq, reason := managerSquad(ctx, in, in.Gameweek, e.ManagerID)
		if sq == nil {
			rep.Outcomes = append(rep.Outcomes, ManagerOutcome{
				ManagerID: e.ManagerID, DisplayName: e.DisplayName,
				Status: StatusSkipped, Reason: reason,
			})
			metrics.ManagersSkipped.WithLabelValues(reason).Inc()
			log.Warn("manager skipped", zap.Int("manager_id", e.ManagerID), zap.String("reason", reason))
			continue
		}
		if sq.Gameweek != idx.Gameweek() {
			reason = "catalog and squad snapshots from different gameweeks"
			rep.Outcomes = append(rep.Outcomes, ManagerOutcome{
				ManagerID: e.ManagerID, DisplayName: e.DisplayName,
				Status: StatusSkipped, Reason: reason,
			})
			metrics.ManagersSkipped.WithLabelValues("gameweek_mismatch").Inc()
			log.Warn("manager skipped", zap.Int("manager_id", e.ManagerID), zap.String("reason", reason))
			continue
		}

		res := squad.Resolve(*sq, idx)
		resolved = append(resolved, res)
		rep.Outcomes = append(rep.Outcomes, ManagerOutcome{
			ManagerID: e.ManagerID, DisplayName: e.DisplayName,
			Status: StatusOK, UnknownPicks: res.UnknownPicks,
		})

		if in.Gameweek > 1 && sq.TransfersMade > 0 && !sq.ActiveChip.UnlimitedTransfers() {
			prev, _ := managerSquad(ctx, in, in.Gameweek-1, e.ManagerID)
			if td, ok := transfers.Diff(sq, prev, idx); ok {
				tdeltas = append(tdeltas, td)
			}
		}
	}

	if len(rep.Standings) >= 3 {
		rep.TopThree = rep.Standings[:3]
	} else {
		rep.TopThree = rep.Standings
	}
	rep.HighestScore, rep.LowestScore, rep.AveragePoints = scoreStats(cur.Entries)

	nameByID := make(map[int]string, len(cur.Entries))
	for _, e := range cur.Entries {
		nameByID[e.ManagerID] = e.DisplayName
	}

	rep.CaptainGroups = captainGroups(resolved, nameByID)
	rep.BenchTable, rep.BenchLeader = benchTable(resolved, nameByID)
	rep.PositionLeaders = positionLeaders(resolved, nameByID)
	rep.TransferGroups = transferGroups(tdeltas, nameByID, idx)
	if best, ok := transfers.Best(tdeltas); ok {
		out := transferOutcome(best, nameByID, idx)
		rep.BestTransferWeek = &out
	}
	if worst, ok := transfers.Worst(tdeltas); ok {
		out := transferOutcome(worst, nameByID, idx)
		rep.WorstTransferWeek = &out
	}

	metrics.ReportsBuilt.Inc()
	log.Info("report built",
		zap.Int("league_id", in.LeagueID),
		zap.Int("gameweek", in.Gameweek),
		zap.Int("managers", len(cur.Entries)),
		zap.Int("resolved", len(resolved)),
		zap.Int("transfer_weeks", len(tdeltas)))
	return rep, nil
}

func getSnap(ctx context.Context, st store.Store, gw int, kind store.Kind, key string) ([]byte, error) {
	b, err := st.Get(ctx, gw, kind, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.SnapshotMisses.WithLabelValues(string(kind)).Inc()
		}
		return nil, err
	}
	metrics.SnapshotHits.WithLabelValues(string(kind)).Inc()
	return b, nil
}

// previousStandings reads last gameweek's standings from the store only.
// Anything short of a clean decode counts as absent.
func previousStandings(ctx context.Context, in BuildInput, leagueKey string, log *zap.Logger) []model.StandingsEntry {
	if in.Gameweek <= 1 {
		return nil
	}
	raw, err := getSnap(ctx, in.Store, in.Gameweek-1, store.KindStandings, leagueKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn("previous standings unreadable", zap.Error(err))
		}
		return nil
	}
	prev, err := model.ParseStandings(in.Gameweek-1, raw)
	if err != nil {
		log.Warn("previous standings malformed", zap.Error(err))
		return nil
	}
	return prev.Entries
}

func managerSquad(ctx context.Context, in BuildInput, gw int, managerID int) (*model.ManagerSquad, string) {
	raw, err := getSnap(ctx, in.Store, gw, store.KindPicks, strconv.Itoa(managerID))
	if err != nil {
		return nil, "missing squad snapshot"
	}
	sq, err := model.ParseSquad(managerID, gw, raw)
	if err != nil {
		return nil, "malformed squad snapshot"
	}
	return sq, ""
}

func standingRow(e model.StandingsEntry, d standings.RankDelta) StandingRow {
	row := StandingRow{
		ManagerID:        e.ManagerID,
		DisplayName:      e.DisplayName,
		TeamName:         e.TeamName,
		Rank:             e.Rank,
		GameweekPoints:   e.GameweekPoints,
		CumulativePoints: e.CumulativePoints,
	}
	if !d.Known {
		row.Movement = MovementNew
		return row
	}
	delta := d.Delta
	row.RankDelta = &delta
	switch {
	case delta > 0:
		row.Movement = MovementUp
	case delta < 0:
		row.Movement = MovementDown
	default:
		row.Movement = MovementSame
	}
	return row
}

func scoreStats(entries []model.StandingsEntry) (*ManagerScore, *ManagerScore, float64) {
	if len(entries) == 0 {
		return nil, nil, 0
	}
	hi := entries[0]
	lo := entries[0]
	sum := 0
	for _, e := range entries {
		sum += e.GameweekPoints
		if e.GameweekPoints > hi.GameweekPoints {
			hi = e
		}
		if e.GameweekPoints < lo.GameweekPoints {
			lo = e
		}
	}
	toScore := func(e model.StandingsEntry) *ManagerScore {
		return &ManagerScore{ManagerID: e.ManagerID, DisplayName: e.DisplayName, GameweekPoints: e.GameweekPoints}
	}
	return toScore(hi), toScore(lo), float64(sum) / float64(len(entries))
}

func captainGroups(resolved []squad.Resolved, nameByID map[int]string) []CaptainGroup {
	byPlayer := make(map[int]*CaptainGroup)
	order := make([]int, 0)
	for _, r := range resolved {
		if r.Captain == nil {
			continue
		}
		id := r.Captain.Player.ID
		g, ok := byPlayer[id]
		if !ok {
			g = &CaptainGroup{PlayerID: id, PlayerName: r.Captain.Player.Name}
			byPlayer[id] = g
			order = append(order, id)
		}
		if r.Captain.EffectivePoints > g.CaptainPoints {
			g.CaptainPoints = r.Captain.EffectivePoints
		}
		g.Managers = append(g.Managers, CaptainPick{
			ManagerID:       r.ManagerID,
			DisplayName:     nameByID[r.ManagerID],
			EffectivePoints: r.Captain.EffectivePoints,
			Note:            r.CaptainNote,
		})
	}

	groups := make([]CaptainGroup, 0, len(order))
	for _, id := range order {
		groups = append(groups, *byPlayer[id])
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].CaptainPoints != groups[j].CaptainPoints {
			return groups[i].CaptainPoints > groups[j].CaptainPoints
		}
		if len(groups[i].Managers) != len(groups[j].Managers) {
			return len(groups[i].Managers) > len(groups[j].Managers)
		}
		return groups[i].PlayerID < groups[j].PlayerID
	})
	return groups
}

func benchTable(resolved []squad.Resolved, nameByID map[int]string) ([]BenchRow, *BenchRow) {
	if len(resolved) == 0 {
		return nil, nil
	}
	rows := make([]BenchRow, 0, len(resolved))
	for _, r := range resolved {
		rows = append(rows, BenchRow{
			ManagerID:   r.ManagerID,
			DisplayName: nameByID[r.ManagerID],
			BenchPoints: r.BenchPoints,
		})
	}
	// Strict max keeping the first occurrence in standings order on ties.
	leader := rows[0]
	for _, row := range rows[1:] {
		if row.BenchPoints > leader.BenchPoints {
			leader = row
		}
	}
	return rows, &leader
}

func positionLeaders(resolved []squad.Resolved, nameByID map[int]string) []PositionLeader {
	if len(resolved) == 0 {
		return nil
	}
	bucketTotal := func(r squad.Resolved, bucket string) int {
		switch bucket {
		case BucketDefence:
			return r.PositionTotals[model.PositionGoalkeeper] + r.PositionTotals[model.PositionDefender]
		case BucketMidfield:
			return r.PositionTotals[model.PositionMidfielder]
		default:
			return r.PositionTotals[model.PositionForward]
		}
	}

	leaders := make([]PositionLeader, 0, 3)
	for _, bucket := range []string{BucketDefence, BucketMidfield, BucketAttack} {
		best := resolved[0]
		bestPts := bucketTotal(best, bucket)
		for _, r := range resolved[1:] {
			if pts := bucketTotal(r, bucket); pts > bestPts {
				best, bestPts = r, pts
			}
		}
		leaders = append(leaders, PositionLeader{
			Bucket:      bucket,
			ManagerID:   best.ManagerID,
			DisplayName: nameByID[best.ManagerID],
			Points:      bestPts,
		})
	}
	return leaders
}

func transferOutcome(d transfers.Delta, nameByID map[int]string, idx *catalog.Index) TransferOutcome {
	names := func(ids []int) []string {
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, idx.Lookup(id).Name)
		}
		return out
	}
	return TransferOutcome{
		ManagerID:                d.ManagerID,
		DisplayName:              nameByID[d.ManagerID],
		GainedPlayers:            names(d.GainedPlayerIDs),
		LostPlayers:              names(d.LostPlayerIDs),
		TransfersMade:            d.TransfersMade,
		TransferCost:             d.TransferCost,
		StartingPointsFromGained: d.StartingPointsFromGained,
		NetReturn:                d.NetReturn,
	}
}

func transferGroups(deltas []transfers.Delta, nameByID map[int]string, idx *catalog.Index) []TransferGroup {
	byCount := make(map[int]*TransferGroup)
	counts := make([]int, 0)
	for _, d := range deltas {
		g, ok := byCount[d.TransfersMade]
		if !ok {
			g = &TransferGroup{TransfersMade: d.TransfersMade}
			byCount[d.TransfersMade] = g
			counts = append(counts, d.TransfersMade)
		}
		g.Managers = append(g.Managers, transferOutcome(d, nameByID, idx))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))

	groups := make([]TransferGroup, 0, len(counts))
	for _, c := range counts {
		groups = append(groups, *byCount[c])
	}
	return groups
}
