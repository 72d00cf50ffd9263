// Command recap runs the pipeline once: fetch the gameweek's snapshots into
// the store, build the report, and write it as JSON under the derived root.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fpltools/gwrecap/internal/config"
	"github.com/fpltools/gwrecap/internal/fetch"
	"github.com/fpltools/gwrecap/internal/logging"
	"github.com/fpltools/gwrecap/internal/report"
	"github.com/fpltools/gwrecap/internal/store"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (optional)")
		leagueID    = flag.Int("league", 0, "classic league id (0 = configured default)")
		gw          = flag.Int("gw", 0, "gameweek (0 = current)")
		derivedRoot = flag.String("derived-root", "data/derived", "root directory for derived reports")
		force       = flag.Bool("force", false, "re-fetch snapshots even when cached")
		noFetch     = flag.Bool("no-fetch", false, "build from the store only, without fetching")
	)
	flag.Parse()

	if err := run(*configPath, *leagueID, *gw, *derivedRoot, *force, *noFetch); err != nil {
		fmt.Fprintln(os.Stderr, "recap:", err)
		os.Exit(1)
	}
}

func run(configPath string, leagueID, gw int, derivedRoot string, force, noFetch bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if leagueID == 0 {
		leagueID = cfg.League.ID
	}
	if leagueID == 0 {
		return fmt.Errorf("league id is required (flag -league or config league.id)")
	}

	var st store.Store
	switch cfg.Store.Backend {
	case "redis":
		rs, err := store.NewRedis(context.Background(), cfg.Store.RedisAddr, cfg.Store.RedisDB, logger)
		if err != nil {
			return err
		}
		defer rs.Close()
		st = rs
	default:
		st = store.NewFile(cfg.Store.Root)
	}

	ctx := context.Background()
	client := fetch.NewClient(cfg.API, st, logger)

	if gw == 0 {
		gw, err = client.CurrentGameweek(ctx)
		if err != nil {
			return err
		}
	}

	if !noFetch {
		if err := client.SyncGameweek(ctx, leagueID, gw, force); err != nil {
			return err
		}
	}

	rep, err := report.Build(ctx, report.BuildInput{
		LeagueID: leagueID,
		Gameweek: gw,
		Store:    st,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	outPath := filepath.Join(derivedRoot, fmt.Sprintf("report/%d/gw/%d.json", leagueID, gw))
	if err := writeJSON(outPath, rep); err != nil {
		return err
	}
	logger.Info("report written", zap.String("path", outPath))
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
