// Command recap-server serves the gameweek recap derivations as MCP tools
// over streamable HTTP, plus /health, /tools, and /metrics endpoints.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fpltools/gwrecap/internal/catalog"
	"github.com/fpltools/gwrecap/internal/config"
	"github.com/fpltools/gwrecap/internal/fetch"
	"github.com/fpltools/gwrecap/internal/logging"
	"github.com/fpltools/gwrecap/internal/report"
	"github.com/fpltools/gwrecap/internal/store"
)

type app struct {
	cfg          *config.Config
	store        store.Store
	client       *fetch.Client
	logger       *zap.Logger
	fetchMissing bool
}

type LeagueGWArgs struct {
	LeagueID int `json:"league_id" jsonschema:"Classic league id (0 = configured default)"`
	GW       int `json:"gw" jsonschema:"Gameweek (0 = current)"`
}

type PlayerLookupArgs struct {
	PlayerID int `json:"player_id" jsonschema:"Player element id (required)"`
	GW       int `json:"gw" jsonschema:"Gameweek whose catalog to use (0 = current)"`
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func main() {
	var (
		configPath   = flag.String("config", "", "path to config file (optional)")
		fetchMissing = flag.Bool("fetch-missing", true, "fetch current-gameweek snapshots when absent from the store")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("config:", err)
		return
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		fmt.Println("logger:", err)
		return
	}
	defer logger.Sync()

	st, err := newStore(cfg, logger)
	if err != nil {
		logger.Fatal("snapshot store", zap.Error(err))
	}

	a := &app{
		cfg:          cfg,
		store:        st,
		client:       fetch.NewClient(cfg.API, st, logger),
		logger:       logger,
		fetchMissing: *fetchMissing,
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "gwrecap",
			Version: "0.1.0",
		},
		nil,
	)

	registry := make([]toolInfo, 0, 8)

	addTool(server, &registry, &mcp.Tool{
		Name:        "gameweek_report",
		Description: "Full league recap: standings movement, captains, bench waste, position leaders, transfers",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueGWArgs) (*mcp.CallToolResult, any, error) {
		rep, err := a.buildReport(ctx, args)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(rep)
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "standings_movement",
		Description: "Standings with per-manager rank deltas against the previous gameweek snapshot",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueGWArgs) (*mcp.CallToolResult, any, error) {
		rep, err := a.buildReport(ctx, args)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(map[string]any{
			"league_id": rep.LeagueID,
			"gameweek":  rep.Gameweek,
			"standings": rep.Standings,
			"top_three": rep.TopThree,
		})
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "captaincy",
		Description: "Captain choices grouped by resolved captain, including vice-captain promotions",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueGWArgs) (*mcp.CallToolResult, any, error) {
		rep, err := a.buildReport(ctx, args)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(map[string]any{
			"league_id":      rep.LeagueID,
			"gameweek":       rep.Gameweek,
			"captain_groups": rep.CaptainGroups,
		})
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "bench_waste",
		Description: "Bench points left on the bench per manager, with the week's leader",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueGWArgs) (*mcp.CallToolResult, any, error) {
		rep, err := a.buildReport(ctx, args)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(map[string]any{
			"league_id":    rep.LeagueID,
			"gameweek":     rep.Gameweek,
			"bench_table":  rep.BenchTable,
			"bench_leader": rep.BenchLeader,
		})
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "position_leaders",
		Description: "Top scoring manager per positional bucket (defence incl. GK, midfield, attack)",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueGWArgs) (*mcp.CallToolResult, any, error) {
		rep, err := a.buildReport(ctx, args)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(map[string]any{
			"league_id":        rep.LeagueID,
			"gameweek":         rep.Gameweek,
			"position_leaders": rep.PositionLeaders,
		})
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "transfer_analysis",
		Description: "Gained/lost players and on-pitch return of the week's transfers, best and worst week",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueGWArgs) (*mcp.CallToolResult, any, error) {
		rep, err := a.buildReport(ctx, args)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(map[string]any{
			"league_id":           rep.LeagueID,
			"gameweek":            rep.Gameweek,
			"transfer_groups":     rep.TransferGroups,
			"best_transfer_week":  rep.BestTransferWeek,
			"worst_transfer_week": rep.WorstTransferWeek,
		})
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "player_lookup",
		Description: "Lookup a player in the gameweek's cached catalog",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args PlayerLookupArgs) (*mcp.CallToolResult, any, error) {
		if args.PlayerID == 0 {
			return toolError(fmt.Errorf("player_id is required")), nil, nil
		}
		gw, err := a.resolveGW(ctx, args.GW)
		if err != nil {
			return toolError(err), nil, nil
		}
		raw, err := a.store.Get(ctx, gw, store.KindCatalog, "static")
		if err != nil {
			return toolError(fmt.Errorf("catalog for gw %d: %w", gw, err)), nil, nil
		}
		idx, err := catalog.Parse(gw, raw)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(idx.Lookup(args.PlayerID))
	})

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	http.HandleFunc("/tools", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		b, _ := json.MarshalIndent(map[string]any{"tools": registry}, "", "  ")
		w.Write(b)
	})

	http.Handle("/metrics", promhttp.Handler())
	http.Handle(cfg.Server.MCPPath, handler)

	logger.Info("MCP HTTP server listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("path", cfg.Server.MCPPath))
	if err := http.ListenAndServe(cfg.Server.Addr, nil); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

func newStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case "redis":
		return store.NewRedis(context.Background(), cfg.Store.RedisAddr, cfg.Store.RedisDB, logger)
	default:
		return store.NewFile(cfg.Store.Root), nil
	}
}

func (a *app) resolveGW(ctx context.Context, gw int) (int, error) {
	if gw > 0 {
		return gw, nil
	}
	return a.client.CurrentGameweek(ctx)
}

// buildReport resolves defaults, builds the report from the store, and —
// only for the current gameweek's own snapshots — fetches what is missing
// and retries once. Previous-gameweek data is never fetched.
func (a *app) buildReport(ctx context.Context, args LeagueGWArgs) (*report.GameweekReport, error) {
	leagueID := args.LeagueID
	if leagueID == 0 {
		leagueID = a.cfg.League.ID
	}
	if leagueID == 0 {
		return nil, fmt.Errorf("league_id is required (no default configured)")
	}
	gw, err := a.resolveGW(ctx, args.GW)
	if err != nil {
		return nil, err
	}

	in := report.BuildInput{LeagueID: leagueID, Gameweek: gw, Store: a.store, Logger: a.logger}
	rep, err := report.Build(ctx, in)
	if err == nil || !a.fetchMissing || !errors.Is(err, store.ErrNotFound) {
		return rep, err
	}
	if args.GW > 0 {
		// An explicitly requested gameweek may be in the past; past truth is
		// whatever the store holds, so only fetch if it is in fact current.
		cur, cerr := a.client.CurrentGameweek(ctx)
		if cerr != nil || gw != cur {
			return nil, err
		}
	}

	if err := a.client.SyncGameweek(ctx, leagueID, gw, false); err != nil {
		return nil, err
	}
	return report.Build(ctx, in)
}

func addTool[T any](server *mcp.Server, registry *[]toolInfo, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, handler)
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
