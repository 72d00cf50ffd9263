// Package fetch is the data-source boundary: it downloads raw FPL classic
// API payloads and writes them through to the snapshot store. The derivation
// core never calls this package for previous gameweeks — reproducibility of
// a past week is defined by what the store already holds.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fpltools/gwrecap/internal/config"
	"github.com/fpltools/gwrecap/internal/metrics"
	"github.com/fpltools/gwrecap/internal/store"
)

// Client fetches raw JSON from the FPL API, caching through the store.
type Client struct {
	HTTP      *http.Client
	Store     store.Store
	BaseURL   string
	UserAgent string
	Sleep     time.Duration
	UseCache  bool
	Logger    *zap.Logger
}

// NewClient builds a client from config, writing through st.
func NewClient(cfg config.APIConfig, st store.Store, logger *zap.Logger) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		Store:     st,
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Sleep:     cfg.Sleep,
		UseCache:  true,
		Logger:    logger,
	}
}

// fetchRaw downloads urlPath (like "/bootstrap-static/") and stores it under
// (gw, kind, key). Returns raw bytes from cache or network.
func (c *Client) fetchRaw(ctx context.Context, urlPath string, gw int, kind store.Kind, key string, force bool) ([]byte, error) {
	if !force && c.UseCache {
		if b, err := c.Store.Get(ctx, gw, kind, key); err == nil {
			return b, nil
		}
	}

	if c.Sleep > 0 {
		time.Sleep(c.Sleep)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+urlPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		metrics.Fetches.WithLabelValues(string(kind), "error").Inc()
		return nil, fmt.Errorf("GET %s: %w", urlPath, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.Fetches.WithLabelValues(string(kind), "error").Inc()
		return nil, fmt.Errorf("GET %s failed: %d", urlPath, resp.StatusCode)
	}
	metrics.Fetches.WithLabelValues(string(kind), "ok").Inc()

	if err := c.Store.Put(ctx, gw, kind, key, body); err != nil {
		return nil, fmt.Errorf("store %s/%s for gw %d: %w", kind, key, gw, err)
	}
	if c.Logger != nil {
		c.Logger.Debug("fetched snapshot",
			zap.String("path", urlPath),
			zap.Int("gw", gw),
			zap.String("kind", string(kind)),
			zap.String("key", key))
	}
	return body, nil
}

// FetchStandings downloads /leagues-classic/{id}/standings/ for gw.
func (c *Client) FetchStandings(ctx context.Context, leagueID int, gw int, force bool) ([]byte, error) {
	return c.fetchRaw(ctx,
		fmt.Sprintf("/leagues-classic/%d/standings/", leagueID),
		gw, store.KindStandings, fmt.Sprintf("%d", leagueID), force)
}

// FetchSquad downloads /entry/{id}/event/{gw}/picks/ for one manager.
func (c *Client) FetchSquad(ctx context.Context, managerID int, gw int, force bool) ([]byte, error) {
	return c.fetchRaw(ctx,
		fmt.Sprintf("/entry/%d/event/%d/picks/", managerID, gw),
		gw, store.KindPicks, fmt.Sprintf("%d", managerID), force)
}

// FetchCatalog downloads /bootstrap-static/ and stores it as gw's catalog.
// The caller supplies gw because the payload's event_points are only valid
// for the gameweek the snapshot was taken in.
func (c *Client) FetchCatalog(ctx context.Context, gw int, force bool) ([]byte, error) {
	return c.fetchRaw(ctx, "/bootstrap-static/", gw, store.KindCatalog, "static", force)
}

// CurrentGameweek reads the current event id from bootstrap-static without
// caching, for resolving "gameweek 0 = current".
func (c *Client) CurrentGameweek(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/bootstrap-static/", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET /bootstrap-static/: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("GET /bootstrap-static/ failed: %d", resp.StatusCode)
	}

	var meta struct {
		Events []struct {
			ID        int  `json:"id"`
			IsCurrent bool `json:"is_current"`
		} `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return 0, fmt.Errorf("decode bootstrap events: %w", err)
	}
	for _, e := range meta.Events {
		if e.IsCurrent {
			return e.ID, nil
		}
	}
	return 0, fmt.Errorf("no current event in bootstrap-static")
}

// SyncGameweek pulls everything the report needs for (league, gw): the
// standings, the catalog, and every manager's picks. A failure on a single
// manager is logged and skipped; the report layer will record that manager
// as a skipped outcome.
func (c *Client) SyncGameweek(ctx context.Context, leagueID int, gw int, force bool) error {
	raw, err := c.FetchStandings(ctx, leagueID, gw, force)
	if err != nil {
		return err
	}
	if _, err := c.FetchCatalog(ctx, gw, force); err != nil {
		return err
	}

	var resp struct {
		Standings struct {
			Results []struct {
				Entry int `json:"entry"`
			} `json:"results"`
		} `json:"standings"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode standings for league %d: %w", leagueID, err)
	}
	for _, r := range resp.Standings.Results {
		if _, err := c.FetchSquad(ctx, r.Entry, gw, force); err != nil {
			if c.Logger != nil {
				c.Logger.Warn("squad fetch failed",
					zap.Int("manager_id", r.Entry), zap.Int("gw", gw), zap.Error(err))
			}
		}
	}
	return nil
}
