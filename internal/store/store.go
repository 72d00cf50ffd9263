// Package store defines the versioned snapshot store the recap engine reads
// and the fetch layer writes. Snapshots are keyed (gameweek, kind, key) and
// treated as immutable once written: a finished gameweek's data does not
// change, so a repeated Put for the same key is a benign overwrite of
// identical bytes. Implementations: in-memory (tests), filesystem, Redis.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no snapshot exists for the key.
// Callers distinguish absence from failure with errors.Is.
var ErrNotFound = errors.New("snapshot not found")

// Kind names the snapshot families the engine works with.
type Kind string

const (
	KindStandings Kind = "standings"
	KindPicks     Kind = "picks"
	KindCatalog   Kind = "catalog"
)

// Store is the snapshot cache interface. Previous-gameweek lookups must go
// through a Store and never trigger a live fetch — what was cached at the
// time is the truth for that gameweek.
type Store interface {
	Get(ctx context.Context, gw int, kind Kind, key string) ([]byte, error)
	Put(ctx context.Context, gw int, kind Kind, key string, body []byte) error
}

// snapKey is the canonical flat key used by the memory and redis backends.
func snapKey(gw int, kind Kind, key string) string {
	return fmt.Sprintf("gw:%d:%s:%s", gw, kind, key)
}
