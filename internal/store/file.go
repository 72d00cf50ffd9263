package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File implements Store on a directory tree, one JSON file per snapshot:
// <root>/gw/<gw>/<kind>/<key>.json.
type File struct {
	Root   string // e.g. "data/raw"
	Pretty bool   // indent JSON on write for hand inspection
}

// NewFile creates a filesystem store rooted at dir.
func NewFile(root string) *File {
	return &File{Root: root, Pretty: true}
}

func (s *File) path(gw int, kind Kind, key string) string {
	return filepath.Join(s.Root, "gw", fmt.Sprintf("%d", gw), string(kind), key+".json")
}

func (s *File) Get(_ context.Context, gw int, kind Kind, key string) ([]byte, error) {
	b, err := os.ReadFile(s.path(gw, kind, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *File) Put(_ context.Context, gw int, kind Kind, key string, body []byte) error {
	path := s.path(gw, kind, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	if s.Pretty {
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			buf := &bytes.Buffer{}
			enc := json.NewEncoder(buf)
			enc.SetIndent("", "  ")
			_ = enc.Encode(v)
			body = buf.Bytes()
		}
	}

	return os.WriteFile(path, body, 0o644)
}
