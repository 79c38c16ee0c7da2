package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSlot keeps the snapshot in one JSON file under a base directory.
type FileSlot struct{ path string }

// NewFileSlot ensures base exists and returns a slot writing to
// base/<name>. An empty base defaults to ./data.
func NewFileSlot(base, name string) (*FileSlot, error) {
	if base == "" {
		base = "./data"
	}
	if name == "" {
		return nil, errors.New("empty slot name")
	}
	// the slot is one file directly under base; no path components
	if name != filepath.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("slot name %q must name a file directly under the base directory", name)
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FileSlot{path: filepath.Join(base, name)}, nil
}

func (s *FileSlot) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *FileSlot) Save(_ context.Context, data []byte) error {
	// Write-then-rename so a crash mid-write never leaves a truncated slot.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
