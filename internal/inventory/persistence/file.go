package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/abgdnv/stockroom/internal/inventory"
)

// FileGateway persists the items in a single file.
// Saves go to a temp file in the same directory which is then renamed over the target.
type FileGateway struct {
	path  string
	codec Codec
}

var _ Gateway = (*FileGateway)(nil)

// NewFileGateway creates a gateway for the file at path using codec.
func NewFileGateway(path string, codec Codec) *FileGateway {
	return &FileGateway{
		path:  path,
		codec: codec,
	}
}

// Path returns the file location.
func (g *FileGateway) Path() string {
	return g.path
}

// Save encodes items and atomically replaces the file.
func (g *FileGateway) Save(_ context.Context, items []inventory.Item) error {
	data, err := g.codec.Encode(items)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(g.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", g.path, err)
	}
	return nil
}

// Load reads and decodes the file. A missing file is a cold start, not an error.
func (g *FileGateway) Load(_ context.Context) ([]inventory.Item, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []inventory.Item{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", g.path, err)
	}
	items, err := g.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", g.path, err)
	}
	return items, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
