// Package persistence saves and loads the full inventory item sequence.
package persistence

import (
	"context"

	"github.com/abgdnv/stockroom/internal/inventory"
)

// Gateway is an interface for persisting the item sequence at one fixed location.
// It abstracts the underlying storage, allowing for different implementations (e.g., file, database, redis).
type Gateway interface {
	// Save replaces the persisted content with items, preserving their order.
	// A reader sees either the previous or the new content, never a partial write.
	Save(ctx context.Context, items []inventory.Item) error

	// Load returns the persisted items in saved order.
	// Returns an empty slice and no error when nothing has been saved yet.
	Load(ctx context.Context) ([]inventory.Item, error)
}
