package persistence

import (
	"context"
	"fmt"

	"github.com/abgdnv/stockroom/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgGateway persists the items in the inventory_items table.
// The position column keeps the sequence order.
type PgGateway struct {
	db *pgxpool.Pool
}

var _ Gateway = (*PgGateway)(nil)

// NewPgGateway creates a gateway using a PostgreSQL connection pool.
func NewPgGateway(dbp *pgxpool.Pool) *PgGateway {
	return &PgGateway{db: dbp}
}

// Save replaces all rows with items inside one transaction.
func (p *PgGateway) Save(ctx context.Context, items []inventory.Item) error {
	err := pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM inventory_items"); err != nil {
			return fmt.Errorf("failed to clear items: %w", err)
		}
		rows := make([][]any, len(items))
		for i, item := range items {
			rows[i] = []any{i, item.ID, item.Name, int64(item.Quantity), item.Price}
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"inventory_items"},
			[]string{"position", "id", "name", "quantity", "price"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to insert items: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save inventory: %w", err)
	}
	return nil
}

// Load reads all rows in position order.
func (p *PgGateway) Load(ctx context.Context) ([]inventory.Item, error) {
	rows, err := p.db.Query(ctx, "SELECT id, name, quantity, price FROM inventory_items ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (inventory.Item, error) {
		var item inventory.Item
		var quantity int64
		if err := row.Scan(&item.ID, &item.Name, &quantity, &item.Price); err != nil {
			return item, err
		}
		item.Quantity = int(quantity)
		return item, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	if items == nil {
		items = []inventory.Item{}
	}
	return items, nil
}
