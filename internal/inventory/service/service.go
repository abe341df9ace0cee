// Package service provides the inventory operations used by the presentation shells.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abgdnv/stockroom/internal/inventory"
	"github.com/abgdnv/stockroom/internal/inventory/persistence"
)

// InventoryService defines the operations a presentation shell can request.
// Quantity and price arrive already parsed; see ParseQuantity and ParsePrice.
type InventoryService interface {
	// ListItems returns all items in insertion order.
	ListItems(ctx context.Context) []inventory.Item

	// AddItem appends a new item and saves the inventory.
	// A non-nil error means the save failed; the item stays added in memory.
	AddItem(ctx context.Context, id, name string, quantity int, price float64) (inventory.Item, error)

	// UpdateItem changes quantity and price of the first item with the given ID.
	// Returns false when no item matches. A non-nil error means the save failed.
	UpdateItem(ctx context.Context, id string, quantity int, price float64) (bool, error)

	// RemoveItem removes every item with the given ID and returns how many went.
	// A non-nil error means the save failed.
	RemoveItem(ctx context.Context, id string) (int, error)

	// FindItem returns the first item matching query by ID or by name ignoring case.
	FindItem(ctx context.Context, query string) (inventory.Item, bool)

	// HasItem reports whether an item with exactly this ID exists.
	HasItem(ctx context.Context, id string) bool

	// LowStockReport returns the items with quantity below threshold.
	LowStockReport(ctx context.Context, threshold int) []inventory.Item

	// DefaultThreshold returns the configured low-stock threshold.
	DefaultThreshold() int

	// Shutdown performs the final save.
	Shutdown(ctx context.Context) error
}

// Service implements InventoryService on top of an in-memory store and a persistence gateway.
type Service struct {
	// mu makes each mutation and the save that follows it one step.
	mu        sync.Mutex
	store     *inventory.Store
	gateway   persistence.Gateway
	threshold int
	logger    *slog.Logger
}

var _ InventoryService = (*Service)(nil)

// NewService loads the persisted items once and returns a service around them.
// A failed load is logged and the service starts with an empty inventory.
func NewService(ctx context.Context, gateway persistence.Gateway, threshold int, logger *slog.Logger) *Service {
	logger = logger.With("component", "service")
	items, err := gateway.Load(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Could not load inventory, starting empty", "error", err)
		items = nil
	}
	logger.InfoContext(ctx, "Inventory loaded", "count", len(items))
	return &Service{
		store:     inventory.NewStore(items),
		gateway:   gateway,
		threshold: threshold,
		logger:    logger,
	}
}

func (s *Service) ListItems(_ context.Context) []inventory.Item {
	return s.store.List()
}

func (s *Service) AddItem(ctx context.Context, id, name string, quantity int, price float64) (inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.store.Add(id, name, quantity, price)
	s.logger.DebugContext(ctx, "Item added", "ID", id, "Name", name)
	return item, s.save(ctx)
}

func (s *Service) UpdateItem(ctx context.Context, id string, quantity int, price float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.Update(id, quantity, price) {
		s.logger.DebugContext(ctx, "Item not found for update", "ID", id)
		return false, nil
	}
	s.logger.DebugContext(ctx, "Item updated", "ID", id, "Quantity", quantity, "Price", price)
	return true, s.save(ctx)
}

func (s *Service) RemoveItem(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.store.Remove(id)
	if removed == 0 {
		s.logger.DebugContext(ctx, "Item not found for removal", "ID", id)
		return 0, nil
	}
	s.logger.DebugContext(ctx, "Items removed", "ID", id, "count", removed)
	return removed, s.save(ctx)
}

func (s *Service) FindItem(_ context.Context, query string) (inventory.Item, bool) {
	return s.store.Find(query)
}

func (s *Service) HasItem(_ context.Context, id string) bool {
	return s.store.Contains(id)
}

func (s *Service) LowStockReport(_ context.Context, threshold int) []inventory.Item {
	return s.store.LowStock(threshold)
}

func (s *Service) DefaultThreshold() int {
	return s.threshold
}

func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.InfoContext(ctx, "Saving inventory before exit", "count", s.store.Len())
	return s.save(ctx)
}

// save persists the current items. The in-memory state is kept when saving fails.
func (s *Service) save(ctx context.Context) error {
	if err := s.gateway.Save(ctx, s.store.List()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save inventory", "error", err)
		return fmt.Errorf("failed to save inventory: %w", err)
	}
	return nil
}
