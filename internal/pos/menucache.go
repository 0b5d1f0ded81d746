package pos

import (
	"context"
	"fmt"
	"sync"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// MenuItemCache keeps menu items resident so the delta calculator can
// consult ingredient lists without a remote read per item. Misses load
// lazily through the repo; menu change events invalidate entries.
type MenuItemCache struct {
	mu     sync.RWMutex
	items  map[uuid.UUID]*MenuItem
	repo   MenuItemRepo
	logger aqm.Logger
}

func NewMenuItemCache(repo MenuItemRepo, logger aqm.Logger) *MenuItemCache {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &MenuItemCache{
		items:  make(map[uuid.UUID]*MenuItem),
		repo:   repo,
		logger: logger,
	}
}

func (c *MenuItemCache) Warm(ctx context.Context, restaurantID uuid.UUID) error {
	if c.repo == nil {
		return nil
	}
	items, err := c.repo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return fmt.Errorf("cannot warm menu cache: %w", err)
	}
	for _, item := range items {
		c.Set(item)
	}
	return nil
}

// Ensure returns the cached item, loading it on a miss.
func (c *MenuItemCache) Ensure(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid menu item id")
	}
	if item, ok := c.Get(id); ok {
		return item, nil
	}
	return c.Refresh(ctx, id)
}

func (c *MenuItemCache) Refresh(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("menu cache uninitialized")
	}
	item, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menu item %s: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("menu item %s not found", id)
	}
	c.Set(item)
	return item, nil
}

func (c *MenuItemCache) Get(id uuid.UUID) (*MenuItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	return item, ok
}

func (c *MenuItemCache) Set(item *MenuItem) {
	if item == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
}

func (c *MenuItemCache) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}

// Ingredients resolves the per-unit ingredient list for a menu item.
// This is the lazy source the delta calculator consults.
func (c *MenuItemCache) Ingredients(ctx context.Context, menuItemID uuid.UUID) ([]Ingredient, error) {
	item, err := c.Ensure(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	return item.Ingredients, nil
}
