package pos

import (
	"context"

	"github.com/google/uuid"
)

type MenuItemRepo interface {
	Create(ctx context.Context, item *MenuItem) error
	Get(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*MenuItem, error)
	Save(ctx context.Context, item *MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TableRepo interface {
	Create(ctx context.Context, table *Table) error
	Get(ctx context.Context, id uuid.UUID) (*Table, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*Table, error)
	Save(ctx context.Context, table *Table) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReceiptRepo interface {
	Create(ctx context.Context, receipt *Receipt) error
	Get(ctx context.Context, id uuid.UUID) (*Receipt, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*Receipt, error)
}

type ShiftRepo interface {
	Create(ctx context.Context, shift *Shift) error
	Get(ctx context.Context, id uuid.UUID) (*Shift, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*Shift, error)
	ListOpen(ctx context.Context, restaurantID uuid.UUID) ([]*Shift, error)
	Save(ctx context.Context, shift *Shift) error
}

type StockRepo interface {
	Get(ctx context.Context, restaurantID uuid.UUID, ingredient string) (*StockLevel, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*StockLevel, error)
	Upsert(ctx context.Context, level *StockLevel) error
	// Decrement atomically subtracts qty from the named ingredient and
	// returns the resulting level.
	Decrement(ctx context.Context, restaurantID uuid.UUID, ingredient string, qty float64) (*StockLevel, error)
}
