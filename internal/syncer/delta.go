package syncer

import (
	"context"
	"fmt"

	"github.com/comandaclub/comanda/internal/pos"
	"github.com/google/uuid"
)

// InventoryDelta is the consumption of one ingredient derived from a
// quantity increase. RequiredQty is never negative; decreases do not
// restore stock through this path.
type InventoryDelta struct {
	Ingredient  string  `json:"ingredient"`
	RequiredQty float64 `json:"required_qty"`
	Unit        string  `json:"unit,omitempty"`
}

// IngredientSource resolves the per-unit ingredient list for a menu
// item, loading lazily from the remote store when not resident.
type IngredientSource interface {
	Ingredients(ctx context.Context, menuItemID uuid.UUID) ([]pos.Ingredient, error)
}

// Deltas computes the positive-only per-ingredient consumption between
// the current item quantities and the last applied snapshot. It is pure
// over its inputs; the caller advances the snapshot after applying the
// result. Items whose quantity did not increase are skipped, as are
// ingredients with zero or missing per-unit quantity.
func Deltas(ctx context.Context, src IngredientSource, items []pos.OrderItem, snapshot map[string]int) ([]InventoryDelta, error) {
	var out []InventoryDelta
	for _, item := range items {
		prev := snapshot[item.MenuItemID.String()]
		delta := item.Quantity - prev
		if delta <= 0 {
			continue
		}
		ingredients, err := src.Ingredients(ctx, item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve ingredients for %s: %w", item.MenuItemID, err)
		}
		for _, ing := range ingredients {
			if ing.Quantity <= 0 {
				continue
			}
			out = append(out, InventoryDelta{
				Ingredient:  ing.Name,
				RequiredQty: ing.Quantity * float64(delta),
				Unit:        ing.Unit,
			})
		}
	}
	return out, nil
}
