package syncer

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/comandaclub/comanda/internal/pos"
)

var (
	espressoID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440010")
	paellaID   = uuid.MustParse("550e8400-e29b-41d4-a716-446655440011")
)

func recipeSource() *mockIngredientSource {
	src := newMockIngredientSource()
	src.recipes[espressoID] = []pos.Ingredient{
		{Name: "coffee beans", Quantity: 18, Unit: "g"},
		{Name: "water", Quantity: 30, Unit: "ml"},
	}
	src.recipes[paellaID] = []pos.Ingredient{
		{Name: "rice", Quantity: 120, Unit: "g"},
		{Name: "saffron", Quantity: 0, Unit: "g"}, // missing per-unit quantity
	}
	return src
}

func TestDeltas(t *testing.T) {
	tests := []struct {
		name     string
		items    []pos.OrderItem
		snapshot map[string]int
		want     map[string]float64
	}{
		{
			name:     "freshOrder",
			items:    []pos.OrderItem{{MenuItemID: espressoID, Quantity: 2}},
			snapshot: nil,
			want:     map[string]float64{"coffee beans": 36, "water": 60},
		},
		{
			name:     "increaseFromSnapshot",
			items:    []pos.OrderItem{{MenuItemID: espressoID, Quantity: 5}},
			snapshot: map[string]int{espressoID.String(): 2},
			want:     map[string]float64{"coffee beans": 54, "water": 90},
		},
		{
			name:     "unchangedQuantitySkipped",
			items:    []pos.OrderItem{{MenuItemID: espressoID, Quantity: 2}},
			snapshot: map[string]int{espressoID.String(): 2},
			want:     map[string]float64{},
		},
		{
			name:     "decreaseNeverRestores",
			items:    []pos.OrderItem{{MenuItemID: espressoID, Quantity: 1}},
			snapshot: map[string]int{espressoID.String(): 4},
			want:     map[string]float64{},
		},
		{
			name:     "zeroQuantityIngredientSkipped",
			items:    []pos.OrderItem{{MenuItemID: paellaID, Quantity: 1}},
			snapshot: nil,
			want:     map[string]float64{"rice": 120},
		},
		{
			name: "mixedItems",
			items: []pos.OrderItem{
				{MenuItemID: espressoID, Quantity: 3},
				{MenuItemID: paellaID, Quantity: 1},
			},
			snapshot: map[string]int{espressoID.String(): 2, paellaID.String(): 2},
			want:     map[string]float64{"coffee beans": 18, "water": 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deltas, err := Deltas(context.Background(), recipeSource(), tt.items, tt.snapshot)
			if err != nil {
				t.Fatalf("Deltas() error = %v", err)
			}

			got := map[string]float64{}
			for _, d := range deltas {
				if d.RequiredQty < 0 {
					t.Errorf("delta for %s is negative: %v", d.Ingredient, d.RequiredQty)
				}
				got[d.Ingredient] += d.RequiredQty
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Deltas() = %v, want %v", got, tt.want)
			}
			for name, qty := range tt.want {
				if got[name] != qty {
					t.Errorf("delta[%s] = %v, want %v", name, got[name], qty)
				}
			}
		})
	}
}

func TestDeltasIdempotent(t *testing.T) {
	items := []pos.OrderItem{{MenuItemID: espressoID, Quantity: 4}}
	snapshot := map[string]int{espressoID.String(): 1}
	src := recipeSource()

	first, err := Deltas(context.Background(), src, items, snapshot)
	if err != nil {
		t.Fatalf("Deltas() error = %v", err)
	}
	second, err := Deltas(context.Background(), src, items, snapshot)
	if err != nil {
		t.Fatalf("Deltas() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("repeated calls differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("repeated calls differ at %d: %v vs %v", i, first[i], second[i])
		}
	}
	if snapshot[espressoID.String()] != 1 {
		t.Error("Deltas() must not mutate the snapshot")
	}
}

// Advancing the snapshot between cycles yields the incremental delta,
// not the full quantity again.
func TestDeltasSnapshotAdvancement(t *testing.T) {
	src := recipeSource()

	items := []pos.OrderItem{{MenuItemID: espressoID, Quantity: 2}}
	deltas, err := Deltas(context.Background(), src, items, map[string]int{})
	if err != nil {
		t.Fatalf("Deltas() error = %v", err)
	}
	if got := deltas[0].RequiredQty; got != 2*18 {
		t.Errorf("first cycle beans = %v, want %v", got, 2*18)
	}

	// Snapshot advanced to {2}; quantity later raised to 5.
	items[0].Quantity = 5
	deltas, err = Deltas(context.Background(), src, items, map[string]int{espressoID.String(): 2})
	if err != nil {
		t.Fatalf("Deltas() error = %v", err)
	}
	if got := deltas[0].RequiredQty; got != 3*18 {
		t.Errorf("second cycle beans = %v, want %v (3 units, not 5)", got, 3*18)
	}
}

func TestDeltasIngredientLookupFailure(t *testing.T) {
	src := newMockIngredientSource()
	src.IngredientsFunc = func(ctx context.Context, menuItemID uuid.UUID) ([]pos.Ingredient, error) {
		return nil, errRemoteDown
	}

	items := []pos.OrderItem{{MenuItemID: espressoID, Quantity: 1}}
	_, err := Deltas(context.Background(), src, items, nil)
	if err == nil {
		t.Fatal("Deltas() should surface ingredient lookup failures")
	}
}
