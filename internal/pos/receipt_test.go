package pos

import (
	"testing"
)

func TestBuildReceipt(t *testing.T) {
	o := NewOrder(orderRestaurantID)
	o.CustomerName = "Nadia"
	o.AddItem(OrderItem{MenuItemID: espressoID, Name: "Espresso", UnitPrice: 2.5, Quantity: 4})
	o.AddItem(OrderItem{MenuItemID: paellaID, Name: "Paella", UnitPrice: 14, Quantity: 1, Discount: &Discount{Percent: 50}})

	r := BuildReceipt(o, "cash", 20)

	if r.OrderID != o.ID || r.RestaurantID != o.RestaurantID {
		t.Error("receipt must reference its order and restaurant")
	}
	if r.CustomerName != "Nadia" {
		t.Errorf("CustomerName = %q", r.CustomerName)
	}
	if len(r.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(r.Lines))
	}
	if r.Subtotal != 24 {
		t.Errorf("Subtotal = %v, want 24", r.Subtotal)
	}
	if r.Total != 17 {
		t.Errorf("Total = %v, want 17", r.Total)
	}
	if r.DiscountTotal != 7 {
		t.Errorf("DiscountTotal = %v, want 7", r.DiscountTotal)
	}
	if r.Change != 3 {
		t.Errorf("Change = %v, want 3", r.Change)
	}
	if r.IssuedAt.IsZero() {
		t.Error("IssuedAt should be stamped")
	}
}

func TestBuildReceiptChangeNeverNegative(t *testing.T) {
	o := NewOrder(orderRestaurantID)
	o.AddItem(OrderItem{MenuItemID: espressoID, UnitPrice: 2.5, Quantity: 2})

	r := BuildReceipt(o, "card", 5)
	if r.Change != 0 {
		t.Errorf("Change = %v for exact payment, want 0", r.Change)
	}

	r = BuildReceipt(o, "card", 3)
	if r.Change != 0 {
		t.Errorf("Change = %v for underpayment, want clamped to 0", r.Change)
	}
}

func TestStockLevelIsLow(t *testing.T) {
	tests := []struct {
		name  string
		level StockLevel
		want  bool
	}{
		{"aboveThreshold", StockLevel{Quantity: 500, MinThreshold: 400}, false},
		{"atThreshold", StockLevel{Quantity: 400, MinThreshold: 400}, true},
		{"belowThreshold", StockLevel{Quantity: 10, MinThreshold: 400}, true},
		{"noThreshold", StockLevel{Quantity: -5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.IsLow(); got != tt.want {
				t.Errorf("IsLow() = %v, want %v", got, tt.want)
			}
		})
	}
}
