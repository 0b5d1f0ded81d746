package pos

import (
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const (
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

// Order is the central mutable aggregate. Items form a set keyed by
// MenuItemID; mutators keep that property. SavedQuantities is the last
// quantity state whose stock side effects have already been applied and
// is the baseline for delta computation. IsSaved, IsReviewed and
// Revision exist only in process memory and are never persisted.
type Order struct {
	ID              uuid.UUID      `json:"id" bson:"_id"`
	RestaurantID    uuid.UUID      `json:"restaurant_id" bson:"restaurant_id"`
	TableID         uuid.UUID      `json:"table_id" bson:"table_id"`
	Status          string         `json:"status" bson:"status"`
	Items           []OrderItem    `json:"items" bson:"items"`
	SavedQuantities map[string]int `json:"saved_quantities,omitempty" bson:"saved_quantities,omitempty"`
	CustomerName    string         `json:"customer_name,omitempty" bson:"customer_name,omitempty"`
	IsSaved         bool           `json:"is_saved" bson:"-"`
	IsReviewed      bool           `json:"is_reviewed" bson:"-"`
	Revision        int64          `json:"-" bson:"-"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" bson:"updated_at"`
	CompletedAt     time.Time      `json:"completed_at" bson:"completed_at"`
}

type OrderItem struct {
	MenuItemID uuid.UUID `json:"menu_item_id" bson:"menu_item_id"`
	Name       string    `json:"name" bson:"name"`
	UnitPrice  float64   `json:"unit_price" bson:"unit_price"`
	Quantity   int       `json:"quantity" bson:"quantity"`
	Discount   *Discount `json:"discount,omitempty" bson:"discount,omitempty"`
	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Discount carries either a percentage or a fixed amount, never both.
type Discount struct {
	Percent float64 `json:"percent,omitempty" bson:"percent,omitempty"`
	Amount  float64 `json:"amount,omitempty" bson:"amount,omitempty"`
}

func (d *Discount) Validate() error {
	if d == nil {
		return nil
	}
	if d.Percent != 0 && d.Amount != 0 {
		return fmt.Errorf("discount cannot combine percent and fixed amount")
	}
	if d.Percent < 0 || d.Percent > 100 {
		return fmt.Errorf("discount percent out of range: %v", d.Percent)
	}
	if d.Amount < 0 {
		return fmt.Errorf("discount amount cannot be negative: %v", d.Amount)
	}
	return nil
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) SetID(id uuid.UUID) {
	o.ID = id
}

func NewOrder(restaurantID uuid.UUID) *Order {
	return &Order{
		ID:           aqm.GenerateNewID(),
		RestaurantID: restaurantID,
		Status:       StatusOngoing,
	}
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = aqm.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

func (o *Order) IsCompleted() bool {
	return o.Status == StatusCompleted
}

func (o *Order) IsEmpty() bool {
	return len(o.Items) == 0
}

// Item returns the line for the given menu item, if present.
func (o *Order) Item(menuItemID uuid.UUID) (OrderItem, bool) {
	if i := o.itemIndex(menuItemID); i >= 0 {
		return o.Items[i], true
	}
	return OrderItem{}, false
}

func (o *Order) itemIndex(menuItemID uuid.UUID) int {
	for i := range o.Items {
		if o.Items[i].MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

// AddItem merges the given line into the order. When a line for the same
// menu item already exists, quantities are added and the newer name,
// price and notes win.
func (o *Order) AddItem(item OrderItem) {
	if i := o.itemIndex(item.MenuItemID); i >= 0 {
		o.Items[i].Quantity += item.Quantity
		if item.Name != "" {
			o.Items[i].Name = item.Name
		}
		if item.UnitPrice != 0 {
			o.Items[i].UnitPrice = item.UnitPrice
		}
		if item.Notes != "" {
			o.Items[i].Notes = item.Notes
		}
	} else {
		o.Items = append(o.Items, item)
	}
	o.IsSaved = false
	o.UpdatedAt = time.Now()
}

func (o *Order) RemoveItem(menuItemID uuid.UUID) bool {
	i := o.itemIndex(menuItemID)
	if i < 0 {
		return false
	}
	o.Items = append(o.Items[:i], o.Items[i+1:]...)
	o.IsSaved = false
	o.UpdatedAt = time.Now()
	return true
}

// SetItemQuantity sets the quantity for a line. A quantity of zero or
// less removes the line.
func (o *Order) SetItemQuantity(menuItemID uuid.UUID, quantity int) bool {
	if quantity <= 0 {
		return o.RemoveItem(menuItemID)
	}
	i := o.itemIndex(menuItemID)
	if i < 0 {
		return false
	}
	o.Items[i].Quantity = quantity
	o.IsSaved = false
	o.UpdatedAt = time.Now()
	return true
}

// SetItemDiscount replaces the discount on a line. A nil discount
// clears it.
func (o *Order) SetItemDiscount(menuItemID uuid.UUID, d *Discount) bool {
	i := o.itemIndex(menuItemID)
	if i < 0 {
		return false
	}
	o.Items[i].Discount = d
	o.IsSaved = false
	o.UpdatedAt = time.Now()
	return true
}

func (o *Order) AssignCustomer(name string) {
	o.CustomerName = name
	o.IsSaved = false
	o.UpdatedAt = time.Now()
}

// Complete transitions the order to its terminal status. Completing an
// already completed order is a no-op.
func (o *Order) Complete() {
	if o.IsCompleted() {
		return
	}
	o.Status = StatusCompleted
	o.CompletedAt = time.Now()
	o.UpdatedAt = time.Now()
}

func (o *Order) MarkReviewed() {
	o.IsReviewed = true
}

// CurrentQuantities maps each line's menu item id to its quantity.
// String keys keep the map storable as a document field.
func (o *Order) CurrentQuantities() map[string]int {
	out := make(map[string]int, len(o.Items))
	for _, it := range o.Items {
		out[it.MenuItemID.String()] = it.Quantity
	}
	return out
}

// LineTotal is the item price after its discount, never below zero.
func (it OrderItem) LineTotal() float64 {
	gross := it.UnitPrice * float64(it.Quantity)
	if it.Discount == nil {
		return gross
	}
	total := gross
	if it.Discount.Percent > 0 {
		total = gross * (1 - it.Discount.Percent/100)
	} else if it.Discount.Amount > 0 {
		total = gross - it.Discount.Amount
	}
	if total < 0 {
		return 0
	}
	return total
}

func (o *Order) Subtotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return sum
}

func (o *Order) Total() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.LineTotal()
	}
	return sum
}

// Clone returns a deep copy so callers can hand out order state without
// sharing the items slice or the snapshot map.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	if o.Items != nil {
		cp.Items = make([]OrderItem, len(o.Items))
		copy(cp.Items, o.Items)
		for i := range cp.Items {
			if cp.Items[i].Discount != nil {
				d := *cp.Items[i].Discount
				cp.Items[i].Discount = &d
			}
		}
	}
	if o.SavedQuantities != nil {
		cp.SavedQuantities = make(map[string]int, len(o.SavedQuantities))
		for k, v := range o.SavedQuantities {
			cp.SavedQuantities[k] = v
		}
	}
	return &cp
}

// OrderSnapshot is the persisted shape of an order as delivered by the
// document store. It carries no local-only flags; reconciliation decides
// per field what survives into the local copy.
type OrderSnapshot struct {
	ID              uuid.UUID      `json:"id" bson:"_id"`
	RestaurantID    uuid.UUID      `json:"restaurant_id" bson:"restaurant_id"`
	TableID         uuid.UUID      `json:"table_id" bson:"table_id"`
	Status          string         `json:"status" bson:"status"`
	Items           []OrderItem    `json:"items" bson:"items"`
	SavedQuantities map[string]int `json:"saved_quantities" bson:"saved_quantities"`
	CustomerName    string         `json:"customer_name" bson:"customer_name"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" bson:"updated_at"`
	CompletedAt     time.Time      `json:"completed_at" bson:"completed_at"`
}
