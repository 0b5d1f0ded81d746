package pos

import (
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// Receipt is the immutable record produced when an order completes.
type Receipt struct {
	ID            uuid.UUID     `json:"id" bson:"_id"`
	RestaurantID  uuid.UUID     `json:"restaurant_id" bson:"restaurant_id"`
	OrderID       uuid.UUID     `json:"order_id" bson:"order_id"`
	TableID       uuid.UUID     `json:"table_id,omitempty" bson:"table_id,omitempty"`
	CustomerName  string        `json:"customer_name,omitempty" bson:"customer_name,omitempty"`
	Lines         []ReceiptLine `json:"lines" bson:"lines"`
	Subtotal      float64       `json:"subtotal" bson:"subtotal"`
	DiscountTotal float64       `json:"discount_total" bson:"discount_total"`
	Total         float64       `json:"total" bson:"total"`
	PaymentMethod string        `json:"payment_method" bson:"payment_method"`
	PaymentAmount float64       `json:"payment_amount" bson:"payment_amount"`
	Change        float64       `json:"change" bson:"change"`
	IssuedAt      time.Time     `json:"issued_at" bson:"issued_at"`
}

type ReceiptLine struct {
	Name      string  `json:"name" bson:"name"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price"`
	Total     float64 `json:"total" bson:"total"`
}

func (r *Receipt) GetID() uuid.UUID {
	return r.ID
}

func (r *Receipt) ResourceType() string {
	return "receipt"
}

func (r *Receipt) SetID(id uuid.UUID) {
	r.ID = id
}

func (r *Receipt) EnsureID() {
	if r.ID == uuid.Nil {
		r.ID = aqm.GenerateNewID()
	}
}

func (r *Receipt) BeforeCreate() {
	r.EnsureID()
	if r.IssuedAt.IsZero() {
		r.IssuedAt = time.Now()
	}
}

// BuildReceipt derives a receipt from an order and the payment taken
// for it. Change is never negative.
func BuildReceipt(o *Order, method string, amount float64) *Receipt {
	r := &Receipt{
		ID:            aqm.GenerateNewID(),
		RestaurantID:  o.RestaurantID,
		OrderID:       o.ID,
		TableID:       o.TableID,
		CustomerName:  o.CustomerName,
		PaymentMethod: method,
		PaymentAmount: amount,
		IssuedAt:      time.Now(),
	}
	for _, it := range o.Items {
		r.Lines = append(r.Lines, ReceiptLine{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.LineTotal(),
		})
	}
	r.Subtotal = o.Subtotal()
	r.Total = o.Total()
	r.DiscountTotal = r.Subtotal - r.Total
	if change := amount - r.Total; change > 0 {
		r.Change = change
	}
	return r
}
