package state

import (
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/internal/pos"
)

type ActionType string

const (
	ActionOrderOpened      ActionType = "order.opened"
	ActionItemAdded        ActionType = "item.added"
	ActionItemRemoved      ActionType = "item.removed"
	ActionItemQuantity     ActionType = "item.quantity"
	ActionDiscountApplied  ActionType = "discount.applied"
	ActionCustomerAssigned ActionType = "customer.assigned"
	ActionOrderReviewed    ActionType = "order.reviewed"
	ActionOrderSaved       ActionType = "order.saved"
	ActionOrderCompleted   ActionType = "order.completed"
	ActionOrderCancelled   ActionType = "order.cancelled"
)

type Payment struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

// Action is one state mutation request. Each type reads only the
// fields relevant to it.
type Action struct {
	Type       ActionType
	OrderID    uuid.UUID
	TableID    uuid.UUID
	Item       *pos.OrderItem
	MenuItemID uuid.UUID
	Quantity   int
	Discount   *pos.Discount
	Customer   string
	Payment    *Payment
}

// QuantityAffecting reports whether the action can change item
// quantities, which is what decides if a delta cycle follows the next
// successful write.
func (a Action) QuantityAffecting() bool {
	switch a.Type {
	case ActionOrderOpened, ActionItemAdded, ActionItemRemoved, ActionItemQuantity:
		return true
	}
	return false
}
