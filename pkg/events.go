package pkg

import "time"

const (
	// OrderTopic carries order lifecycle events emitted by the sync
	// pipeline.
	OrderTopic = "pos.orders"
	// ReceiptTopic carries receipt creation events.
	ReceiptTopic = "pos.receipts"
	// MenuTopic carries menu item changes consumed by cache holders.
	MenuTopic = "pos.menu"
	// StockTopic carries low-stock alerts raised by inventory deduction.
	StockTopic = "pos.stock"

	EventOrderCompleted  = "order.completed"
	EventReceiptCreated  = "receipt.created"
	EventMenuItemChanged = "menu.item.changed"
	EventMenuItemRemoved = "menu.item.removed"
	EventStockLow        = "stock.low"
)

type OrderCompletedEvent struct {
	EventType    string    `json:"event_type"`
	RestaurantID string    `json:"restaurant_id"`
	OrderID      string    `json:"order_id"`
	Total        float64   `json:"total"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type ReceiptCreatedEvent struct {
	EventType    string    `json:"event_type"`
	RestaurantID string    `json:"restaurant_id"`
	ReceiptID    string    `json:"receipt_id"`
	OrderID      string    `json:"order_id"`
	Total        float64   `json:"total"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// MenuItemChangedEvent tells cache holders to drop or refresh the item.
type MenuItemChangedEvent struct {
	EventType    string    `json:"event_type"`
	RestaurantID string    `json:"restaurant_id"`
	MenuItemID   string    `json:"menu_item_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type StockLowEvent struct {
	EventType    string    `json:"event_type"`
	RestaurantID string    `json:"restaurant_id"`
	Ingredient   string    `json:"ingredient"`
	Quantity     float64   `json:"quantity"`
	MinThreshold float64   `json:"min_threshold"`
	Unit         string    `json:"unit,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
