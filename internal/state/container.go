package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/internal/pos"
)

// Middleware observes every applied action after the state mutation,
// on the dispatching goroutine. The sync orchestrator registers here.
type Middleware func(Action)

// Notice is a user-visible message pushed by the pipeline, currently
// only for completion writes that exhausted their retry.
type Notice struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	OrderID uuid.UUID `json:"order_id"`
	At      time.Time `json:"at"`
}

// Container holds the in-memory optimistic order state for one
// restaurant. Reducers apply actions under lock; registered middleware
// is notified afterwards. Ongoing/completed membership is derived from
// order status on read, never tracked separately. Orders reduced to
// zero items are discarded from state, never persisted.
type Container struct {
	mu           sync.RWMutex
	restaurantID uuid.UUID
	orders       map[uuid.UUID]*pos.Order
	notices      []Notice
	mws          []Middleware
	logger       aqm.Logger
}

func NewContainer(restaurantID uuid.UUID, logger aqm.Logger) *Container {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Container{
		restaurantID: restaurantID,
		orders:       make(map[uuid.UUID]*pos.Order),
		logger:       logger,
	}
}

func (c *Container) RestaurantID() uuid.UUID {
	return c.restaurantID
}

// Use registers a middleware. Not safe to call once dispatching begins.
func (c *Container) Use(mw Middleware) {
	c.mws = append(c.mws, mw)
}

// Dispatch applies an action and notifies middleware. The returned
// error covers invalid actions only; remote effects happen behind the
// middleware and surface through notices.
func (c *Container) Dispatch(a Action) error {
	c.mu.Lock()
	err := c.reduce(&a)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	for _, mw := range c.mws {
		mw(a)
	}
	return nil
}

func (c *Container) reduce(a *Action) error {
	switch a.Type {
	case ActionOrderOpened:
		if a.OrderID == uuid.Nil {
			a.OrderID = aqm.GenerateNewID()
		}
		if _, exists := c.orders[a.OrderID]; exists {
			return fmt.Errorf("order %s already open", a.OrderID)
		}
		o := pos.NewOrder(c.restaurantID)
		o.ID = a.OrderID
		o.TableID = a.TableID
		o.BeforeCreate()
		if a.Item != nil {
			o.AddItem(*a.Item)
		}
		o.Revision = 1
		c.orders[o.ID] = o
		return nil

	case ActionItemAdded:
		if a.Item == nil {
			return fmt.Errorf("item payload is required")
		}
		o, exists := c.orders[a.OrderID]
		if exists {
			if o.IsCompleted() {
				return fmt.Errorf("order %s is completed", a.OrderID)
			}
		} else {
			if a.OrderID == uuid.Nil {
				return fmt.Errorf("order %s not found", a.OrderID)
			}
			// First item add creates the order.
			o = pos.NewOrder(c.restaurantID)
			o.ID = a.OrderID
			o.TableID = a.TableID
			o.BeforeCreate()
			c.orders[o.ID] = o
		}
		o.AddItem(*a.Item)
		o.Revision++
		return nil

	case ActionItemRemoved:
		o, err := c.editable(a.OrderID)
		if err != nil {
			return err
		}
		if !o.RemoveItem(a.MenuItemID) {
			return fmt.Errorf("item %s not on order", a.MenuItemID)
		}
		o.Revision++
		if o.IsEmpty() {
			delete(c.orders, o.ID)
		}
		return nil

	case ActionItemQuantity:
		o, err := c.editable(a.OrderID)
		if err != nil {
			return err
		}
		if !o.SetItemQuantity(a.MenuItemID, a.Quantity) {
			return fmt.Errorf("item %s not on order", a.MenuItemID)
		}
		o.Revision++
		if o.IsEmpty() {
			delete(c.orders, o.ID)
		}
		return nil

	case ActionDiscountApplied:
		if err := a.Discount.Validate(); err != nil {
			return err
		}
		o, err := c.editable(a.OrderID)
		if err != nil {
			return err
		}
		if !o.SetItemDiscount(a.MenuItemID, a.Discount) {
			return fmt.Errorf("item %s not on order", a.MenuItemID)
		}
		o.Revision++
		return nil

	case ActionCustomerAssigned:
		o, err := c.editable(a.OrderID)
		if err != nil {
			return err
		}
		o.AssignCustomer(a.Customer)
		o.Revision++
		return nil

	case ActionOrderReviewed:
		o, ok := c.orders[a.OrderID]
		if !ok {
			return fmt.Errorf("order %s not found", a.OrderID)
		}
		// Review is a local-only flag; it does not dirty the order.
		o.MarkReviewed()
		return nil

	case ActionOrderSaved:
		if _, ok := c.orders[a.OrderID]; !ok {
			return fmt.Errorf("order %s not found", a.OrderID)
		}
		return nil

	case ActionOrderCompleted:
		o, ok := c.orders[a.OrderID]
		if !ok {
			return fmt.Errorf("order %s not found", a.OrderID)
		}
		if o.IsEmpty() {
			delete(c.orders, o.ID)
			return fmt.Errorf("cannot complete an empty order")
		}
		o.Complete()
		o.Revision++
		return nil

	case ActionOrderCancelled:
		if _, ok := c.orders[a.OrderID]; !ok {
			return fmt.Errorf("order %s not found", a.OrderID)
		}
		delete(c.orders, a.OrderID)
		return nil
	}
	return fmt.Errorf("unknown action type %q", a.Type)
}

func (c *Container) editable(id uuid.UUID) (*pos.Order, error) {
	o, ok := c.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s not found", id)
	}
	if o.IsCompleted() {
		return nil, fmt.Errorf("order %s is completed", id)
	}
	return o, nil
}

// Order returns a deep copy of the order, or nil when absent.
func (c *Container) Order(id uuid.UUID) *pos.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.orders[id].Clone()
}

func (c *Container) OngoingIDs() []uuid.UUID {
	return c.idsByStatus(pos.StatusOngoing)
}

func (c *Container) CompletedIDs() []uuid.UUID {
	return c.idsByStatus(pos.StatusCompleted)
}

func (c *Container) idsByStatus(status string) []uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var ids []uuid.UUID
	for id, o := range c.orders {
		if o.Status == status {
			ids = append(ids, id)
		}
	}
	return ids
}

// Warm loads persisted orders into state, marking them clean.
func (c *Container) Warm(orders []*pos.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range orders {
		if o == nil || o.IsEmpty() {
			continue
		}
		cp := o.Clone()
		cp.IsSaved = true
		c.orders[cp.ID] = cp
	}
}

// ApplyRemote replaces the local copy with a reconciled order. List
// membership follows from the order's status on the next read.
func (c *Container) ApplyRemote(o *pos.Order) {
	if o == nil {
		return
	}
	c.mu.Lock()
	c.orders[o.ID] = o.Clone()
	c.mu.Unlock()
}

// Discard drops an order from local state without remote effects.
func (c *Container) Discard(id uuid.UUID) {
	c.mu.Lock()
	delete(c.orders, id)
	c.mu.Unlock()
}

// MarkSaved flags the order clean, but only when no edit landed since
// the write that is reporting success.
func (c *Container) MarkSaved(id uuid.UUID, revision int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.orders[id]
	if !ok || o.Revision != revision {
		return false
	}
	o.IsSaved = true
	return true
}

// AdvanceSavedQuantities moves the delta baseline forward after the
// derived side effects for it were enqueued.
func (c *Container) AdvanceSavedQuantities(id uuid.UUID, quantities map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.orders[id]
	if !ok {
		return
	}
	o.SavedQuantities = make(map[string]int, len(quantities))
	for k, v := range quantities {
		o.SavedQuantities[k] = v
	}
}

// PushNotice records a user-visible message.
func (c *Container) PushNotice(n Notice) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	c.mu.Lock()
	c.notices = append(c.notices, n)
	c.mu.Unlock()
	c.logger.Info("notice pushed", "order_id", n.OrderID.String(), "message", n.Message)
}

// Notices drains and returns the accumulated notices.
func (c *Container) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}
