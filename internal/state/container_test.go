package state

import (
	"testing"

	"github.com/google/uuid"

	"github.com/comandaclub/comanda/internal/pos"
)

var (
	testRestaurantID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440001")
	testMenuItemID   = uuid.MustParse("550e8400-e29b-41d4-a716-446655440010")
)

func newTestContainer() *Container {
	return NewContainer(testRestaurantID, nil)
}

func espressoLine(qty int) *pos.OrderItem {
	return &pos.OrderItem{
		MenuItemID: testMenuItemID,
		Name:       "Espresso",
		UnitPrice:  2.5,
		Quantity:   qty,
	}
}

func openOrder(t *testing.T, c *Container, qty int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := c.Dispatch(Action{Type: ActionOrderOpened, OrderID: id, Item: espressoLine(qty)})
	if err != nil {
		t.Fatalf("cannot open order: %v", err)
	}
	return id
}

func TestContainerOpenOrder(t *testing.T) {
	c := newTestContainer()
	id := openOrder(t, c, 2)

	o := c.Order(id)
	if o == nil {
		t.Fatal("order not found after open")
	}
	if o.RestaurantID != testRestaurantID {
		t.Errorf("RestaurantID = %s, want container's", o.RestaurantID)
	}
	if o.Revision != 1 {
		t.Errorf("Revision = %d, want 1", o.Revision)
	}
	if o.IsSaved {
		t.Error("a fresh order must not be flagged saved")
	}

	err := c.Dispatch(Action{Type: ActionOrderOpened, OrderID: id})
	if err == nil {
		t.Error("reopening an existing order should fail")
	}
}

func TestContainerEditsClearSavedFlag(t *testing.T) {
	c := newTestContainer()
	id := openOrder(t, c, 1)

	if !c.MarkSaved(id, 1) {
		t.Fatal("MarkSaved should succeed with the matching revision")
	}
	if !c.Order(id).IsSaved {
		t.Fatal("order should be flagged saved")
	}

	err := c.Dispatch(Action{Type: ActionItemAdded, OrderID: id, Item: espressoLine(1)})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	o := c.Order(id)
	if o.IsSaved {
		t.Error("an edit must clear the saved flag")
	}
	if o.Revision != 2 {
		t.Errorf("Revision = %d after edit, want 2", o.Revision)
	}
}

func TestContainerMarkSavedRevisionGate(t *testing.T) {
	c := newTestContainer()
	id := openOrder(t, c, 1)

	// An edit lands while a write carrying revision 1 is in flight.
	c.Dispatch(Action{Type: ActionItemAdded, OrderID: id, Item: espressoLine(1)})

	if c.MarkSaved(id, 1) {
		t.Error("MarkSaved with a stale revision must not flag the order clean")
	}
	if c.Order(id).IsSaved {
		t.Error("order must stay unsaved when the revision moved on")
	}
	if !c.MarkSaved(id, 2) {
		t.Error("MarkSaved with the current revision should succeed")
	}
}

func TestContainerRemoveLastItemDiscardsOrder(t *testing.T) {
	c := newTestContainer()
	id := openOrder(t, c, 1)

	err := c.Dispatch(Action{Type: ActionItemRemoved, OrderID: id, MenuItemID: testMenuItemID})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if c.Order(id) != nil {
		t.Error("an order reduced to zero items must be discarded")
	}
}

func TestContainerQuantityZeroDiscardsOrder(t *testing.T) {
	c := newTestContainer()
	id := openOrder(t, c, 3)

	err := c.Dispatch(Action{Type: ActionItemQuantity, OrderID: id, MenuItemID: testMenuItemID, Quantity: 0})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if c.Order(id) != nil {
		t.Error("setting the last item to zero must discard the order")
	}
}

func TestContainerCompleteEmptyOrderFails(t *testing.T) {
	c := newTestContainer()
	id := uuid.New()
	if err := c.Dispatch(Action{Type: ActionOrderOpened, OrderID: id}); err != nil {
		t.Fatalf("cannot open order: %v", err)
	}

	err := c.Dispatch(Action{Type: ActionOrderCompleted, OrderID: id})
	if err == nil {
		t.Error("completing an empty order should fail")
	}
	if c.Order(id) != nil {
		t.Error("the empty order must be discarded, not completed")
	}
}

func TestContainerCompletedOrderRejectsEdits(t *testing.T) {
	c := newTestContainer()
	id := openOrder(t, c, 1)
	if err := c.Dispatch(Action{Type: ActionOrderCompleted, OrderID: id}); err != nil {
		t.Fatalf("cannot complete order: %v", err)
	}

	err := c.Dispatch(Action{Type: ActionItemAdded, OrderID: id, Item: espressoLine(1)})
	if err == nil {
		t.Error("a completed order must reject further edits")
	}

	o := c.Order(id)
	if o == nil {
		t.Fatal("completed order disappeared after a rejected edit")
	}
	if !o.IsCompleted() {
		t.Errorf("Status = %q after rejected edit, completion is terminal", o.Status)
	}
	if len(o.Items) != 1 || o.Items[0].Quantity != 1 {
		t.Errorf("Items = %+v, rejected edit must not touch the order", o.Items)
	}
}

func TestContainerDerivedMembership(t *testing.T) {
	c := newTestContainer()
	ongoing := openOrder(t, c, 1)
	completed := openOrder(t, c, 2)
	if err := c.Dispatch(Action{Type: ActionOrderCompleted, OrderID: completed}); err != nil {
		t.Fatalf("cannot complete order: %v", err)
	}

	ids := c.OngoingIDs()
	if len(ids) != 1 || ids[0] != ongoing {
		t.Errorf("OngoingIDs() = %v, want [%s]", ids, ongoing)
	}
	ids = c.CompletedIDs()
	if len(ids) != 1 || ids[0] != completed {
		t.Errorf("CompletedIDs() = %v, want [%s]", ids, completed)
	}
}

func TestContainerDiscountValidation(t *testing.T) {
	c := newTestContainer()
	id := openOrder(t, c, 1)

	err := c.Dispatch(Action{
		Type:       ActionDiscountApplied,
		OrderID:    id,
		MenuItemID: testMenuItemID,
		Discount:   &pos.Discount{Percent: 10, Amount: 2},
	})
	if err == nil {
		t.Error("a discount combining percent and amount should be rejected")
	}

	err = c.Dispatch(Action{
		Type:       ActionDiscountApplied,
		OrderID:    id,
		MenuItemID: testMenuItemID,
		Discount:   &pos.Discount{Percent: 10},
	})
	if err != nil {
		t.Errorf("valid discount rejected: %v", err)
	}
}

func TestContainerReviewDoesNotDirty(t *testing.T) {
	c := newTestContainer()
	id := openOrder(t, c, 1)
	c.MarkSaved(id, 1)

	if err := c.Dispatch(Action{Type: ActionOrderReviewed, OrderID: id}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	o := c.Order(id)
	if !o.IsReviewed {
		t.Error("order should be flagged reviewed")
	}
	if !o.IsSaved {
		t.Error("review must not clear the saved flag")
	}
	if o.Revision != 1 {
		t.Errorf("Revision = %d, review must not bump it", o.Revision)
	}
}

func TestContainerMiddlewareSeesAppliedAction(t *testing.T) {
	c := newTestContainer()
	var seen []ActionType
	c.Use(func(a Action) {
		seen = append(seen, a.Type)
		// State is already mutated when middleware runs.
		if a.Type == ActionItemAdded && c.Order(a.OrderID).Items[0].Quantity != 2 {
			t.Error("middleware should observe post-mutation state")
		}
	})

	id := openOrder(t, c, 1)
	c.Dispatch(Action{Type: ActionItemAdded, OrderID: id, Item: espressoLine(1)})

	if len(seen) != 2 || seen[0] != ActionOrderOpened || seen[1] != ActionItemAdded {
		t.Errorf("middleware saw %v, want [opened, added]", seen)
	}

	// Failed actions never reach middleware.
	seen = nil
	if err := c.Dispatch(Action{Type: ActionItemAdded, OrderID: id}); err == nil {
		t.Fatal("item add without payload should fail")
	}
	if len(seen) != 0 {
		t.Error("middleware must not run for rejected actions")
	}
}

func TestContainerWarmSkipsEmptyAndMarksClean(t *testing.T) {
	c := newTestContainer()

	full := pos.NewOrder(testRestaurantID)
	full.Items = []pos.OrderItem{*espressoLine(2)}
	empty := pos.NewOrder(testRestaurantID)

	c.Warm([]*pos.Order{full, empty, nil})

	o := c.Order(full.ID)
	if o == nil {
		t.Fatal("warmed order not found")
	}
	if !o.IsSaved {
		t.Error("warmed orders start clean")
	}
	if c.Order(empty.ID) != nil {
		t.Error("empty orders are not warmed")
	}
}

func TestContainerApplyRemoteClones(t *testing.T) {
	c := newTestContainer()

	o := pos.NewOrder(testRestaurantID)
	o.Items = []pos.OrderItem{*espressoLine(1)}
	c.ApplyRemote(o)

	o.Items[0].Quantity = 99
	if got := c.Order(o.ID).Items[0].Quantity; got != 1 {
		t.Errorf("quantity = %d, container must not share storage with the caller", got)
	}
}

func TestContainerNoticesDrain(t *testing.T) {
	c := newTestContainer()
	id := uuid.New()

	c.PushNotice(Notice{Level: "error", Message: "write failed", OrderID: id})

	notices := c.Notices()
	if len(notices) != 1 {
		t.Fatalf("notices = %d, want 1", len(notices))
	}
	if notices[0].OrderID != id || notices[0].At.IsZero() {
		t.Errorf("notice = %+v, want order id and timestamp set", notices[0])
	}
	if got := c.Notices(); len(got) != 0 {
		t.Errorf("second drain = %d notices, want 0", len(got))
	}
}

func TestContainerAdvanceSavedQuantities(t *testing.T) {
	c := newTestContainer()
	id := openOrder(t, c, 3)

	quantities := map[string]int{testMenuItemID.String(): 3}
	c.AdvanceSavedQuantities(id, quantities)

	quantities[testMenuItemID.String()] = 99
	if got := c.Order(id).SavedQuantities[testMenuItemID.String()]; got != 3 {
		t.Errorf("saved quantity = %d, baseline must be copied, not aliased", got)
	}
}
