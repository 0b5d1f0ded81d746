package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/internal/pos"
	"github.com/comandaclub/comanda/internal/state"
	"github.com/comandaclub/comanda/internal/store"
	"github.com/comandaclub/comanda/pkg"
)

const (
	PhaseClean   = "clean"
	PhaseDirty   = "dirty"
	PhaseSyncing = "syncing"
)

const ordersCollection = "orders"

// resource is the per-order sync state. pending holds an inbound
// remote snapshot deferred while local edits are in flight.
type resource struct {
	phase    string
	dirtyQty bool
	pending  *pos.OrderSnapshot
}

type Options struct {
	Clock                Clock
	DebounceDelay        time.Duration
	DebounceMaxDelay     time.Duration
	DedupeTTL            time.Duration
	CompletionRetryDelay time.Duration
	Logger               aqm.Logger
}

// Orchestrator is the middleware between the state container and the
// document store. It observes mutation actions, coalesces edits into
// debounced deduplicated writes, drives the delta side channel, and
// folds inbound realtime snapshots back into local state. Each order
// moves through clean -> dirty -> syncing and back; a failed write
// leaves the order dirty so nothing is lost.
type Orchestrator struct {
	mu        sync.Mutex
	resources map[uuid.UUID]*resource

	container   *state.Container
	store       store.Store
	ingredients IngredientSource
	queue       *Queue
	publisher   events.Publisher
	debounce    *Debouncer
	dedupe      *Deduplicator
	reporter    *Reporter
	clock       Clock
	logger      aqm.Logger
	retryDelay  time.Duration
	unsub       func()
}

func NewOrchestrator(container *state.Container, st store.Store, ingredients IngredientSource, queue *Queue, publisher events.Publisher, opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = aqm.NewNoopLogger()
	}
	if opts.CompletionRetryDelay <= 0 {
		opts.CompletionRetryDelay = 3 * time.Second
	}
	o := &Orchestrator{
		resources:   make(map[uuid.UUID]*resource),
		container:   container,
		store:       st,
		ingredients: ingredients,
		queue:       queue,
		publisher:   publisher,
		dedupe:      NewDeduplicator(opts.Clock, opts.DedupeTTL),
		reporter:    NewReporter(opts.Logger),
		clock:       opts.Clock,
		logger:      opts.Logger,
		retryDelay:  opts.CompletionRetryDelay,
	}
	o.debounce = NewDebouncer(DebounceOptions{
		Clock:    opts.Clock,
		Delay:    opts.DebounceDelay,
		MaxDelay: opts.DebounceMaxDelay,
		OnError: func(key string, err error) {
			o.logger.Debug("debounced save failed", "key", key, "error", err)
		},
	})
	container.Use(o.Middleware)
	return o
}

func (o *Orchestrator) ordersPath() store.Path {
	return store.Path{RestaurantID: o.container.RestaurantID(), Collection: ordersCollection}
}

func (o *Orchestrator) saveKey(orderID uuid.UUID) string {
	return Key("saveOrder", o.container.RestaurantID(), orderID)
}

// Start warms local state from the persisted ongoing orders and begins
// consuming the store's realtime change feed.
func (o *Orchestrator) Start(ctx context.Context) error {
	var snaps []pos.OrderSnapshot
	err := o.store.List(ctx, o.ordersPath(), map[string]any{"status": pos.StatusOngoing}, &snaps)
	if err != nil {
		return fmt.Errorf("cannot warm order state: %w", err)
	}
	var orders []*pos.Order
	for i := range snaps {
		orders = append(orders, MergeOrder(nil, &snaps[i]))
	}
	o.container.Warm(orders)

	unsub, err := o.store.Listen(ctx, o.ordersPath(), o.handleChange)
	if err != nil {
		return fmt.Errorf("cannot listen on order changes: %w", err)
	}
	o.unsub = unsub
	o.logger.Info("sync orchestrator started",
		"restaurant_id", o.container.RestaurantID().String(), "orders", len(orders))
	return nil
}

func (o *Orchestrator) Stop(ctx context.Context) error {
	if o.unsub != nil {
		o.unsub()
	}
	o.debounce.Stop()
	return nil
}

// Middleware observes every applied container action and decides what
// part of the pipeline to drive. It runs on the dispatching goroutine;
// everything remote is pushed off it, except completion, whose write is
// launched immediately because reliability beats latency there.
func (o *Orchestrator) Middleware(a state.Action) {
	switch a.Type {
	case state.ActionOrderReviewed:
		// Purely local flag; nothing to sync.
		return

	case state.ActionOrderSaved:
		o.markDirty(a.OrderID, a.QuantityAffecting())
		o.armSave(a.OrderID)
		go o.debounce.Flush(o.saveKey(a.OrderID))
		return

	case state.ActionOrderCompleted:
		o.markDirty(a.OrderID, true)
		o.debounce.Cancel(o.saveKey(a.OrderID))
		o.completeOrder(a.OrderID, a.Payment)
		return

	case state.ActionOrderCancelled:
		o.debounce.Cancel(o.saveKey(a.OrderID))
		o.asyncLaunch(func() { o.deleteOrder(a.OrderID) })
		return
	}

	// Edit actions. An order missing from state was reduced to zero
	// items; it must be discarded remotely, never persisted.
	if o.container.Order(a.OrderID) == nil {
		o.debounce.Cancel(o.saveKey(a.OrderID))
		o.reporter.Report(&OpError{
			Op:           "saveOrder",
			RestaurantID: o.container.RestaurantID(),
			ResourceID:   a.OrderID,
			Kind:         KindInvariantViolation,
			Err:          fmt.Errorf("order reduced to zero items, discarding"),
		})
		o.asyncLaunch(func() { o.deleteOrder(a.OrderID) })
		return
	}

	o.markDirty(a.OrderID, a.QuantityAffecting())
	o.armSave(a.OrderID)
}

func (o *Orchestrator) armSave(orderID uuid.UUID) {
	o.debounce.Trigger(o.saveKey(orderID), func(ctx context.Context) error {
		return o.syncOrder(ctx, orderID)
	})
}

// syncOrder is the debounced write path. The deduplicated function
// reads the freshest container state at execution time, so a caller
// that joined an in-flight write must re-check state rather than assume
// its payload was the one transmitted.
func (o *Orchestrator) syncOrder(ctx context.Context, orderID uuid.UUID) error {
	order := o.container.Order(orderID)
	if order == nil {
		return o.deleteOrder(orderID)
	}
	if order.IsEmpty() {
		// Never persist an empty aggregate; the first item add re-arms.
		o.setPhase(orderID, PhaseDirty)
		return nil
	}
	o.setPhase(orderID, PhaseSyncing)

	var writtenRev int64
	_, err, shared := o.dedupe.Do(ctx, o.saveKey(orderID), func(ctx context.Context) (any, error) {
		cur := o.container.Order(orderID)
		if cur == nil {
			return nil, fmt.Errorf("order %s discarded", orderID)
		}
		writtenRev = cur.Revision
		return nil, o.writeOrder(ctx, cur)
	})
	if shared {
		o.reporter.Report(&OpError{
			Op:           "saveOrder",
			RestaurantID: o.container.RestaurantID(),
			ResourceID:   orderID,
			Kind:         KindDuplicateSuppressed,
		})
		// The in-flight write may not have carried this caller's state;
		// re-check rather than assume.
		if cur := o.container.Order(orderID); cur != nil && (err != nil || !cur.IsSaved) {
			o.setPhase(orderID, PhaseDirty)
		} else {
			o.setPhase(orderID, PhaseClean)
		}
		return nil
	}
	if err != nil {
		o.setPhase(orderID, PhaseDirty)
		o.reporter.Report(&OpError{
			Op:           "saveOrder",
			RestaurantID: o.container.RestaurantID(),
			ResourceID:   orderID,
			Kind:         KindTransientWrite,
			Err:          err,
		})
		return err
	}

	if o.container.MarkSaved(orderID, writtenRev) {
		o.setPhase(orderID, PhaseClean)
		o.applyPending(orderID)
	} else {
		// An edit landed while the write was in flight; go around again.
		o.setPhase(orderID, PhaseDirty)
		o.armSave(orderID)
	}
	o.runConsumptionIfDirty(orderID)
	return nil
}

// completeOrder is the unconditional completion write. It is launched
// synchronously with the dispatch and still goes through the
// deduplicator, so a double tap produces exactly one remote write. A
// hard failure gets one delayed re-attempt before surfacing a
// recoverable notice.
func (o *Orchestrator) completeOrder(orderID uuid.UUID, payment *state.Payment) {
	order := o.container.Order(orderID)
	if order == nil {
		return
	}
	o.setPhase(orderID, PhaseSyncing)
	key := Key("completeOrder", o.container.RestaurantID(), orderID)

	rev := order.Revision
	_, err, shared := o.dedupe.Do(context.Background(), key, func(ctx context.Context) (any, error) {
		return nil, o.writeOrder(ctx, order)
	})
	if shared {
		o.reporter.Report(&OpError{
			Op:           "completeOrder",
			RestaurantID: o.container.RestaurantID(),
			ResourceID:   orderID,
			Kind:         KindDuplicateSuppressed,
		})
		return
	}
	if err != nil {
		o.clock.AfterFunc(o.retryDelay, func() {
			o.retryCompletion(key, orderID, rev, payment)
		})
		return
	}
	o.finishCompletion(orderID, rev, order, payment)
}

func (o *Orchestrator) retryCompletion(key string, orderID uuid.UUID, rev int64, payment *state.Payment) {
	order := o.container.Order(orderID)
	if order == nil {
		return
	}
	o.dedupe.Forget(key)
	_, err, _ := o.dedupe.Do(context.Background(), key, func(ctx context.Context) (any, error) {
		return nil, o.writeOrder(ctx, order)
	})
	if err != nil {
		o.setPhase(orderID, PhaseDirty)
		o.reporter.Report(&OpError{
			Op:           "completeOrder",
			RestaurantID: o.container.RestaurantID(),
			ResourceID:   orderID,
			Kind:         KindTransientWrite,
			Err:          err,
		})
		o.container.PushNotice(state.Notice{
			Level:   "error",
			Message: "order completion could not be saved, please retry",
			OrderID: orderID,
		})
		return
	}
	o.finishCompletion(orderID, rev, order, payment)
}

func (o *Orchestrator) finishCompletion(orderID uuid.UUID, rev int64, order *pos.Order, payment *state.Payment) {
	if o.container.MarkSaved(orderID, rev) {
		o.setPhase(orderID, PhaseClean)
		o.applyPending(orderID)
	}
	o.publishCompleted(order)

	task := Task{
		Type:         TaskReceiptSave,
		RestaurantID: order.RestaurantID,
		OrderID:      order.ID,
	}
	if payment != nil {
		task.Receipt = pos.BuildReceipt(order, payment.Method, payment.Amount)
	} else {
		task.Receipt = pos.BuildReceipt(order, "", order.Total())
	}
	o.queue.Enqueue(task)

	o.runConsumptionIfDirty(orderID)
}

// deleteOrder removes the remote record for a discarded order. Deletes
// are idempotent; a failure is transient and the record self-heals on
// the next realtime reconciliation.
func (o *Orchestrator) deleteOrder(orderID uuid.UUID) error {
	key := Key("deleteOrder", o.container.RestaurantID(), orderID)
	_, err, shared := o.dedupe.Do(context.Background(), key, func(ctx context.Context) (any, error) {
		return nil, o.store.Delete(ctx, o.ordersPath(), orderID)
	})
	if shared {
		return nil
	}
	if err != nil {
		o.reporter.Report(&OpError{
			Op:           "deleteOrder",
			RestaurantID: o.container.RestaurantID(),
			ResourceID:   orderID,
			Kind:         KindTransientWrite,
			Err:          err,
		})
		return err
	}
	o.clearResource(orderID)
	return nil
}

// writeOrder persists the order, patching the synced field set and
// falling back to a full create on the first write. The
// saved-quantities baseline is advanced separately by the delta side
// channel.
func (o *Orchestrator) writeOrder(ctx context.Context, order *pos.Order) error {
	fields := map[string]any{
		"status":        order.Status,
		"items":         order.Items,
		"customer_name": order.CustomerName,
		"table_id":      order.TableID,
		"updated_at":    o.clock.Now(),
	}
	if !order.CompletedAt.IsZero() {
		fields["completed_at"] = order.CompletedAt
	}
	err := o.store.Update(ctx, o.ordersPath(), order.ID, fields)
	if err == store.ErrNotFound {
		return o.store.Create(ctx, o.ordersPath(), order.ID, snapshotOf(order))
	}
	return err
}

// runConsumptionIfDirty launches the delta side channel when the last
// successful write covered quantity changes.
func (o *Orchestrator) runConsumptionIfDirty(orderID uuid.UUID) {
	o.mu.Lock()
	res := o.resources[orderID]
	run := res != nil && res.dirtyQty
	if run {
		res.dirtyQty = false
	}
	o.mu.Unlock()
	if run {
		o.asyncLaunch(func() { o.applyConsumption(orderID) })
	}
}

// applyConsumption re-fetches the remote document to get the
// authoritative saved-quantities baseline (another device may have
// advanced it), computes the positive-only deltas, enqueues the
// inventory task and advances the snapshot. A failed baseline fetch
// skips the cycle: under-counting consumption beats double-counting.
func (o *Orchestrator) applyConsumption(orderID uuid.UUID) {
	ctx := context.Background()
	order := o.container.Order(orderID)
	if order == nil {
		return
	}

	var remote pos.OrderSnapshot
	if err := o.store.Read(ctx, o.ordersPath(), orderID, &remote); err != nil {
		o.reporter.Report(&OpError{
			Op:           "inventoryBaseline",
			RestaurantID: o.container.RestaurantID(),
			ResourceID:   orderID,
			Kind:         KindSnapshotStale,
			Err:          err,
		})
		return
	}

	deltas, err := Deltas(ctx, o.ingredients, order.Items, remote.SavedQuantities)
	if err != nil {
		o.reporter.Report(&OpError{
			Op:           "inventoryCalc",
			RestaurantID: o.container.RestaurantID(),
			ResourceID:   orderID,
			Kind:         KindSnapshotStale,
			Err:          err,
		})
		return
	}
	if len(deltas) > 0 {
		o.queue.Enqueue(Task{
			Type:         TaskInventoryCalc,
			RestaurantID: order.RestaurantID,
			OrderID:      order.ID,
			Deltas:       deltas,
		})
	}

	current := order.CurrentQuantities()
	err = o.store.Update(ctx, o.ordersPath(), orderID, map[string]any{"saved_quantities": current})
	if err != nil {
		o.reporter.Report(&OpError{
			Op:           "snapshotAdvance",
			RestaurantID: o.container.RestaurantID(),
			ResourceID:   orderID,
			Kind:         KindTransientWrite,
			Err:          err,
		})
		return
	}
	o.container.AdvanceSavedQuantities(orderID, current)
}

// handleChange folds realtime pushes into local state. Snapshots for
// resources with local edits in flight are deferred, not dropped; they
// apply once the resource returns to clean.
func (o *Orchestrator) handleChange(ch store.Change) {
	if ch.Type == store.ChangeRemoved {
		o.container.Discard(ch.ID)
		o.debounce.Cancel(o.saveKey(ch.ID))
		o.clearResource(ch.ID)
		return
	}

	var snap pos.OrderSnapshot
	if err := store.Rehydrate(ch.Doc, &snap); err != nil {
		o.logger.Info("invalid order snapshot in change feed", "order_id", ch.ID.String(), "error", err)
		return
	}
	if snap.ID == uuid.Nil {
		snap.ID = ch.ID
	}

	o.mu.Lock()
	res := o.resources[snap.ID]
	if res != nil && res.phase != PhaseClean {
		res.pending = &snap
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	o.applySnapshot(&snap)
}

func (o *Orchestrator) applySnapshot(snap *pos.OrderSnapshot) {
	local := o.container.Order(snap.ID)
	merged := MergeOrder(local, snap)
	if local == nil {
		merged.IsSaved = true
	}
	o.container.ApplyRemote(merged)
}

func (o *Orchestrator) applyPending(orderID uuid.UUID) {
	o.mu.Lock()
	res := o.resources[orderID]
	var snap *pos.OrderSnapshot
	if res != nil && res.pending != nil {
		snap = res.pending
		res.pending = nil
	}
	o.mu.Unlock()
	if snap != nil {
		o.applySnapshot(snap)
	}
}

// Phase exposes the sync state of one order resource.
func (o *Orchestrator) Phase(orderID uuid.UUID) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if res, ok := o.resources[orderID]; ok {
		return res.phase
	}
	return PhaseClean
}

func (o *Orchestrator) markDirty(orderID uuid.UUID, quantityAffecting bool) {
	o.mu.Lock()
	res, ok := o.resources[orderID]
	if !ok {
		res = &resource{}
		o.resources[orderID] = res
	}
	res.phase = PhaseDirty
	if quantityAffecting {
		res.dirtyQty = true
	}
	o.mu.Unlock()
}

func (o *Orchestrator) setPhase(orderID uuid.UUID, phase string) {
	o.mu.Lock()
	res, ok := o.resources[orderID]
	if !ok {
		res = &resource{}
		o.resources[orderID] = res
	}
	res.phase = phase
	o.mu.Unlock()
}

func (o *Orchestrator) clearResource(orderID uuid.UUID) {
	o.mu.Lock()
	delete(o.resources, orderID)
	o.mu.Unlock()
}

// asyncLaunch schedules fn off the dispatch path. Using the clock keeps
// the launch deterministic under virtual time in tests.
func (o *Orchestrator) asyncLaunch(fn func()) {
	o.clock.AfterFunc(0, fn)
}

func (o *Orchestrator) publishCompleted(order *pos.Order) {
	if o.publisher == nil {
		return
	}
	event := pkg.OrderCompletedEvent{
		EventType:    pkg.EventOrderCompleted,
		RestaurantID: order.RestaurantID.String(),
		OrderID:      order.ID.String(),
		Total:        order.Total(),
		OccurredAt:   o.clock.Now(),
	}
	msg, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := o.publisher.Publish(context.Background(), pkg.OrderTopic, msg); err != nil {
		o.logger.Info("cannot publish order completed event", "order_id", order.ID.String(), "error", err)
	}
}

// snapshotOf strips the local-only fields for the first persisted
// write.
func snapshotOf(order *pos.Order) *pos.OrderSnapshot {
	return &pos.OrderSnapshot{
		ID:              order.ID,
		RestaurantID:    order.RestaurantID,
		TableID:         order.TableID,
		Status:          order.Status,
		Items:           order.Items,
		SavedQuantities: order.SavedQuantities,
		CustomerName:    order.CustomerName,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		CompletedAt:     order.CompletedAt,
	}
}
