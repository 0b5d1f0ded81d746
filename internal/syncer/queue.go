package syncer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/internal/pos"
	"github.com/comandaclub/comanda/internal/stock"
	"github.com/comandaclub/comanda/pkg"
)

const (
	TaskInventoryCalc = "inventory-calc"
	TaskReceiptSave   = "receipt-save"
)

// Task is one fire-and-forget unit of derived work. Tasks are drained
// in batches; ordering is FIFO within a type per restaurant, nothing
// stronger.
type Task struct {
	Type         string
	RestaurantID uuid.UUID
	OrderID      uuid.UUID
	Deltas       []InventoryDelta
	Receipt      *pos.Receipt
	EnqueuedAt   time.Time
}

type QueueOptions struct {
	Clock    Clock
	Interval time.Duration
	Logger   aqm.Logger
	Reporter *Reporter
}

// Queue runs derived side effects off the dispatch path. Inventory
// deduction goes remote-first through the aggregate compute endpoint
// and falls back to a per-delta local loop with the same final-state
// semantics; one item's failure never blocks its siblings.
type Queue struct {
	mu       sync.Mutex
	tasks    []Task
	timer    Timer
	stopped  bool
	draining sync.Mutex

	clock     Clock
	interval  time.Duration
	compute   stock.Client
	stockRepo pos.StockRepo
	receipts  pos.ReceiptRepo
	publisher events.Publisher
	logger    aqm.Logger
	reporter  *Reporter
}

func NewQueue(compute stock.Client, stockRepo pos.StockRepo, receipts pos.ReceiptRepo, publisher events.Publisher, opts QueueOptions) *Queue {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = aqm.NewNoopLogger()
	}
	if opts.Reporter == nil {
		opts.Reporter = NewReporter(opts.Logger)
	}
	if compute == nil {
		compute = stock.NewDisabledClient()
	}
	return &Queue{
		clock:     opts.Clock,
		interval:  opts.Interval,
		compute:   compute,
		stockRepo: stockRepo,
		receipts:  receipts,
		publisher: publisher,
		logger:    opts.Logger,
		reporter:  opts.Reporter,
	}
}

// Enqueue accepts a task without blocking. The task runs on the next
// drain cycle.
func (q *Queue) Enqueue(task Task) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = q.clock.Now()
	}
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()
}

// Start arms the periodic drain. Returns immediately.
func (q *Queue) Start(ctx context.Context) error {
	q.arm(ctx)
	return nil
}

// Stop cancels the periodic drain and flushes whatever is pending.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	q.stopped = true
	if q.timer != nil {
		q.timer.Stop()
	}
	q.mu.Unlock()
	q.drain(ctx)
	return nil
}

// Flush drains all pending tasks synchronously.
func (q *Queue) Flush(ctx context.Context) {
	q.drain(ctx)
}

func (q *Queue) arm(ctx context.Context) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.timer = q.clock.AfterFunc(q.interval, func() {
		q.drain(ctx)
		q.arm(ctx)
	})
	q.mu.Unlock()
}

func (q *Queue) drain(ctx context.Context) {
	// One drain at a time; interval ticks and explicit flushes may race.
	q.draining.Lock()
	defer q.draining.Unlock()

	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()
	if len(tasks) == 0 {
		return
	}

	byRestaurant := make(map[uuid.UUID][]Task)
	var order []uuid.UUID
	for _, task := range tasks {
		if _, ok := byRestaurant[task.RestaurantID]; !ok {
			order = append(order, task.RestaurantID)
		}
		byRestaurant[task.RestaurantID] = append(byRestaurant[task.RestaurantID], task)
	}

	for _, restaurantID := range order {
		batch := byRestaurant[restaurantID]
		var inventory, receipts []Task
		for _, task := range batch {
			switch task.Type {
			case TaskInventoryCalc:
				inventory = append(inventory, task)
			case TaskReceiptSave:
				receipts = append(receipts, task)
			default:
				q.logger.Info("dropping unknown background task", "type", task.Type)
			}
		}
		if len(inventory) > 0 {
			q.processInventory(ctx, restaurantID, inventory)
		}
		for _, task := range receipts {
			q.processReceipt(ctx, task)
		}
	}
}

func (q *Queue) processInventory(ctx context.Context, restaurantID uuid.UUID, batch []Task) {
	var orderIDs []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, task := range batch {
		if task.OrderID != uuid.Nil && !seen[task.OrderID] {
			seen[task.OrderID] = true
			orderIDs = append(orderIDs, task.OrderID)
		}
	}

	err := q.compute.ProcessDeduction(ctx, restaurantID, orderIDs)
	if err == nil {
		q.logger.Debug("inventory deduction processed remotely",
			"restaurant_id", restaurantID.String(), "orders", len(orderIDs))
		return
	}
	if err == stock.ErrUnavailable {
		q.logger.Debug("stock compute endpoint disabled, applying deltas locally")
	} else {
		q.logger.Info("remote inventory deduction failed, falling back to local apply",
			"restaurant_id", restaurantID.String(), "error", err)
	}

	for _, task := range batch {
		for _, delta := range task.Deltas {
			level, err := q.stockRepo.Decrement(ctx, restaurantID, delta.Ingredient, delta.RequiredQty)
			if err != nil {
				q.reporter.Report(&OpError{
					Op:           "inventoryApply",
					RestaurantID: restaurantID,
					ResourceID:   task.OrderID,
					Kind:         KindTaskFailure,
					Err:          err,
				})
				continue
			}
			if level != nil && level.IsLow() {
				q.publishStockLow(ctx, level)
			}
		}
	}
}

func (q *Queue) processReceipt(ctx context.Context, task Task) {
	if task.Receipt == nil {
		return
	}
	receipt := task.Receipt
	receipt.BeforeCreate()
	if err := q.receipts.Create(ctx, receipt); err != nil {
		q.reporter.Report(&OpError{
			Op:           "receiptSave",
			RestaurantID: task.RestaurantID,
			ResourceID:   task.OrderID,
			Kind:         KindTaskFailure,
			Err:          err,
		})
		return
	}
	q.publish(ctx, pkg.ReceiptTopic, pkg.ReceiptCreatedEvent{
		EventType:    pkg.EventReceiptCreated,
		RestaurantID: task.RestaurantID.String(),
		ReceiptID:    receipt.ID.String(),
		OrderID:      task.OrderID.String(),
		Total:        receipt.Total,
		OccurredAt:   q.clock.Now(),
	})
}

func (q *Queue) publishStockLow(ctx context.Context, level *pos.StockLevel) {
	q.publish(ctx, pkg.StockTopic, pkg.StockLowEvent{
		EventType:    pkg.EventStockLow,
		RestaurantID: level.RestaurantID.String(),
		Ingredient:   level.Ingredient,
		Quantity:     level.Quantity,
		MinThreshold: level.MinThreshold,
		Unit:         level.Unit,
		OccurredAt:   q.clock.Now(),
	})
}

func (q *Queue) publish(ctx context.Context, topic string, event any) {
	if q.publisher == nil {
		return
	}
	msg, err := json.Marshal(event)
	if err != nil {
		q.logger.Info("cannot encode event", "topic", topic, "error", err)
		return
	}
	if err := q.publisher.Publish(ctx, topic, msg); err != nil {
		q.logger.Info("cannot publish event", "topic", topic, "error", err)
	}
}
