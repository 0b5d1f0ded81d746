package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comandaclub/comanda/internal/pos"
)

// fakeClock drives the pipeline's timers with virtual time. Timers due
// at or before the advanced-to instant fire during Advance, including
// timers they schedule themselves.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers map[int]*fakeTimer
	nextID int
}

type fakeTimer struct {
	clock *fakeClock
	id    int
	when  time.Time
	fn    func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:    time.Unix(1700000000, 0),
		timers: make(map[int]*fakeTimer),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d < 0 {
		d = 0
	}
	t := &fakeTimer{
		clock: c,
		id:    c.nextID,
		when:  c.now.Add(d),
		fn:    fn,
	}
	c.timers[t.id] = t
	c.nextID++
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	_, ok := t.clock.timers[t.id]
	delete(t.clock.timers, t.id)
	return ok
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			break
		}
		delete(c.timers, next.id)
		if next.when.After(c.now) {
			c.now = next.when
		}
		c.mu.Unlock()
		next.fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// mockIngredientSource is a mock implementation of IngredientSource for testing
type mockIngredientSource struct {
	recipes         map[uuid.UUID][]pos.Ingredient
	IngredientsFunc func(ctx context.Context, menuItemID uuid.UUID) ([]pos.Ingredient, error)
}

func newMockIngredientSource() *mockIngredientSource {
	return &mockIngredientSource{
		recipes: make(map[uuid.UUID][]pos.Ingredient),
	}
}

func (m *mockIngredientSource) Ingredients(ctx context.Context, menuItemID uuid.UUID) ([]pos.Ingredient, error) {
	if m.IngredientsFunc != nil {
		return m.IngredientsFunc(ctx, menuItemID)
	}
	return m.recipes[menuItemID], nil
}

// mockStockRepo is a mock implementation of pos.StockRepo for testing
type mockStockRepo struct {
	mu            sync.Mutex
	levels        map[string]*pos.StockLevel
	DecrementFunc func(ctx context.Context, restaurantID uuid.UUID, ingredient string, qty float64) (*pos.StockLevel, error)
}

func newMockStockRepo() *mockStockRepo {
	return &mockStockRepo{
		levels: make(map[string]*pos.StockLevel),
	}
}

func (m *mockStockRepo) Get(ctx context.Context, restaurantID uuid.UUID, ingredient string) (*pos.StockLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.levels[ingredient], nil
}

func (m *mockStockRepo) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*pos.StockLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*pos.StockLevel
	for _, level := range m.levels {
		result = append(result, level)
	}
	return result, nil
}

func (m *mockStockRepo) Upsert(ctx context.Context, level *pos.StockLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[level.Ingredient] = level
	return nil
}

func (m *mockStockRepo) Decrement(ctx context.Context, restaurantID uuid.UUID, ingredient string, qty float64) (*pos.StockLevel, error) {
	if m.DecrementFunc != nil {
		return m.DecrementFunc(ctx, restaurantID, ingredient, qty)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	level, ok := m.levels[ingredient]
	if !ok {
		level = &pos.StockLevel{RestaurantID: restaurantID, Ingredient: ingredient}
		m.levels[ingredient] = level
	}
	level.Quantity -= qty
	return level, nil
}

// mockReceiptRepo is a mock implementation of pos.ReceiptRepo for testing
type mockReceiptRepo struct {
	mu         sync.Mutex
	receipts   map[uuid.UUID]*pos.Receipt
	CreateFunc func(ctx context.Context, receipt *pos.Receipt) error
}

func newMockReceiptRepo() *mockReceiptRepo {
	return &mockReceiptRepo{
		receipts: make(map[uuid.UUID]*pos.Receipt),
	}
}

func (m *mockReceiptRepo) Create(ctx context.Context, receipt *pos.Receipt) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, receipt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts[receipt.ID] = receipt
	return nil
}

func (m *mockReceiptRepo) Get(ctx context.Context, id uuid.UUID) (*pos.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.receipts[id], nil
}

func (m *mockReceiptRepo) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*pos.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*pos.Receipt
	for _, receipt := range m.receipts {
		result = append(result, receipt)
	}
	return result, nil
}

func (m *mockReceiptRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.receipts)
}

// mockPublisher is a mock implementation of events.Publisher for testing
type mockPublisher struct {
	mu        sync.Mutex
	published map[string][][]byte
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{
		published: make(map[string][][]byte),
	}
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[topic] = append(m.published[topic], msg)
	return nil
}

func (m *mockPublisher) count(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published[topic])
}

// mockCompute is a mock implementation of stock.Client for testing
type mockCompute struct {
	mu                  sync.Mutex
	calls               int
	ProcessDeductionErr error
}

func (m *mockCompute) ProcessDeduction(ctx context.Context, restaurantID uuid.UUID, orderIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.ProcessDeductionErr != nil {
		return m.ProcessDeductionErr
	}
	return nil
}

var errRemoteDown = fmt.Errorf("remote endpoint unreachable")
