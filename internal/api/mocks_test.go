package api

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/comandaclub/comanda/internal/pos"
)

// mockMenuItemRepo is a mock implementation of pos.MenuItemRepo for testing
type mockMenuItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*pos.MenuItem

	CreateFunc func(ctx context.Context, item *pos.MenuItem) error
	GetFunc    func(ctx context.Context, id uuid.UUID) (*pos.MenuItem, error)
}

func newMockMenuItemRepo() *mockMenuItemRepo {
	return &mockMenuItemRepo{items: make(map[uuid.UUID]*pos.MenuItem)}
}

func (m *mockMenuItemRepo) Create(ctx context.Context, item *pos.MenuItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *mockMenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*pos.MenuItem, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id], nil
}

func (m *mockMenuItemRepo) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*pos.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*pos.MenuItem
	for _, item := range m.items {
		result = append(result, item)
	}
	return result, nil
}

func (m *mockMenuItemRepo) Save(ctx context.Context, item *pos.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *mockMenuItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// mockTableRepo is a mock implementation of pos.TableRepo for testing
type mockTableRepo struct {
	mu     sync.Mutex
	tables map[uuid.UUID]*pos.Table
}

func newMockTableRepo() *mockTableRepo {
	return &mockTableRepo{tables: make(map[uuid.UUID]*pos.Table)}
}

func (m *mockTableRepo) Create(ctx context.Context, table *pos.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table
	return nil
}

func (m *mockTableRepo) Get(ctx context.Context, id uuid.UUID) (*pos.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables[id], nil
}

func (m *mockTableRepo) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*pos.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*pos.Table
	for _, table := range m.tables {
		result = append(result, table)
	}
	return result, nil
}

func (m *mockTableRepo) Save(ctx context.Context, table *pos.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table
	return nil
}

func (m *mockTableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, id)
	return nil
}

// mockReceiptRepo is a mock implementation of pos.ReceiptRepo for testing
type mockReceiptRepo struct {
	mu       sync.Mutex
	receipts map[uuid.UUID]*pos.Receipt
}

func newMockReceiptRepo() *mockReceiptRepo {
	return &mockReceiptRepo{receipts: make(map[uuid.UUID]*pos.Receipt)}
}

func (m *mockReceiptRepo) Create(ctx context.Context, receipt *pos.Receipt) error {
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

// mockShiftRepo is a mock implementation of pos.ShiftRepo for testing
type mockShiftRepo struct {
	mu     sync.Mutex
	shifts map[uuid.UUID]*pos.Shift
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[uuid.UUID]*pos.Shift)}
}

func (m *mockShiftRepo) Create(ctx context.Context, shift *pos.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[shift.ID] = shift
	return nil
}

func (m *mockShiftRepo) Get(ctx context.Context, id uuid.UUID) (*pos.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shifts[id], nil
}

func (m *mockShiftRepo) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*pos.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*pos.Shift
	for _, shift := range m.shifts {
		result = append(result, shift)
	}
	return result, nil
}

func (m *mockShiftRepo) ListOpen(ctx context.Context, restaurantID uuid.UUID) ([]*pos.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*pos.Shift
	for _, shift := range m.shifts {
		if shift.IsOpen() {
			result = append(result, shift)
		}
	}
	return result, nil
}

func (m *mockShiftRepo) Save(ctx context.Context, shift *pos.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[shift.ID] = shift
	return nil
}

// mockPublisher is a mock implementation of events.Publisher for testing
type mockPublisher struct {
	mu        sync.Mutex
	published map[string][][]byte
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{published: make(map[string][][]byte)}
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
