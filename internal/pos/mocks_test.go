package pos

import (
	"context"
	"fmt"
	"sync"

	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"
)

// mockMenuItemRepo is a mock implementation of MenuItemRepo for testing
type mockMenuItemRepo struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*MenuItem
	getCalls int

	GetFunc              func(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	ListByRestaurantFunc func(ctx context.Context, restaurantID uuid.UUID) ([]*MenuItem, error)
}

func newMockMenuItemRepo() *mockMenuItemRepo {
	return &mockMenuItemRepo{
		items: make(map[uuid.UUID]*MenuItem),
	}
}

func (m *mockMenuItemRepo) Create(ctx context.Context, item *MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *mockMenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	return m.items[id], nil
}

func (m *mockMenuItemRepo) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*MenuItem, error) {
	if m.ListByRestaurantFunc != nil {
		return m.ListByRestaurantFunc(ctx, restaurantID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*MenuItem
	for _, item := range m.items {
		if item.RestaurantID == restaurantID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (m *mockMenuItemRepo) Save(ctx context.Context, item *MenuItem) error {
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

func (m *mockMenuItemRepo) gets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

// mockEventSubscriber captures the handler so tests can feed it
// messages directly.
type mockEventSubscriber struct {
	handler events.HandlerFunc
}

func (m *mockEventSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	m.handler = handler
	return nil
}

func (m *mockEventSubscriber) deliver(msg []byte) error {
	if m.handler == nil {
		return fmt.Errorf("no handler subscribed")
	}
	return m.handler(context.Background(), msg)
}
