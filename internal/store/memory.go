package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store with listener fan-out. It backs
// tests and offline development; notifications are delivered
// synchronously on the mutating goroutine so tests stay deterministic.
type MemoryStore struct {
	mu        sync.RWMutex
	docs      map[string]map[uuid.UUID]map[string]any
	listeners map[string]map[int]func(Change)
	nextSub   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:      make(map[string]map[uuid.UUID]map[string]any),
		listeners: make(map[string]map[int]func(Change)),
	}
}

func (s *MemoryStore) Create(ctx context.Context, path Path, id uuid.UUID, doc any) error {
	if err := path.Validate(); err != nil {
		return err
	}
	var record map[string]any
	if err := Rehydrate(doc, &record); err != nil {
		return fmt.Errorf("cannot encode document: %w", err)
	}

	s.mu.Lock()
	coll, ok := s.docs[path.String()]
	if !ok {
		coll = make(map[uuid.UUID]map[string]any)
		s.docs[path.String()] = coll
	}
	if _, exists := coll[id]; exists {
		s.mu.Unlock()
		return fmt.Errorf("document %s already exists", id)
	}
	coll[id] = record
	fns := s.listenerSnapshot(path)
	s.mu.Unlock()

	s.notify(fns, Change{Type: ChangeAdded, ID: id, Doc: record})
	return nil
}

func (s *MemoryStore) Read(ctx context.Context, path Path, id uuid.UUID, out any) error {
	if err := path.Validate(); err != nil {
		return err
	}
	s.mu.RLock()
	record, ok := s.docs[path.String()][id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := Rehydrate(record, out); err != nil {
		return fmt.Errorf("cannot decode document %s: %w", id, err)
	}
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, path Path, id uuid.UUID, fields map[string]any) error {
	if err := path.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	record, ok := s.docs[path.String()][id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range fields {
		record[k] = v
	}
	fns := s.listenerSnapshot(path)
	s.mu.Unlock()

	s.notify(fns, Change{Type: ChangeChanged, ID: id, Doc: record})
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path Path, id uuid.UUID) error {
	if err := path.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	coll := s.docs[path.String()]
	_, existed := coll[id]
	delete(coll, id)
	fns := s.listenerSnapshot(path)
	s.mu.Unlock()

	if existed {
		s.notify(fns, Change{Type: ChangeRemoved, ID: id})
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context, path Path, filter map[string]any, out any) error {
	if err := path.Validate(); err != nil {
		return err
	}
	s.mu.RLock()
	var records []map[string]any
	for _, record := range s.docs[path.String()] {
		if matches(record, filter) {
			records = append(records, record)
		}
	}
	s.mu.RUnlock()
	if err := Rehydrate(records, out); err != nil {
		return fmt.Errorf("cannot decode documents: %w", err)
	}
	return nil
}

func (s *MemoryStore) Listen(ctx context.Context, path Path, fn func(Change)) (func(), error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	subs, ok := s.listeners[path.String()]
	if !ok {
		subs = make(map[int]func(Change))
		s.listeners[path.String()] = subs
	}
	id := s.nextSub
	s.nextSub++
	subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners[path.String()], id)
		s.mu.Unlock()
	}, nil
}

func (s *MemoryStore) listenerSnapshot(path Path) []func(Change) {
	var fns []func(Change)
	for _, fn := range s.listeners[path.String()] {
		fns = append(fns, fn)
	}
	return fns
}

func (s *MemoryStore) notify(fns []func(Change), change Change) {
	for _, fn := range fns {
		fn(change)
	}
}

func matches(record map[string]any, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := record[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
