package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

var ErrNotFound = errors.New("document not found")

// Path identifies a tenant-scoped collection. Every store call carries a
// path; the core never reads or writes outside a restaurant scope.
type Path struct {
	RestaurantID uuid.UUID
	Collection   string
}

func (p Path) String() string {
	return fmt.Sprintf("%s/%s", p.RestaurantID, p.Collection)
}

func (p Path) Validate() error {
	if p.RestaurantID == uuid.Nil {
		return fmt.Errorf("path is missing restaurant scope")
	}
	if p.Collection == "" {
		return fmt.Errorf("path is missing collection")
	}
	return nil
}

const (
	ChangeAdded   = "added"
	ChangeChanged = "changed"
	ChangeRemoved = "removed"
)

// Change is a realtime push notification. Doc carries the full document
// snapshot for added/changed events and is nil for removals.
type Change struct {
	Type string
	ID   uuid.UUID
	Doc  any
}

// Store is the document store the sync pipeline writes through. Update
// applies a partial field set; Delete is idempotent. Listen delivers
// full-document snapshots until the returned unsubscribe is called or
// the context is cancelled.
type Store interface {
	Create(ctx context.Context, path Path, id uuid.UUID, doc any) error
	Read(ctx context.Context, path Path, id uuid.UUID, out any) error
	Update(ctx context.Context, path Path, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, path Path, id uuid.UUID) error
	List(ctx context.Context, path Path, filter map[string]any, out any) error
	Listen(ctx context.Context, path Path, fn func(Change)) (func(), error)
}

// Rehydrate round-trips a loosely typed document into a concrete
// shape. Raw BSON from a change stream decodes directly; anything else
// goes through JSON.
func Rehydrate(data any, out any) error {
	if raw, ok := data.(bson.Raw); ok {
		return bson.Unmarshal(raw, out)
	}
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}
