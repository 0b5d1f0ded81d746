package mongo

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/comandaclub/comanda/internal/store"
)

// DocStore implements the document store contract over MongoDB. Tenant
// scoping is enforced by stamping and filtering restaurant_id on every
// document; realtime pushes come from change streams with full-document
// lookup.
type DocStore struct {
	db     *mongo.Database
	logger aqm.Logger
}

func NewDocStore(db *mongo.Database, logger aqm.Logger) *DocStore {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &DocStore{
		db:     db,
		logger: logger,
	}
}

func (s *DocStore) Create(ctx context.Context, path store.Path, id uuid.UUID, doc any) error {
	if err := path.Validate(); err != nil {
		return err
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cannot encode document: %w", err)
	}
	var record bson.M
	if err := bson.Unmarshal(raw, &record); err != nil {
		return fmt.Errorf("cannot encode document: %w", err)
	}
	record["_id"] = id
	record["restaurant_id"] = path.RestaurantID

	if _, err := s.db.Collection(path.Collection).InsertOne(ctx, record); err != nil {
		return fmt.Errorf("cannot create document: %w", err)
	}
	return nil
}

func (s *DocStore) Read(ctx context.Context, path store.Path, id uuid.UUID, out any) error {
	if err := path.Validate(); err != nil {
		return err
	}
	err := s.db.Collection(path.Collection).
		FindOne(ctx, s.scoped(path, bson.M{"_id": id})).
		Decode(out)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return store.ErrNotFound
		}
		return fmt.Errorf("cannot read document: %w", err)
	}
	return nil
}

func (s *DocStore) Update(ctx context.Context, path store.Path, id uuid.UUID, fields map[string]any) error {
	if err := path.Validate(); err != nil {
		return err
	}
	result, err := s.db.Collection(path.Collection).
		UpdateOne(ctx, s.scoped(path, bson.M{"_id": id}), bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("cannot update document: %w", err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *DocStore) Delete(ctx context.Context, path store.Path, id uuid.UUID) error {
	if err := path.Validate(); err != nil {
		return err
	}
	_, err := s.db.Collection(path.Collection).
		DeleteOne(ctx, s.scoped(path, bson.M{"_id": id}))
	if err != nil {
		return fmt.Errorf("cannot delete document: %w", err)
	}
	return nil
}

func (s *DocStore) List(ctx context.Context, path store.Path, filter map[string]any, out any) error {
	if err := path.Validate(); err != nil {
		return err
	}
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}
	cursor, err := s.db.Collection(path.Collection).Find(ctx, s.scoped(path, query))
	if err != nil {
		return fmt.Errorf("cannot list documents: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("cannot decode documents: %w", err)
	}
	return nil
}

func (s *DocStore) Listen(ctx context.Context, path store.Path, fn func(store.Change)) (func(), error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"$or": bson.A{
				bson.M{"fullDocument.restaurant_id": path.RestaurantID},
				bson.M{"operationType": "delete"},
			},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	cs, err := s.db.Collection(path.Collection).Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot watch collection %s: %w", path.Collection, err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	go s.consume(streamCtx, cs, fn)

	return func() {
		cancel()
	}, nil
}

func (s *DocStore) consume(ctx context.Context, cs *mongo.ChangeStream, fn func(store.Change)) {
	defer cs.Close(context.Background())
	for cs.Next(ctx) {
		var event struct {
			OperationType string `bson:"operationType"`
			DocumentKey   struct {
				ID uuid.UUID `bson:"_id"`
			} `bson:"documentKey"`
			FullDocument bson.Raw `bson:"fullDocument"`
		}
		if err := cs.Decode(&event); err != nil {
			s.logger.Info("cannot decode change stream event", "error", err)
			continue
		}

		change := store.Change{ID: event.DocumentKey.ID}
		switch event.OperationType {
		case "insert":
			change.Type = store.ChangeAdded
			change.Doc = event.FullDocument
		case "update", "replace":
			change.Type = store.ChangeChanged
			change.Doc = event.FullDocument
		case "delete":
			change.Type = store.ChangeRemoved
		default:
			continue
		}
		fn(change)
	}
	if err := cs.Err(); err != nil && ctx.Err() == nil {
		s.logger.Error("change stream terminated", "error", err)
	}
}

func (s *DocStore) scoped(path store.Path, query bson.M) bson.M {
	query["restaurant_id"] = path.RestaurantID
	return query
}
