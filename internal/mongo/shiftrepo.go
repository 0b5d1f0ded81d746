package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/comandaclub/comanda/internal/pos"
)

type ShiftRepo struct {
	collection *mongo.Collection
}

func NewShiftRepo(db *mongo.Database) *ShiftRepo {
	return &ShiftRepo{
		collection: db.Collection("shifts"),
	}
}

func (r *ShiftRepo) Create(ctx context.Context, shift *pos.Shift) error {
	if shift == nil {
		return fmt.Errorf("shift is nil")
	}

	if _, err := r.collection.InsertOne(ctx, shift); err != nil {
		return fmt.Errorf("cannot create shift: %w", err)
	}

	return nil
}

func (r *ShiftRepo) Get(ctx context.Context, id uuid.UUID) (*pos.Shift, error) {
	var shift pos.Shift
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&shift)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get shift: %w", err)
	}
	return &shift, nil
}

func (r *ShiftRepo) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*pos.Shift, error) {
	return r.list(ctx, bson.M{"restaurant_id": restaurantID})
}

func (r *ShiftRepo) ListOpen(ctx context.Context, restaurantID uuid.UUID) ([]*pos.Shift, error) {
	return r.list(ctx, bson.M{"restaurant_id": restaurantID, "status": pos.ShiftOpen})
}

func (r *ShiftRepo) list(ctx context.Context, filter bson.M) ([]*pos.Shift, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("cannot list shifts: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*pos.Shift
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode shifts: %w", err)
	}

	return result, nil
}

func (r *ShiftRepo) Save(ctx context.Context, shift *pos.Shift) error {
	if shift == nil {
		return fmt.Errorf("shift is nil")
	}

	filter := bson.M{"_id": shift.ID}
	update := bson.M{"$set": shift}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update shift: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("shift not found")
	}

	return nil
}
