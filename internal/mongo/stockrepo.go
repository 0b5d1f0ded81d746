package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/comandaclub/comanda/internal/pos"
)

type StockRepo struct {
	collection *mongo.Collection
}

func NewStockRepo(db *mongo.Database) *StockRepo {
	return &StockRepo{
		collection: db.Collection("stock_levels"),
	}
}

func (r *StockRepo) Get(ctx context.Context, restaurantID uuid.UUID, ingredient string) (*pos.StockLevel, error) {
	var level pos.StockLevel
	err := r.collection.
		FindOne(ctx, bson.M{"restaurant_id": restaurantID, "ingredient": ingredient}).
		Decode(&level)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get stock level: %w", err)
	}
	return &level, nil
}

func (r *StockRepo) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*pos.StockLevel, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": restaurantID})
	if err != nil {
		return nil, fmt.Errorf("cannot list stock levels: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*pos.StockLevel
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode stock levels: %w", err)
	}

	return result, nil
}

func (r *StockRepo) Upsert(ctx context.Context, level *pos.StockLevel) error {
	if level == nil {
		return fmt.Errorf("stock level is nil")
	}
	level.EnsureID()
	level.UpdatedAt = time.Now()

	filter := bson.M{"restaurant_id": level.RestaurantID, "ingredient": level.Ingredient}
	update := bson.M{
		"$set": bson.M{
			"quantity":      level.Quantity,
			"unit":          level.Unit,
			"min_threshold": level.MinThreshold,
			"updated_at":    level.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":           level.ID,
			"restaurant_id": level.RestaurantID,
			"ingredient":    level.Ingredient,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("cannot upsert stock level: %w", err)
	}
	return nil
}

// Decrement atomically subtracts qty and returns the resulting level.
// An unknown ingredient gets a record starting below zero, which keeps
// the deduction visible instead of silently dropping it.
func (r *StockRepo) Decrement(ctx context.Context, restaurantID uuid.UUID, ingredient string, qty float64) (*pos.StockLevel, error) {
	filter := bson.M{"restaurant_id": restaurantID, "ingredient": ingredient}
	update := bson.M{
		"$inc": bson.M{"quantity": -qty},
		"$set": bson.M{"updated_at": time.Now()},
		"$setOnInsert": bson.M{
			"_id":           aqm.GenerateNewID(),
			"restaurant_id": restaurantID,
			"ingredient":    ingredient,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var level pos.StockLevel
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&level)
	if err != nil {
		return nil, fmt.Errorf("cannot decrement stock level: %w", err)
	}
	return &level, nil
}
