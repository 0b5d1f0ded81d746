package seeding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SeedStock creates starting levels for every ingredient the demo menu
// consumes. Thresholds are set so a busy demo session trips at least
// one low-stock notice.
func SeedStock(ctx context.Context, db *mongo.Database, restaurantID uuid.UUID) error {
	stockCollection := db.Collection("stock_levels")

	now := time.Now()

	demoStock := []struct {
		ingredient   string
		quantity     float64
		unit         string
		minThreshold float64
	}{
		{"coffee beans", 2000, "g", 400},
		{"water", 50000, "ml", 0},
		{"milk", 8000, "ml", 1500},
		{"pizza dough", 6000, "g", 1000},
		{"tomato sauce", 3000, "ml", 500},
		{"mozzarella", 2400, "g", 600},
		{"bomba rice", 4000, "g", 800},
		{"seafood mix", 3000, "g", 750},
		{"saffron", 5, "g", 1},
		{"mascarpone", 1600, "g", 320},
		{"ladyfingers", 80, "pcs", 16},
		{"sparkling water bottle", 48, "pcs", 12},
	}

	for _, s := range demoStock {
		level := bson.M{
			"_id":           uuid.New(),
			"restaurant_id": restaurantID,
			"ingredient":    s.ingredient,
			"quantity":      s.quantity,
			"unit":          s.unit,
			"min_threshold": s.minThreshold,
			"updated_at":    now,
			"created_by":    "demo-seed",
		}
		// One level per ingredient per restaurant, regardless of the
		// random document id.
		filter := bson.M{"restaurant_id": restaurantID, "ingredient": s.ingredient}
		_, err := stockCollection.UpdateOne(ctx, filter, bson.M{"$setOnInsert": level}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("cannot create demo stock level for %s: %w", s.ingredient, err)
		}
	}

	return nil
}
