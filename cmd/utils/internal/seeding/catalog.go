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

// SeedCatalog creates a demo menu with ingredient consumption per unit
// sold, plus a small table layout for the floor.
func SeedCatalog(ctx context.Context, db *mongo.Database, restaurantID uuid.UUID) error {
	menuCollection := db.Collection("menu_items")
	tablesCollection := db.Collection("tables")

	now := time.Now()

	demoMenu := []bson.M{
		{
			"_id":           uuid.New(),
			"restaurant_id": restaurantID,
			"name":          "Espresso",
			"short_code":    "ESP",
			"category":      "coffee",
			"price":         2.5,
			"active":        true,
			"ingredients": []bson.M{
				{"name": "coffee beans", "quantity": 18.0, "unit": "g"},
				{"name": "water", "quantity": 30.0, "unit": "ml"},
			},
			"created_at": now,
			"updated_at": now,
			"created_by": "demo-seed",
		},
		{
			"_id":           uuid.New(),
			"restaurant_id": restaurantID,
			"name":          "Cappuccino",
			"short_code":    "CAP",
			"category":      "coffee",
			"price":         4.0,
			"active":        true,
			"ingredients": []bson.M{
				{"name": "coffee beans", "quantity": 18.0, "unit": "g"},
				{"name": "milk", "quantity": 120.0, "unit": "ml"},
			},
			"created_at": now,
			"updated_at": now,
			"created_by": "demo-seed",
		},
		{
			"_id":           uuid.New(),
			"restaurant_id": restaurantID,
			"name":          "Margherita Pizza",
			"short_code":    "MAR",
			"category":      "entree",
			"price":         11.5,
			"active":        true,
			"ingredients": []bson.M{
				{"name": "pizza dough", "quantity": 250.0, "unit": "g"},
				{"name": "tomato sauce", "quantity": 90.0, "unit": "ml"},
				{"name": "mozzarella", "quantity": 120.0, "unit": "g"},
			},
			"created_at": now,
			"updated_at": now,
			"created_by": "demo-seed",
		},
		{
			"_id":           uuid.New(),
			"restaurant_id": restaurantID,
			"name":          "Seafood Paella",
			"short_code":    "PAE",
			"category":      "entree",
			"price":         16.0,
			"active":        true,
			"ingredients": []bson.M{
				{"name": "bomba rice", "quantity": 100.0, "unit": "g"},
				{"name": "seafood mix", "quantity": 150.0, "unit": "g"},
				{"name": "saffron", "quantity": 0.1, "unit": "g"},
			},
			"created_at": now,
			"updated_at": now,
			"created_by": "demo-seed",
		},
		{
			"_id":           uuid.New(),
			"restaurant_id": restaurantID,
			"name":          "Tiramisu",
			"short_code":    "TIR",
			"category":      "dessert",
			"price":         6.5,
			"active":        true,
			"ingredients": []bson.M{
				{"name": "mascarpone", "quantity": 80.0, "unit": "g"},
				{"name": "ladyfingers", "quantity": 4.0, "unit": "pcs"},
				{"name": "coffee beans", "quantity": 10.0, "unit": "g"},
			},
			"created_at": now,
			"updated_at": now,
			"created_by": "demo-seed",
		},
		{
			"_id":           uuid.New(),
			"restaurant_id": restaurantID,
			"name":          "Sparkling Water",
			"short_code":    "AGU",
			"category":      "beverage",
			"price":         2.0,
			"active":        true,
			"ingredients": []bson.M{
				{"name": "sparkling water bottle", "quantity": 1.0, "unit": "pcs"},
			},
			"created_at": now,
			"updated_at": now,
			"created_by": "demo-seed",
		},
		{
			// Inactive item, kept for the out-of-menu paths.
			"_id":           uuid.New(),
			"restaurant_id": restaurantID,
			"name":          "Seasonal Gazpacho",
			"short_code":    "GAZ",
			"category":      "starter",
			"price":         5.5,
			"active":        false,
			"created_at":    now,
			"updated_at":    now,
			"created_by":    "demo-seed",
		},
	}

	for _, item := range demoMenu {
		_, err := menuCollection.UpdateOne(ctx, bson.M{"_id": item["_id"]}, bson.M{"$setOnInsert": item}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("cannot create demo menu item: %w", err)
		}
	}

	demoTables := []struct {
		number string
		seats  int
	}{
		{"1", 2},
		{"2", 4},
		{"3", 4},
		{"4", 6},
		{"T1", 2},
	}

	for _, t := range demoTables {
		table := bson.M{
			"_id":           uuid.New(),
			"restaurant_id": restaurantID,
			"number":        t.number,
			"seats":         t.seats,
			"status":        "available",
			"created_at":    now,
			"updated_at":    now,
			"created_by":    "demo-seed",
		}
		_, err := tablesCollection.UpdateOne(ctx, bson.M{"_id": table["_id"]}, bson.M{"$setOnInsert": table}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("cannot create demo table: %w", err)
		}
	}

	return nil
}
