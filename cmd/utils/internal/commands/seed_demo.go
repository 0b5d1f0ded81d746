package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/comandaclub/comanda/cmd/utils/internal/seeding"
)

// demoRestaurantID is the fixed restaurant all demo data belongs to,
// unless overridden through UTILS_RESTAURANT_ID.
const demoRestaurantID = "3f8a2c1e-9b4d-4e6f-a5c7-d210e8b6f49a"

// SeedDemo applies demo seeding (menu catalog, tables and stock levels)
func SeedDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo seeding process...")

	client, db, err := connect(ctx, config)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Connected to MongoDB")

	restaurantID, err := resolveRestaurantID(config)
	if err != nil {
		return err
	}

	if err := seedCatalogDemo(ctx, db, restaurantID, logger); err != nil {
		return fmt.Errorf("seed catalog demo: %w", err)
	}

	if err := seedStockDemo(ctx, db, restaurantID, logger); err != nil {
		return fmt.Errorf("seed stock demo: %w", err)
	}

	return nil
}

// connect opens a client and resolves the target database from config.
func connect(ctx context.Context, config *aqm.Config) (*mongo.Client, *mongo.Database, error) {
	mongoURL, _ := config.GetString("mongo.url")
	if mongoURL == "" {
		mongoURL = "mongodb://localhost:27017"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	dbName, _ := config.GetString("mongo.name")
	if dbName == "" {
		dbName = "comanda"
	}

	return client, client.Database(dbName), nil
}

func resolveRestaurantID(config *aqm.Config) (uuid.UUID, error) {
	raw, _ := config.GetString("restaurant.id")
	if raw == "" {
		raw = demoRestaurantID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse restaurant id %q: %w", raw, err)
	}
	return id, nil
}

func seedCatalogDemo(ctx context.Context, db *mongo.Database, restaurantID uuid.UUID, logger aqm.Logger) error {
	// Check if already seeded
	seedsCollection := db.Collection("_seeds")
	count, err := seedsCollection.CountDocuments(ctx, bson.M{"_id": "demo_catalog_v1"})
	if err != nil {
		return fmt.Errorf("check seed status: %w", err)
	}

	if count > 0 {
		logger.Info("Catalog demo seeds already applied, skipping")
		return nil
	}

	// Apply the seed
	if err := seeding.SeedCatalog(ctx, db, restaurantID); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	// Mark as seeded
	_, err = seedsCollection.InsertOne(ctx, bson.M{
		"_id":         "demo_catalog_v1",
		"description": "Create a demo menu with per-item ingredient consumption plus a small table layout",
		"applied_at":  bson.M{"$currentDate": bson.M{"$type": "timestamp"}},
	})
	if err != nil {
		logger.Infof("⚠️  Failed to mark seed as applied: %v", err)
	}

	logger.Info("Catalog demo seeds applied successfully")
	return nil
}

func seedStockDemo(ctx context.Context, db *mongo.Database, restaurantID uuid.UUID, logger aqm.Logger) error {
	// Check if already seeded
	seedsCollection := db.Collection("_seeds")
	count, err := seedsCollection.CountDocuments(ctx, bson.M{"_id": "demo_stock_v1"})
	if err != nil {
		return fmt.Errorf("check seed status: %w", err)
	}

	if count > 0 {
		logger.Info("Stock demo seeds already applied, skipping")
		return nil
	}

	// Apply the seed
	if err := seeding.SeedStock(ctx, db, restaurantID); err != nil {
		return fmt.Errorf("seed stock: %w", err)
	}

	// Mark as seeded
	_, err = seedsCollection.InsertOne(ctx, bson.M{
		"_id":         "demo_stock_v1",
		"description": "Create starting stock levels covering every ingredient the demo menu consumes",
		"applied_at":  bson.M{"$currentDate": bson.M{"$type": "timestamp"}},
	})
	if err != nil {
		logger.Infof("⚠️  Failed to mark seed as applied: %v", err)
	}

	logger.Info("Stock demo seeds applied successfully")
	return nil
}
