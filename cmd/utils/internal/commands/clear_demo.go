package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ClearDemo removes all demo data seeded by SeedDemo
func ClearDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo data cleanup...")

	client, db, err := connect(ctx, config)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Connected to MongoDB")

	if err := clearCatalogDemo(ctx, db, logger); err != nil {
		return fmt.Errorf("clear catalog demo: %w", err)
	}

	if err := clearStockDemo(ctx, db, logger); err != nil {
		return fmt.Errorf("clear stock demo: %w", err)
	}

	return nil
}

func clearCatalogDemo(ctx context.Context, db *mongo.Database, logger aqm.Logger) error {
	logger.Info("Clearing catalog demo data...")

	// Delete demo menu items
	menuCollection := db.Collection("menu_items")
	menuResult, err := menuCollection.DeleteMany(ctx, bson.M{"created_by": "demo-seed"})
	if err != nil {
		return fmt.Errorf("delete demo menu items: %w", err)
	}
	logger.Info("Deleted demo menu items", "count", menuResult.DeletedCount)

	// Delete demo tables
	tablesCollection := db.Collection("tables")
	tablesResult, err := tablesCollection.DeleteMany(ctx, bson.M{"created_by": "demo-seed"})
	if err != nil {
		return fmt.Errorf("delete demo tables: %w", err)
	}
	logger.Info("Deleted demo tables", "count", tablesResult.DeletedCount)

	// Clear seed tracker
	seedsCollection := db.Collection("_seeds")
	trackerResult, err := seedsCollection.DeleteOne(ctx, bson.M{"_id": "demo_catalog_v1"})
	if err != nil {
		return fmt.Errorf("delete catalog seed tracker: %w", err)
	}
	logger.Info("Cleared catalog seed tracker", "deleted", trackerResult.DeletedCount)

	return nil
}

func clearStockDemo(ctx context.Context, db *mongo.Database, logger aqm.Logger) error {
	logger.Info("Clearing stock demo data...")

	// Delete demo stock levels
	stockCollection := db.Collection("stock_levels")
	stockResult, err := stockCollection.DeleteMany(ctx, bson.M{"created_by": "demo-seed"})
	if err != nil {
		return fmt.Errorf("delete demo stock levels: %w", err)
	}
	logger.Info("Deleted demo stock levels", "count", stockResult.DeletedCount)

	// Clear seed tracker
	seedsCollection := db.Collection("_seeds")
	trackerResult, err := seedsCollection.DeleteOne(ctx, bson.M{"_id": "demo_stock_v1"})
	if err != nil {
		return fmt.Errorf("delete stock seed tracker: %w", err)
	}
	logger.Info("Cleared stock seed tracker", "deleted", trackerResult.DeletedCount)

	return nil
}
