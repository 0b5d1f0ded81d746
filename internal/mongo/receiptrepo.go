package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/comandaclub/comanda/internal/pos"
)

type ReceiptRepo struct {
	collection *mongo.Collection
}

func NewReceiptRepo(db *mongo.Database) *ReceiptRepo {
	return &ReceiptRepo{
		collection: db.Collection("receipts"),
	}
}

func (r *ReceiptRepo) Create(ctx context.Context, receipt *pos.Receipt) error {
	if receipt == nil {
		return fmt.Errorf("receipt is nil")
	}

	if _, err := r.collection.InsertOne(ctx, receipt); err != nil {
		return fmt.Errorf("cannot create receipt: %w", err)
	}

	return nil
}

func (r *ReceiptRepo) Get(ctx context.Context, id uuid.UUID) (*pos.Receipt, error) {
	var receipt pos.Receipt
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&receipt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get receipt: %w", err)
	}
	return &receipt, nil
}

func (r *ReceiptRepo) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*pos.Receipt, error) {
	opts := options.Find().SetSort(bson.M{"issued_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": restaurantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list receipts: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*pos.Receipt
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode receipts: %w", err)
	}

	return result, nil
}
