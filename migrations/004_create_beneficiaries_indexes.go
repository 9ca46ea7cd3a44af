package migrations

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	Register(Migration{
		Version:     "004_create_beneficiaries_indexes",
		Description: "Create indexes for the beneficiaries collection",
		Up:          up004,
		Down:        down004,
	})
}

func up004(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "registered_by", Value: 1}}},
	}
	if _, err := db.Collection("beneficiaries").Indexes().CreateMany(ctx, indexes); err != nil && !isIndexExistsError(err) {
		return err
	}
	return nil
}

func down004(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("beneficiaries").Indexes().DropAll(ctx)
	return err
}
