package migrations

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	Register(Migration{
		Version:     "003_create_users_indexes",
		Description: "Create indexes for the users collection",
		Up:          up003,
		Down:        down003,
	})
}

func up003(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "location_id", Value: 1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, indexes); err != nil && !isIndexExistsError(err) {
		return err
	}
	return nil
}

func down003(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().DropAll(ctx)
	return err
}
