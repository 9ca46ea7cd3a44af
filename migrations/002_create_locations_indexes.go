package migrations

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	Register(Migration{
		Version:     "002_create_locations_indexes",
		Description: "Create indexes for the locations collection",
		Up:          up002,
		Down:        down002,
	})
}

func up002(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "parent_id", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "name", Value: 1}}},
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"code": bson.M{"$gt": ""}}),
		},
	}
	if _, err := db.Collection("locations").Indexes().CreateMany(ctx, indexes); err != nil && !isIndexExistsError(err) {
		return err
	}
	return nil
}

func down002(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("locations").Indexes().DropAll(ctx)
	return err
}
