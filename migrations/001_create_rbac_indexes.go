package migrations

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	Register(Migration{
		Version:     "001_create_rbac_indexes",
		Description: "Create indexes for permissions, roles and user_roles collections",
		Up:          up001,
		Down:        down001,
	})
}

func up001(ctx context.Context, db *mongo.Database) error {
	permissionIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "module", Value: 1}, {Key: "resource", Value: 1}, {Key: "action", Value: 1}}},
		{Keys: bson.D{{Key: "is_system", Value: 1}}},
	}
	if _, err := db.Collection("permissions").Indexes().CreateMany(ctx, permissionIndexes); err != nil && !isIndexExistsError(err) {
		return err
	}

	roleIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "level", Value: -1}}},
		{Keys: bson.D{{Key: "parent", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}
	if _, err := db.Collection("roles").Indexes().CreateMany(ctx, roleIndexes); err != nil && !isIndexExistsError(err) {
		return err
	}

	assignmentIndexes := []mongo.IndexModel{
		// One active assignment per (user, role); inactive audit records
		// stay out of the constraint.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "role_name", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"is_active": true}),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "role_name", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	}
	if _, err := db.Collection("user_roles").Indexes().CreateMany(ctx, assignmentIndexes); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func down001(ctx context.Context, db *mongo.Database) error {
	for _, name := range []string{"permissions", "roles", "user_roles"} {
		if _, err := db.Collection(name).Indexes().DropAll(ctx); err != nil {
			return err
		}
	}
	return nil
}
