package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-sahay/internal/locations/models"
	"go-sahay/pkg/database"
)

// Repository handles location persistence
type Repository struct {
	collection *mongo.Collection
}

// NewRepository creates a new locations repository
func NewRepository(mongodb *database.MongoDB) *Repository {
	return &Repository{
		collection: mongodb.Database.Collection(models.LocationsCollection),
	}
}

// EnsureIndexes creates the parent and type indexes
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "parent_id", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "name", Value: 1}}},
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"code": bson.M{"$gt": ""}}),
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *Repository) Insert(ctx context.Context, location *models.Location) error {
	location.CreatedAt = time.Now()
	location.UpdatedAt = location.CreatedAt
	location.IsActive = true
	_, err := r.collection.InsertOne(ctx, location)
	return err
}

func (r *Repository) Get(ctx context.Context, id string) (*models.Location, error) {
	var location models.Location
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&location)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// List returns active locations, optionally filtered by type and parent
func (r *Repository) List(ctx context.Context, locationType models.LocationType, parentID string) ([]models.Location, error) {
	filter := bson.M{"is_active": true}
	if locationType != "" {
		filter["type"] = locationType
	}
	if parentID != "" {
		filter["parent_id"] = parentID
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []models.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *Repository) Update(ctx context.Context, location *models.Location) error {
	location.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": location.ID}, location)
	return err
}

// Deactivate soft-deletes a location
func (r *Repository) Deactivate(ctx context.Context, id string) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// CountChildren counts active locations directly under parentID
func (r *Repository) CountChildren(ctx context.Context, parentID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"parent_id": parentID, "is_active": true})
}
