package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-sahay/internal/users/models"
	"go-sahay/pkg/database"
)

// Repository handles user persistence
type Repository struct {
	collection *mongo.Collection
}

// NewRepository creates a new users repository
func NewRepository(mongodb *database.MongoDB) *Repository {
	return &Repository{
		collection: mongodb.Database.Collection(models.UsersCollection),
	}
}

// EnsureIndexes creates the phone and location indexes
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "location_id", Value: 1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *Repository) Insert(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.IsActive = true
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

func (r *Repository) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"phone": phone, "is_active": true}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns active users, optionally filtered by location
func (r *Repository) List(ctx context.Context, locationID string) ([]models.User, error) {
	filter := bson.M{"is_active": true}
	if locationID != "" {
		filter["location_id"] = locationID
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Repository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.UserID}, user)
	return err
}

// TouchLastLogin records a successful login
func (r *Repository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"last_login": at, "updated_at": at}},
	)
	return err
}

// Deactivate soft-deletes a user account
func (r *Repository) Deactivate(ctx context.Context, userID string) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}
