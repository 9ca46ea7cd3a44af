package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-sahay/internal/beneficiaries/models"
	"go-sahay/pkg/database"
)

// Repository handles beneficiary persistence
type Repository struct {
	collection *mongo.Collection
}

// NewRepository creates a new beneficiaries repository
func NewRepository(mongodb *database.MongoDB) *Repository {
	return &Repository{
		collection: mongodb.Database.Collection(models.BeneficiariesCollection),
	}
}

// EnsureIndexes creates the location and registrar indexes
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "registered_by", Value: 1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *Repository) Insert(ctx context.Context, beneficiary *models.Beneficiary) error {
	beneficiary.CreatedAt = time.Now()
	beneficiary.UpdatedAt = beneficiary.CreatedAt
	beneficiary.Status = models.StatusActive
	_, err := r.collection.InsertOne(ctx, beneficiary)
	return err
}

func (r *Repository) Get(ctx context.Context, id string) (*models.Beneficiary, error) {
	var beneficiary models.Beneficiary
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&beneficiary)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &beneficiary, nil
}

// List returns beneficiaries filtered by location and registrar
func (r *Repository) List(ctx context.Context, locationID, registeredBy string) ([]models.Beneficiary, error) {
	filter := bson.M{"status": models.StatusActive}
	if locationID != "" {
		filter["location_id"] = locationID
	}
	if registeredBy != "" {
		filter["registered_by"] = registeredBy
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var beneficiaries []models.Beneficiary
	if err := cursor.All(ctx, &beneficiaries); err != nil {
		return nil, err
	}
	return beneficiaries, nil
}

func (r *Repository) Update(ctx context.Context, beneficiary *models.Beneficiary) error {
	beneficiary.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": beneficiary.ID}, beneficiary)
	return err
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
