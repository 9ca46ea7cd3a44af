package services

import (
	"context"
	"fmt"
	"time"

	"go-sahay/internal/rbac/models"
	"go-sahay/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository handles database operations for the RBAC collections
type Repository struct {
	mongodb     *database.MongoDB
	permissions *mongo.Collection
	roles       *mongo.Collection
	assignments *mongo.Collection
}

// NewRepository creates a new repository instance
func NewRepository(mongodb *database.MongoDB) *Repository {
	return &Repository{
		mongodb:     mongodb,
		permissions: mongodb.Collection(models.PermissionsCollection),
		roles:       mongodb.Collection(models.RolesCollection),
		assignments: mongodb.Collection(models.AssignmentsCollection),
	}
}

// EnsureIndexes creates the indexes the RBAC collections rely on. The
// partial unique index on (user_id, role_name) where is_active=true is
// what makes two concurrent AssignRole calls for the same pair safe.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	permIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "module", Value: 1}}},
		{Keys: bson.D{
			{Key: "module", Value: 1},
			{Key: "resource", Value: 1},
			{Key: "action", Value: 1},
		}},
	}
	if _, err := r.permissions.Indexes().CreateMany(ctx, permIndexes); err != nil {
		return fmt.Errorf("failed to create permissions indexes: %w", err)
	}

	roleIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "level", Value: -1}}},
	}
	if _, err := r.roles.Indexes().CreateMany(ctx, roleIndexes); err != nil {
		return fmt.Errorf("failed to create roles indexes: %w", err)
	}

	assignmentIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "role_name", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_active": true}),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "role_name", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	}
	if _, err := r.assignments.Indexes().CreateMany(ctx, assignmentIndexes); err != nil {
		return fmt.Errorf("failed to create user_roles indexes: %w", err)
	}

	return nil
}

// Permission operations

func (r *Repository) InsertPermission(ctx context.Context, perm *models.Permission) error {
	perm.CreatedAt = time.Now()
	perm.UpdatedAt = perm.CreatedAt

	_, err := r.permissions.InsertOne(ctx, perm)
	if mongo.IsDuplicateKeyError(err) {
		return &models.ValidationError{Field: "name", Message: "permission already exists: " + perm.Name}
	}
	return err
}

// UpsertPermission inserts the permission if absent; it never
// overwrites an existing document. Returns true when a new document was
// created.
func (r *Repository) UpsertPermission(ctx context.Context, perm *models.Permission) (bool, error) {
	now := time.Now()
	update := bson.M{"$setOnInsert": bson.M{
		"module":       perm.Module,
		"category":     perm.Category,
		"resource":     perm.Resource,
		"action":       perm.Action,
		"scope":        perm.Scope,
		"description":  perm.Description,
		"conditions":   perm.Conditions,
		"dependencies": perm.Dependencies,
		"is_system":    perm.IsSystem,
		"created_at":   now,
		"updated_at":   now,
	}}

	result, err := r.permissions.UpdateOne(ctx, bson.M{"_id": perm.Name}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

func (r *Repository) GetPermission(ctx context.Context, name string) (*models.Permission, error) {
	var perm models.Permission
	err := r.permissions.FindOne(ctx, bson.M{"_id": name}).Decode(&perm)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *Repository) GetPermissionsByNames(ctx context.Context, names []string) ([]models.Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}

	cursor, err := r.permissions.Find(ctx, bson.M{"_id": bson.M{"$in": names}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var perms []models.Permission
	if err := cursor.All(ctx, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// ListPermissions returns permissions ordered by name, optionally
// filtered by module.
func (r *Repository) ListPermissions(ctx context.Context, module string) ([]models.Permission, error) {
	filter := bson.M{}
	if module != "" {
		filter["module"] = module
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.permissions.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var perms []models.Permission
	if err := cursor.All(ctx, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *Repository) DeletePermission(ctx context.Context, name string) error {
	result, err := r.permissions.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return &models.NotFoundError{Kind: "permission", ID: name}
	}
	return nil
}

func (r *Repository) CountPermissions(ctx context.Context) (int64, error) {
	return r.permissions.CountDocuments(ctx, bson.M{})
}

// Role operations

func (r *Repository) InsertRole(ctx context.Context, role *models.Role) error {
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt

	_, err := r.roles.InsertOne(ctx, role)
	if mongo.IsDuplicateKeyError(err) {
		return &models.ValidationError{Field: "name", Message: "role already exists: " + role.Name}
	}
	return err
}

// UpsertRole inserts the role if absent. Returns true when a new
// document was created.
func (r *Repository) UpsertRole(ctx context.Context, role *models.Role) (bool, error) {
	now := time.Now()
	update := bson.M{"$setOnInsert": bson.M{
		"display_name": role.DisplayName,
		"description":  role.Description,
		"level":        role.Level,
		"category":     role.Category,
		"permissions":  role.Permissions,
		"parent":       role.Parent,
		"is_system":    role.IsSystem,
		"created_at":   now,
		"updated_at":   now,
	}}

	result, err := r.roles.UpdateOne(ctx, bson.M{"_id": role.Name}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

func (r *Repository) GetRole(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.roles.FindOne(ctx, bson.M{"_id": name}).Decode(&role)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *Repository) ListRoles(ctx context.Context) ([]models.Role, error) {
	opts := options.Find().SetSort(bson.D{{Key: "level", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.roles.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []models.Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *Repository) UpdateRole(ctx context.Context, role *models.Role) error {
	role.UpdatedAt = time.Now()
	result, err := r.roles.ReplaceOne(ctx, bson.M{"_id": role.Name}, role)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Kind: "role", ID: role.Name}
	}
	return nil
}

func (r *Repository) DeleteRole(ctx context.Context, name string) error {
	result, err := r.roles.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return &models.NotFoundError{Kind: "role", ID: name}
	}
	return nil
}

func (r *Repository) CountRoles(ctx context.Context) (int64, error) {
	return r.roles.CountDocuments(ctx, bson.M{})
}

// Assignment operations

// InsertAssignment creates a new assignment record. The partial unique
// index translates a concurrent duplicate into a DuplicateAssignmentError.
func (r *Repository) InsertAssignment(ctx context.Context, assignment *models.UserRoleAssignment) error {
	assignment.AssignedAt = time.Now()
	assignment.UpdatedAt = assignment.AssignedAt
	assignment.IsActive = true

	_, err := r.assignments.InsertOne(ctx, assignment)
	if mongo.IsDuplicateKeyError(err) {
		return &models.DuplicateAssignmentError{UserID: assignment.UserID, RoleName: assignment.RoleName}
	}
	return err
}

func (r *Repository) FindActiveAssignment(ctx context.Context, userID, roleName string) (*models.UserRoleAssignment, error) {
	var assignment models.UserRoleAssignment
	filter := bson.M{
		"user_id":   userID,
		"role_name": roleName,
		"is_active": true,
	}

	err := r.assignments.FindOne(ctx, filter).Decode(&assignment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListActiveAssignments returns the user's active assignments that have
// not expired as of now.
func (r *Repository) ListActiveAssignments(ctx context.Context, userID string, now time.Time) ([]models.UserRoleAssignment, error) {
	filter := bson.M{
		"user_id":   userID,
		"is_active": true,
		"$or": []bson.M{
			{"expires_at": bson.M{"$exists": false}},
			{"expires_at": nil},
			{"expires_at": bson.M{"$gt": now}},
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "assigned_at", Value: 1}})
	cursor, err := r.assignments.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []models.UserRoleAssignment
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListAssignments returns every assignment record for a user, active or
// not, newest first.
func (r *Repository) ListAssignments(ctx context.Context, userID string) ([]models.UserRoleAssignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assigned_at", Value: -1}})
	cursor, err := r.assignments.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []models.UserRoleAssignment
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// DeactivateAssignment soft-deletes the active assignment for
// (userID, roleName). Returns false when no active assignment exists.
func (r *Repository) DeactivateAssignment(ctx context.Context, userID, roleName, removedBy, reason string, at time.Time) (bool, error) {
	filter := bson.M{
		"user_id":   userID,
		"role_name": roleName,
		"is_active": true,
	}
	update := bson.M{"$set": bson.M{
		"is_active":      false,
		"removed_by":     removedBy,
		"removed_at":     at,
		"removal_reason": reason,
		"updated_at":     at,
	}}

	result, err := r.assignments.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// DeactivateExpired sweeps active assignments whose expiry has passed.
// Each deactivation is an independent write keyed by assignment
// identity, so concurrent sweeps are safe and a second run deactivates
// nothing.
func (r *Repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"is_active":  true,
		"expires_at": bson.M{"$ne": nil, "$lte": now},
	}
	update := bson.M{"$set": bson.M{
		"is_active":      false,
		"removed_at":     now,
		"removal_reason": "expired",
		"updated_at":     now,
	}}

	result, err := r.assignments.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *Repository) CountActiveAssignments(ctx context.Context) (int64, error) {
	return r.assignments.CountDocuments(ctx, bson.M{"is_active": true})
}

func (r *Repository) CountActiveAssignmentsForRole(ctx context.Context, roleName string) (int64, error) {
	return r.assignments.CountDocuments(ctx, bson.M{"role_name": roleName, "is_active": true})
}
