package models

import (
	"time"

	rbacModels "go-sahay/internal/rbac/models"
)

// User is a staff or volunteer account. Beneficiary records reference
// users through RegisteredBy; the RBAC resolver reads AdminScope for
// regional checks.
type User struct {
	UserID     string                 `bson:"_id" json:"user_id"`
	Phone      string                 `bson:"phone" json:"phone"`
	Name       string                 `bson:"name" json:"name"`
	Email      string                 `bson:"email,omitempty" json:"email,omitempty"`
	LocationID string                 `bson:"location_id,omitempty" json:"location_id,omitempty"`
	AdminScope *rbacModels.AdminScope `bson:"admin_scope,omitempty" json:"admin_scope,omitempty"`
	IsActive   bool                   `bson:"is_active" json:"is_active"`
	LastLogin  *time.Time             `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt  time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time              `bson:"updated_at" json:"updated_at"`
}

// UsersCollection is the MongoDB collection name
const UsersCollection = "users"
