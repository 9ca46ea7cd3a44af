package services

import (
	"context"
	"time"

	"go-sahay/internal/rbac/models"
)

// PermissionStore is the persistence surface the permission registry
// needs. Lookups return (nil, nil) when the document is absent.
type PermissionStore interface {
	InsertPermission(ctx context.Context, perm *models.Permission) error
	UpsertPermission(ctx context.Context, perm *models.Permission) (bool, error)
	GetPermission(ctx context.Context, name string) (*models.Permission, error)
	GetPermissionsByNames(ctx context.Context, names []string) ([]models.Permission, error)
	ListPermissions(ctx context.Context, module string) ([]models.Permission, error)
	DeletePermission(ctx context.Context, name string) error
	CountPermissions(ctx context.Context) (int64, error)
}

// RoleStore is the persistence surface the role registry needs
type RoleStore interface {
	InsertRole(ctx context.Context, role *models.Role) error
	UpsertRole(ctx context.Context, role *models.Role) (bool, error)
	GetRole(ctx context.Context, name string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	UpdateRole(ctx context.Context, role *models.Role) error
	DeleteRole(ctx context.Context, name string) error
	CountRoles(ctx context.Context) (int64, error)
}

// AssignmentStore is the persistence surface for user-role assignments.
// The store must back InsertAssignment with a uniqueness constraint on
// active (user, role) pairs; the service-level duplicate check is
// advisory only.
type AssignmentStore interface {
	InsertAssignment(ctx context.Context, assignment *models.UserRoleAssignment) error
	FindActiveAssignment(ctx context.Context, userID, roleName string) (*models.UserRoleAssignment, error)
	ListActiveAssignments(ctx context.Context, userID string, now time.Time) ([]models.UserRoleAssignment, error)
	ListAssignments(ctx context.Context, userID string) ([]models.UserRoleAssignment, error)
	DeactivateAssignment(ctx context.Context, userID, roleName, removedBy, reason string, at time.Time) (bool, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	CountActiveAssignments(ctx context.Context) (int64, error)
	CountActiveAssignmentsForRole(ctx context.Context, roleName string) (int64, error)
}

// LocationResolver answers ancestor queries against the location
// hierarchy; used for regional scope checks.
type LocationResolver interface {
	IsAncestorOrEqual(ctx context.Context, ancestorID, locationID string) (bool, error)
}

// UserDirectory resolves a user's admin scope
type UserDirectory interface {
	GetAdminScope(ctx context.Context, userID string) (*models.AdminScope, error)
}
