package services

import (
	"context"
	"log/slog"
	"time"

	"go-sahay/internal/rbac/models"
	"go-sahay/pkg/database"
)

// Service is the administrative surface of the RBAC module: role
// assignment, expiry cleanup, seeding and statistics, orchestrated on
// top of the registries and the resolution engine.
type Service struct {
	permStore   PermissionStore
	roleStore   RoleStore
	assignStore AssignmentStore
	permissions *PermissionService
	roles       *RoleService
	resolver    *Resolver
	cache       *heldSetCache
}

// NewService creates the RBAC service. The three store arguments are
// normally the same *Repository.
func NewService(permStore PermissionStore, roleStore RoleStore, assignStore AssignmentStore, locations LocationResolver, directory UserDirectory) *Service {
	permissions := NewPermissionService(permStore)
	roles := NewRoleService(roleStore, assignStore)
	resolver := NewResolver(permStore, roles, assignStore, locations, directory)

	return &Service{
		permStore:   permStore,
		roleStore:   roleStore,
		assignStore: assignStore,
		permissions: permissions,
		roles:       roles,
		resolver:    resolver,
	}
}

// WithCache attaches a Redis-backed cache of resolved permission sets.
// Assignment changes invalidate the affected user; role definition
// changes age out within the cache TTL.
func (s *Service) WithCache(redis *database.Redis) *Service {
	s.cache = newHeldSetCache(redis)
	s.resolver.cache = s.cache
	return s
}

// Permissions exposes the permission registry
func (s *Service) Permissions() *PermissionService { return s.permissions }

// Roles exposes the role registry
func (s *Service) Roles() *RoleService { return s.roles }

// Resolver exposes the resolution engine
func (s *Service) Resolver() *Resolver { return s.resolver }

// AssignmentMeta carries the optional attributes of a role assignment
type AssignmentMeta struct {
	Reason    string
	IsPrimary bool
	ExpiresAt *time.Time
}

// AssignRole grants a role to a user. A second active assignment of the
// same role fails with a DuplicateAssignmentError; the check here is
// advisory and the store's uniqueness constraint settles races.
func (s *Service) AssignRole(ctx context.Context, userID, roleName, assignedBy string, meta AssignmentMeta) (*models.UserRoleAssignment, error) {
	if userID == "" {
		return nil, &models.ValidationError{Field: "user_id", Message: "user id cannot be empty"}
	}
	if _, err := s.roles.Get(ctx, roleName); err != nil {
		return nil, err
	}

	existing, err := s.assignStore.FindActiveAssignment(ctx, userID, roleName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &models.DuplicateAssignmentError{UserID: userID, RoleName: roleName}
	}

	assignment := &models.UserRoleAssignment{
		UserID:     userID,
		RoleName:   roleName,
		AssignedBy: assignedBy,
		Reason:     meta.Reason,
		IsPrimary:  meta.IsPrimary,
		ExpiresAt:  meta.ExpiresAt,
	}
	if err := s.assignStore.InsertAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, userID)

	slog.Info("[RBAC] Role assigned",
		"user_id", userID,
		"role", roleName,
		"assigned_by", assignedBy,
		"expires_at", meta.ExpiresAt)
	return assignment, nil
}

// RemoveRole deactivates the user's active assignment of the role. The
// record is kept for audit; only IsActive flips.
func (s *Service) RemoveRole(ctx context.Context, userID, roleName, removedBy, reason string) error {
	removed, err := s.assignStore.DeactivateAssignment(ctx, userID, roleName, removedBy, reason, time.Now())
	if err != nil {
		return err
	}
	if !removed {
		return &models.NotFoundError{Kind: "assignment", ID: userID + "/" + roleName}
	}
	s.cache.invalidate(ctx, userID)

	slog.Info("[RBAC] Role removed",
		"user_id", userID,
		"role", roleName,
		"removed_by", removedBy,
		"reason", reason)
	return nil
}

// UserRoles returns the user's active, non-expired assignments together
// with the role definitions.
func (s *Service) UserRoles(ctx context.Context, userID string) ([]models.UserRoleAssignment, []models.Role, error) {
	assignments, err := s.assignStore.ListActiveAssignments(ctx, userID, time.Now())
	if err != nil {
		return nil, nil, err
	}

	roles := make([]models.Role, 0, len(assignments))
	for _, assignment := range assignments {
		role, err := s.roleStore.GetRole(ctx, assignment.RoleName)
		if err != nil {
			return nil, nil, err
		}
		if role != nil {
			roles = append(roles, *role)
		}
	}
	return assignments, roles, nil
}

// CleanupExpired deactivates every active assignment past its expiry
// and returns the count. Running it twice in a row deactivates nothing
// the second time.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	count, err := s.assignStore.DeactivateExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		slog.Info("[RBAC] Expired assignments deactivated", "count", count)
	}
	return count, nil
}

// Statistics returns read-only counts for administration
func (s *Service) Statistics(ctx context.Context) (*models.Statistics, error) {
	roles, err := s.roleStore.CountRoles(ctx)
	if err != nil {
		return nil, err
	}
	permissions, err := s.permStore.CountPermissions(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignStore.CountActiveAssignments(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Statistics{
		Roles:             roles,
		Permissions:       permissions,
		ActiveAssignments: assignments,
	}, nil
}

// InitializeRBAC seeds the system permissions and roles. It is
// idempotent: existing documents are left untouched and re-runs log and
// succeed.
func (s *Service) InitializeRBAC(ctx context.Context) error {
	slog.Info("[RBAC] Initializing system roles and permissions")

	createdPerms := 0
	for _, perm := range systemPermissions() {
		p := perm
		p.IsSystem = true
		created, err := s.permStore.UpsertPermission(ctx, &p)
		if err != nil {
			return err
		}
		if created {
			createdPerms++
		}
	}

	createdRoles := 0
	for _, role := range systemRoles() {
		r := role
		created, err := s.roleStore.UpsertRole(ctx, &r)
		if err != nil {
			return err
		}
		if created {
			createdRoles++
		}
	}

	slog.Info("[RBAC] Seed completed",
		"permissions_created", createdPerms,
		"roles_created", createdRoles)
	return nil
}
