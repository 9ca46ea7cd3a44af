package services

import (
	"context"
	"log/slog"
	"time"

	"go-sahay/internal/rbac/models"
)

// Resolver is the permission resolution engine. It owns no state of its
// own: every check is a pure function over data fetched from the
// registries and the assignment store at call time.
type Resolver struct {
	permissions PermissionStore
	roles       *RoleService
	assignments AssignmentStore
	locations   LocationResolver
	directory   UserDirectory
	cache       *heldSetCache
}

// NewResolver creates a new resolution engine
func NewResolver(permissions PermissionStore, roles *RoleService, assignments AssignmentStore, locations LocationResolver, directory UserDirectory) *Resolver {
	return &Resolver{
		permissions: permissions,
		roles:       roles,
		assignments: assignments,
		locations:   locations,
		directory:   directory,
	}
}

// UserPermissions computes the user's effective permission set: the
// union of every permission granted via active, non-expired role
// assignments after hierarchy expansion, de-duplicated by name.
func (r *Resolver) UserPermissions(ctx context.Context, userID string) ([]models.Permission, error) {
	names, err := r.userPermissionNames(ctx, userID, time.Now(), true)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	perms, err := r.permissions.GetPermissionsByNames(ctx, ordered)
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// HasPermission decides whether the user may perform the named
// permission in the given context. The policy is fail-closed: a missing
// permission, failed condition, unmet dependency or unresolvable scope
// is a deny, never an error.
func (r *Resolver) HasPermission(ctx context.Context, userID, permissionName string, checkCtx *models.CheckContext) (bool, error) {
	now := time.Now()
	current := true
	if checkCtx != nil && !checkCtx.Timestamp.IsZero() {
		now = checkCtx.Timestamp
		current = false
	}

	held, err := r.userPermissionNames(ctx, userID, now, current)
	if err != nil {
		return false, err
	}
	if _, ok := held[permissionName]; !ok {
		return false, nil
	}

	perm, err := r.permissions.GetPermission(ctx, permissionName)
	if err != nil {
		return false, err
	}
	if perm == nil {
		// Granted by a role but no longer defined in the registry.
		slog.Warn("[RBAC] Role grants undefined permission", "permission", permissionName, "user_id", userID)
		return false, nil
	}

	if !ValidateConditions(perm, now) {
		return false, nil
	}
	if !DependenciesSatisfied(perm, held) {
		return false, nil
	}

	if checkCtx != nil && (checkCtx.RecordLocationID != "" || checkCtx.RecordOwnerID != "") {
		scope, err := r.effectiveScope(ctx, perm, held)
		if err != nil {
			return false, err
		}
		return r.checkScope(ctx, userID, scope, checkCtx)
	}

	return true, nil
}

// userPermissionNames collects the names of every permission the user
// holds through active, non-expired assignments. Only present-time
// resolutions touch the cache; historical timestamps always recompute.
func (r *Resolver) userPermissionNames(ctx context.Context, userID string, now time.Time, current bool) (map[string]struct{}, error) {
	if current {
		if held, ok := r.cache.get(ctx, userID); ok {
			return held, nil
		}
	}

	assignments, err := r.assignments.ListActiveAssignments(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	held := make(map[string]struct{})
	for _, assignment := range assignments {
		role, err := r.roles.roles.GetRole(ctx, assignment.RoleName)
		if err != nil {
			return nil, err
		}
		if role == nil {
			slog.Warn("[RBAC] Assignment references missing role", "role", assignment.RoleName, "user_id", userID)
			continue
		}

		names, err := r.roles.EffectivePermissions(ctx, role)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			held[name] = struct{}{}
		}
	}

	if current {
		r.cache.set(ctx, userID, held)
	}
	return held, nil
}

// effectiveScope resolves the scope the check runs at. When several held
// permissions cover the same module/resource/action at different
// scopes, the widest wins: all > regional > own.
func (r *Resolver) effectiveScope(ctx context.Context, perm *models.Permission, held map[string]struct{}) (models.PermissionScope, error) {
	scope := perm.Scope
	if scope == models.ScopeAll {
		return scope, nil
	}

	names := make([]string, 0, len(held))
	for name := range held {
		names = append(names, name)
	}
	heldPerms, err := r.permissions.GetPermissionsByNames(ctx, names)
	if err != nil {
		return scope, err
	}

	for _, other := range heldPerms {
		if other.SameAction(*perm) && other.Scope.Wider(scope) {
			scope = other.Scope
		}
	}
	return scope, nil
}

// checkScope compares the record's location and owner against the
// user's admin scope at the resolved permission scope.
func (r *Resolver) checkScope(ctx context.Context, userID string, scope models.PermissionScope, checkCtx *models.CheckContext) (bool, error) {
	switch scope {
	case models.ScopeAll:
		return true, nil

	case models.ScopeOwn:
		return checkCtx.RecordOwnerID != "" && checkCtx.RecordOwnerID == userID, nil

	case models.ScopeRegional:
		if checkCtx.RecordLocationID == "" {
			return false, nil
		}
		adminScope, err := r.directory.GetAdminScope(ctx, userID)
		if err != nil {
			return false, err
		}
		if adminScope == nil {
			return false, nil
		}
		if adminScope.Level == models.ScopeLevelState {
			return true, nil
		}
		scopedLocation := adminScope.LocationID()
		if scopedLocation == "" {
			return false, nil
		}
		return r.locations.IsAncestorOrEqual(ctx, scopedLocation, checkCtx.RecordLocationID)
	}

	return false, nil
}
