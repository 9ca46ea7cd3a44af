package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go-sahay/internal/rbac/models"
)

// PermissionService is the permission registry: the catalog of
// permission definitions and the pure condition/dependency checks the
// resolution engine delegates to.
type PermissionService struct {
	store PermissionStore
}

// NewPermissionService creates a new permission service
func NewPermissionService(store PermissionStore) *PermissionService {
	return &PermissionService{store: store}
}

// Define validates and registers a new permission definition
func (s *PermissionService) Define(ctx context.Context, perm *models.Permission) error {
	if err := validatePermission(perm); err != nil {
		return err
	}

	existing, err := s.store.GetPermission(ctx, perm.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return &models.ValidationError{Field: "name", Message: "permission already exists: " + perm.Name}
	}

	if err := s.store.InsertPermission(ctx, perm); err != nil {
		return err
	}

	slog.Info("[RBAC] Permission defined", "permission", perm.Name, "module", perm.Module, "scope", perm.Scope)
	return nil
}

// Get returns a permission by name, or a NotFoundError
func (s *PermissionService) Get(ctx context.Context, name string) (*models.Permission, error) {
	perm, err := s.store.GetPermission(ctx, name)
	if err != nil {
		return nil, err
	}
	if perm == nil {
		return nil, &models.NotFoundError{Kind: "permission", ID: name}
	}
	return perm, nil
}

// List returns permissions ordered by name, optionally filtered by module
func (s *PermissionService) List(ctx context.Context, module string) ([]models.Permission, error) {
	return s.store.ListPermissions(ctx, module)
}

// GetByModule produces the ordered sequence of permissions whose module matches
func (s *PermissionService) GetByModule(ctx context.Context, module string) ([]models.Permission, error) {
	return s.store.ListPermissions(ctx, module)
}

// Delete removes a permission definition. Deleting a permission still
// referenced by a role is a ConflictError.
func (s *PermissionService) Delete(ctx context.Context, name string, roles RoleStore) error {
	perm, err := s.store.GetPermission(ctx, name)
	if err != nil {
		return err
	}
	if perm == nil {
		return &models.NotFoundError{Kind: "permission", ID: name}
	}

	all, err := roles.ListRoles(ctx)
	if err != nil {
		return err
	}
	for _, role := range all {
		for _, p := range role.Permissions {
			if p == name {
				return &models.ConflictError{Message: "permission " + name + " is referenced by role " + role.Name}
			}
		}
	}

	return s.store.DeletePermission(ctx, name)
}

// ValidateConditions evaluates a permission's time restrictions at the
// given instant. A permission with no conditions is always valid. When
// allowedHours is present the hour must lie in [start, end); when
// allowedDays is present the weekday name must be listed.
func ValidateConditions(perm *models.Permission, at time.Time) bool {
	if perm.Conditions == nil {
		return true
	}

	if window := perm.Conditions.AllowedHours; window != nil {
		hour := at.Hour()
		if hour < window.Start || hour >= window.End {
			return false
		}
	}

	if days := perm.Conditions.AllowedDays; len(days) > 0 {
		weekday := at.Weekday().String()
		found := false
		for _, day := range days {
			if strings.EqualFold(day, weekday) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// DependenciesSatisfied reports whether every permission the given one
// depends on is present in the held set.
func DependenciesSatisfied(perm *models.Permission, held map[string]struct{}) bool {
	if perm.Dependencies == nil {
		return true
	}
	for _, required := range perm.Dependencies.Requires {
		if _, ok := held[required]; !ok {
			return false
		}
	}
	return true
}

func validatePermission(perm *models.Permission) error {
	if perm.Name == "" {
		return &models.ValidationError{Field: "name", Message: "permission name cannot be empty"}
	}
	if !strings.Contains(perm.Name, ".") {
		return &models.ValidationError{Field: "name", Message: "permission name must be dot-separated, e.g. beneficiaries.read.regional"}
	}
	if perm.Module == "" {
		return &models.ValidationError{Field: "module", Message: "module cannot be empty"}
	}
	if perm.Resource == "" {
		return &models.ValidationError{Field: "resource", Message: "resource cannot be empty"}
	}
	if perm.Action == "" {
		return &models.ValidationError{Field: "action", Message: "action cannot be empty"}
	}
	if !perm.Scope.Valid() {
		return &models.ValidationError{Field: "scope", Message: "scope must be one of own, regional, all"}
	}
	if window := conditionsWindow(perm); window != nil {
		if window.Start < 0 || window.End > 24 || window.Start >= window.End {
			return &models.ValidationError{Field: "conditions.allowed_hours", Message: "allowed hours must satisfy 0 <= start < end <= 24"}
		}
	}
	return nil
}

func conditionsWindow(perm *models.Permission) *models.TimeWindow {
	if perm.Conditions == nil {
		return nil
	}
	return perm.Conditions.AllowedHours
}
