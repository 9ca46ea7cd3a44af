package services

import (
	"context"
	"log/slog"

	"go-sahay/internal/rbac/models"
)

// RoleService is the role registry: role definitions, parent-chain
// inheritance and the hierarchy view.
type RoleService struct {
	roles       RoleStore
	assignments AssignmentStore
}

// NewRoleService creates a new role service
func NewRoleService(roles RoleStore, assignments AssignmentStore) *RoleService {
	return &RoleService{roles: roles, assignments: assignments}
}

// Define validates and registers a new role. The parent pointer is
// checked at definition time: a parent chain that leads back to the new
// role is a CycleError.
func (s *RoleService) Define(ctx context.Context, role *models.Role) error {
	if err := s.validateRole(ctx, role); err != nil {
		return err
	}

	existing, err := s.roles.GetRole(ctx, role.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return &models.ValidationError{Field: "name", Message: "role already exists: " + role.Name}
	}

	if role.Parent != "" {
		if err := s.checkParentChain(ctx, role.Name, role.Parent); err != nil {
			return err
		}
	}

	if err := s.roles.InsertRole(ctx, role); err != nil {
		return err
	}

	slog.Info("[RBAC] Role defined", "role", role.Name, "level", role.Level, "category", role.Category)
	return nil
}

// Get returns a role by name, or a NotFoundError
func (s *RoleService) Get(ctx context.Context, name string) (*models.Role, error) {
	role, err := s.roles.GetRole(ctx, name)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, &models.NotFoundError{Kind: "role", ID: name}
	}
	return role, nil
}

// List returns all roles, highest level first
func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	return s.roles.ListRoles(ctx)
}

// Update applies a patch to an existing role. System roles keep their
// name and category; a changed parent pointer is re-checked for cycles.
func (s *RoleService) Update(ctx context.Context, name string, patch RolePatch) (*models.Role, error) {
	role, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if patch.DisplayName != nil {
		role.DisplayName = *patch.DisplayName
	}
	if patch.Description != nil {
		role.Description = *patch.Description
	}
	if patch.Level != nil {
		if *patch.Level < 0 {
			return nil, &models.ValidationError{Field: "level", Message: "level cannot be negative"}
		}
		role.Level = *patch.Level
	}
	if patch.Permissions != nil {
		role.Permissions = dedupe(patch.Permissions)
	}
	if patch.Parent != nil {
		if *patch.Parent != "" {
			if err := s.checkParentChain(ctx, role.Name, *patch.Parent); err != nil {
				return nil, err
			}
		}
		role.Parent = *patch.Parent
	}

	if err := s.roles.UpdateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// RolePatch carries the updatable role fields; nil means "leave as is"
type RolePatch struct {
	DisplayName *string
	Description *string
	Level       *int
	Permissions []string
	Parent      *string
}

// Delete removes a custom role. System roles are non-deletable, and a
// role with active assignments is blocked by a ConflictError.
func (s *RoleService) Delete(ctx context.Context, name string) error {
	role, err := s.Get(ctx, name)
	if err != nil {
		return err
	}

	if role.IsSystem {
		return &models.ConflictError{Message: "system role " + name + " cannot be deleted"}
	}

	active, err := s.assignments.CountActiveAssignmentsForRole(ctx, name)
	if err != nil {
		return err
	}
	if active > 0 {
		return &models.ConflictError{Message: "role " + name + " still has active assignments"}
	}

	if err := s.roles.DeleteRole(ctx, name); err != nil {
		return err
	}

	slog.Info("[RBAC] Role deleted", "role", name)
	return nil
}

// EffectivePermissions walks the parent chain collecting permission
// names: the role's own permissions plus all ancestors', de-duplicated,
// own permissions first. A revisited role is a CycleError.
func (s *RoleService) EffectivePermissions(ctx context.Context, role *models.Role) ([]string, error) {
	var names []string
	seen := make(map[string]struct{})
	visited := make(map[string]struct{})

	current := role
	for depth := 0; ; depth++ {
		if _, ok := visited[current.Name]; ok {
			return nil, &models.CycleError{RoleName: current.Name}
		}
		if depth > models.MaxRoleDepth {
			return nil, &models.CycleError{RoleName: current.Name}
		}
		visited[current.Name] = struct{}{}

		for _, p := range current.Permissions {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				names = append(names, p)
			}
		}

		if current.Parent == "" {
			return names, nil
		}

		parent, err := s.roles.GetRole(ctx, current.Parent)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			// Dangling parent pointer: inherit nothing further.
			slog.Warn("[RBAC] Role references missing parent", "role", current.Name, "parent", current.Parent)
			return names, nil
		}
		current = parent
	}
}

// Hierarchy returns every role's position in the inheritance tree
func (s *RoleService) Hierarchy(ctx context.Context) (map[string]models.RoleHierarchyNode, error) {
	roles, err := s.roles.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]models.RoleHierarchyNode, len(roles))
	for _, role := range roles {
		nodes[role.Name] = models.RoleHierarchyNode{
			Level:    role.Level,
			Parent:   role.Parent,
			Children: []string{},
		}
	}
	for _, role := range roles {
		if role.Parent == "" {
			continue
		}
		if node, ok := nodes[role.Parent]; ok {
			node.Children = append(node.Children, role.Name)
			nodes[role.Parent] = node
		}
	}
	return nodes, nil
}

// checkParentChain verifies that assigning parentName as roleName's
// parent cannot create a path back to roleName.
func (s *RoleService) checkParentChain(ctx context.Context, roleName, parentName string) error {
	current := parentName
	for depth := 0; current != ""; depth++ {
		if current == roleName {
			return &models.CycleError{RoleName: roleName}
		}
		if depth > models.MaxRoleDepth {
			return &models.CycleError{RoleName: current}
		}

		parent, err := s.roles.GetRole(ctx, current)
		if err != nil {
			return err
		}
		if parent == nil {
			return &models.NotFoundError{Kind: "role", ID: current}
		}
		current = parent.Parent
	}
	return nil
}

func (s *RoleService) validateRole(ctx context.Context, role *models.Role) error {
	if role.Name == "" {
		return &models.ValidationError{Field: "name", Message: "role name cannot be empty"}
	}
	if role.Level < 0 {
		return &models.ValidationError{Field: "level", Message: "level cannot be negative"}
	}
	if !models.ValidRoleCategory(role.Category) {
		return &models.ValidationError{Field: "category", Message: "category must be one of system, coordinator, staff, custom"}
	}
	role.Permissions = dedupe(role.Permissions)
	return nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
