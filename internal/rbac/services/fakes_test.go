package services

import (
	"context"
	"sort"
	"time"

	"go-sahay/internal/rbac/models"
)

// memStore is an in-memory implementation of the three store
// interfaces, mirroring the repository's behavior including the
// active-pair uniqueness constraint.
type memStore struct {
	perms       map[string]models.Permission
	roles       map[string]models.Role
	assignments []*models.UserRoleAssignment
}

func newMemStore() *memStore {
	return &memStore{
		perms: make(map[string]models.Permission),
		roles: make(map[string]models.Role),
	}
}

func (m *memStore) InsertPermission(_ context.Context, perm *models.Permission) error {
	if _, ok := m.perms[perm.Name]; ok {
		return &models.ValidationError{Field: "name", Message: "permission already exists: " + perm.Name}
	}
	perm.CreatedAt = time.Now()
	perm.UpdatedAt = perm.CreatedAt
	m.perms[perm.Name] = *perm
	return nil
}

func (m *memStore) UpsertPermission(_ context.Context, perm *models.Permission) (bool, error) {
	if _, ok := m.perms[perm.Name]; ok {
		return false, nil
	}
	m.perms[perm.Name] = *perm
	return true, nil
}

func (m *memStore) GetPermission(_ context.Context, name string) (*models.Permission, error) {
	perm, ok := m.perms[name]
	if !ok {
		return nil, nil
	}
	return &perm, nil
}

func (m *memStore) GetPermissionsByNames(_ context.Context, names []string) ([]models.Permission, error) {
	var out []models.Permission
	for _, name := range names {
		if perm, ok := m.perms[name]; ok {
			out = append(out, perm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) ListPermissions(_ context.Context, module string) ([]models.Permission, error) {
	var out []models.Permission
	for _, perm := range m.perms {
		if module == "" || perm.Module == module {
			out = append(out, perm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) DeletePermission(_ context.Context, name string) error {
	delete(m.perms, name)
	return nil
}

func (m *memStore) CountPermissions(_ context.Context) (int64, error) {
	return int64(len(m.perms)), nil
}

func (m *memStore) InsertRole(_ context.Context, role *models.Role) error {
	if _, ok := m.roles[role.Name]; ok {
		return &models.ValidationError{Field: "name", Message: "role already exists: " + role.Name}
	}
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt
	m.roles[role.Name] = *role
	return nil
}

func (m *memStore) UpsertRole(_ context.Context, role *models.Role) (bool, error) {
	if _, ok := m.roles[role.Name]; ok {
		return false, nil
	}
	m.roles[role.Name] = *role
	return true, nil
}

func (m *memStore) GetRole(_ context.Context, name string) (*models.Role, error) {
	role, ok := m.roles[name]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

func (m *memStore) ListRoles(_ context.Context) ([]models.Role, error) {
	var out []models.Role
	for _, role := range m.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level > out[j].Level })
	return out, nil
}

func (m *memStore) UpdateRole(_ context.Context, role *models.Role) error {
	if _, ok := m.roles[role.Name]; !ok {
		return &models.NotFoundError{Kind: "role", ID: role.Name}
	}
	role.UpdatedAt = time.Now()
	m.roles[role.Name] = *role
	return nil
}

func (m *memStore) DeleteRole(_ context.Context, name string) error {
	delete(m.roles, name)
	return nil
}

func (m *memStore) CountRoles(_ context.Context) (int64, error) {
	return int64(len(m.roles)), nil
}

func (m *memStore) InsertAssignment(_ context.Context, assignment *models.UserRoleAssignment) error {
	for _, existing := range m.assignments {
		if existing.IsActive && existing.UserID == assignment.UserID && existing.RoleName == assignment.RoleName {
			return &models.DuplicateAssignmentError{UserID: assignment.UserID, RoleName: assignment.RoleName}
		}
	}
	assignment.AssignedAt = time.Now()
	assignment.UpdatedAt = assignment.AssignedAt
	assignment.IsActive = true
	m.assignments = append(m.assignments, assignment)
	return nil
}

func (m *memStore) FindActiveAssignment(_ context.Context, userID, roleName string) (*models.UserRoleAssignment, error) {
	for _, assignment := range m.assignments {
		if assignment.IsActive && assignment.UserID == userID && assignment.RoleName == roleName {
			copied := *assignment
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListActiveAssignments(_ context.Context, userID string, now time.Time) ([]models.UserRoleAssignment, error) {
	var out []models.UserRoleAssignment
	for _, assignment := range m.assignments {
		if !assignment.IsActive || assignment.UserID != userID {
			continue
		}
		if assignment.ExpiresAt != nil && !assignment.ExpiresAt.After(now) {
			continue
		}
		out = append(out, *assignment)
	}
	return out, nil
}

func (m *memStore) ListAssignments(_ context.Context, userID string) ([]models.UserRoleAssignment, error) {
	var out []models.UserRoleAssignment
	for _, assignment := range m.assignments {
		if assignment.UserID == userID {
			out = append(out, *assignment)
		}
	}
	return out, nil
}

func (m *memStore) DeactivateAssignment(_ context.Context, userID, roleName, removedBy, reason string, at time.Time) (bool, error) {
	for _, assignment := range m.assignments {
		if assignment.IsActive && assignment.UserID == userID && assignment.RoleName == roleName {
			assignment.IsActive = false
			assignment.RemovedBy = removedBy
			assignment.RemovedAt = &at
			assignment.RemovalReason = reason
			assignment.UpdatedAt = at
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, assignment := range m.assignments {
		if !assignment.IsActive || assignment.ExpiresAt == nil || assignment.ExpiresAt.After(now) {
			continue
		}
		assignment.IsActive = false
		assignment.RemovedAt = &now
		assignment.RemovalReason = "expired"
		assignment.UpdatedAt = now
		count++
	}
	return count, nil
}

func (m *memStore) CountActiveAssignments(_ context.Context) (int64, error) {
	var count int64
	for _, assignment := range m.assignments {
		if assignment.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *memStore) CountActiveAssignmentsForRole(_ context.Context, roleName string) (int64, error) {
	var count int64
	for _, assignment := range m.assignments {
		if assignment.IsActive && assignment.RoleName == roleName {
			count++
		}
	}
	return count, nil
}

// memLocations resolves ancestry over a child -> parent edge map
type memLocations struct {
	parents map[string]string
}

func (l *memLocations) IsAncestorOrEqual(_ context.Context, ancestorID, locationID string) (bool, error) {
	current := locationID
	for current != "" {
		if current == ancestorID {
			return true, nil
		}
		current = l.parents[current]
	}
	return false, nil
}

// memDirectory returns canned admin scopes per user
type memDirectory struct {
	scopes map[string]*models.AdminScope
}

func (d *memDirectory) GetAdminScope(_ context.Context, userID string) (*models.AdminScope, error) {
	return d.scopes[userID], nil
}

// newTestService wires a Service over in-memory fakes
func newTestService(store *memStore, locations *memLocations, directory *memDirectory) *Service {
	if locations == nil {
		locations = &memLocations{parents: map[string]string{}}
	}
	if directory == nil {
		directory = &memDirectory{scopes: map[string]*models.AdminScope{}}
	}
	return NewService(store, store, store, locations, directory)
}
