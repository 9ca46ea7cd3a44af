package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sahay/internal/rbac/models"
)

// tuesday returns a fixed Tuesday at the given hour
func tuesday(hour int) time.Time {
	return time.Date(2026, 3, 3, hour, 0, 0, 0, time.UTC)
}

func seedPermission(t *testing.T, store *memStore, perm models.Permission) {
	t.Helper()
	created, err := store.UpsertPermission(context.Background(), &perm)
	require.NoError(t, err)
	require.True(t, created)
}

func seedRole(t *testing.T, store *memStore, role models.Role) {
	t.Helper()
	created, err := store.UpsertRole(context.Background(), &role)
	require.NoError(t, err)
	require.True(t, created)
}

func TestHasPermissionFailClosed(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	seedPermission(t, store, models.Permission{
		Name: "beneficiaries.read.own", Module: "beneficiaries",
		Resource: "beneficiaries", Action: "read", Scope: models.ScopeOwn,
	})
	seedRole(t, store, models.Role{
		Name: "field_staff", Level: 10, Category: models.RoleCategoryStaff,
		Permissions: []string{"beneficiaries.read.own"},
	})
	_, err := service.AssignRole(ctx, "user-1", "field_staff", "admin", AssignmentMeta{})
	require.NoError(t, err)

	t.Run("held permission is granted", func(t *testing.T) {
		granted, err := service.Resolver().HasPermission(ctx, "user-1", "beneficiaries.read.own", nil)
		require.NoError(t, err)
		assert.True(t, granted)
	})

	t.Run("permission the user does not hold is denied", func(t *testing.T) {
		granted, err := service.Resolver().HasPermission(ctx, "user-1", "beneficiaries.delete.all", nil)
		require.NoError(t, err)
		assert.False(t, granted)
	})

	t.Run("unknown user is denied without error", func(t *testing.T) {
		granted, err := service.Resolver().HasPermission(ctx, "nobody", "beneficiaries.read.own", nil)
		require.NoError(t, err)
		assert.False(t, granted)
	})

	t.Run("granted but undefined permission is denied", func(t *testing.T) {
		seedRole(t, store, models.Role{
			Name: "broken_role", Level: 5, Category: models.RoleCategoryCustom,
			Permissions: []string{"ghost.permission.all"},
		})
		_, err := service.AssignRole(ctx, "user-2", "broken_role", "admin", AssignmentMeta{})
		require.NoError(t, err)

		granted, err := service.Resolver().HasPermission(ctx, "user-2", "ghost.permission.all", nil)
		require.NoError(t, err)
		assert.False(t, granted)
	})
}

func TestHasPermissionTimeConditions(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	seedPermission(t, store, models.Permission{
		Name: "reports.export.all", Module: "reports",
		Resource: "reports", Action: "export", Scope: models.ScopeAll,
		Conditions: &models.PermissionConditions{
			AllowedHours: &models.TimeWindow{Start: 9, End: 17},
			AllowedDays:  []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		},
	})
	seedRole(t, store, models.Role{
		Name: "analyst", Level: 30, Category: models.RoleCategoryStaff,
		Permissions: []string{"reports.export.all"},
	})
	_, err := service.AssignRole(ctx, "user-1", "analyst", "admin", AssignmentMeta{})
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		granted bool
	}{
		{"inside window on allowed day", tuesday(10), true},
		{"window start is inclusive", tuesday(9), true},
		{"window end is exclusive", tuesday(17), false},
		{"outside window on allowed day", tuesday(20), false},
		{"inside window on disallowed day", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), false}, // Sunday
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			granted, err := service.Resolver().HasPermission(ctx, "user-1", "reports.export.all", &models.CheckContext{Timestamp: tt.at})
			require.NoError(t, err)
			assert.Equal(t, tt.granted, granted)
		})
	}
}

func TestHasPermissionDependencies(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	seedPermission(t, store, models.Permission{
		Name: "beneficiaries.read.all", Module: "beneficiaries",
		Resource: "beneficiaries", Action: "read", Scope: models.ScopeAll,
	})
	seedPermission(t, store, models.Permission{
		Name: "beneficiaries.delete.all", Module: "beneficiaries",
		Resource: "beneficiaries", Action: "delete", Scope: models.ScopeAll,
		Dependencies: &models.PermissionDependencies{Requires: []string{"beneficiaries.read.all"}},
	})
	seedRole(t, store, models.Role{
		Name: "deleter_only", Level: 10, Category: models.RoleCategoryCustom,
		Permissions: []string{"beneficiaries.delete.all"},
	})
	seedRole(t, store, models.Role{
		Name: "full_access", Level: 20, Category: models.RoleCategoryCustom,
		Permissions: []string{"beneficiaries.read.all", "beneficiaries.delete.all"},
	})

	_, err := service.AssignRole(ctx, "partial", "deleter_only", "admin", AssignmentMeta{})
	require.NoError(t, err)
	_, err = service.AssignRole(ctx, "complete", "full_access", "admin", AssignmentMeta{})
	require.NoError(t, err)

	granted, err := service.Resolver().HasPermission(ctx, "partial", "beneficiaries.delete.all", nil)
	require.NoError(t, err)
	assert.False(t, granted, "dependency not held, must deny")

	granted, err = service.Resolver().HasPermission(ctx, "complete", "beneficiaries.delete.all", nil)
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestHasPermissionScopes(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	locations := &memLocations{parents: map[string]string{
		"unit-7":  "area-3",
		"area-3":  "district-1",
		"unit-9":  "area-4",
		"area-4":  "district-2",
	}}
	directory := &memDirectory{scopes: map[string]*models.AdminScope{
		"area-admin":  {Level: models.ScopeLevelArea, AreaID: "area-3", DistrictID: "district-1"},
		"state-admin": {Level: models.ScopeLevelState},
	}}
	service := newTestService(store, locations, directory)

	seedPermission(t, store, models.Permission{
		Name: "beneficiaries.read.own", Module: "beneficiaries",
		Resource: "beneficiaries", Action: "read", Scope: models.ScopeOwn,
	})
	seedPermission(t, store, models.Permission{
		Name: "beneficiaries.read.regional", Module: "beneficiaries",
		Resource: "beneficiaries", Action: "read", Scope: models.ScopeRegional,
	})
	seedRole(t, store, models.Role{
		Name: "regional_reader", Level: 40, Category: models.RoleCategoryCoordinator,
		Permissions: []string{"beneficiaries.read.regional"},
	})
	seedRole(t, store, models.Role{
		Name: "own_reader", Level: 10, Category: models.RoleCategoryStaff,
		Permissions: []string{"beneficiaries.read.own"},
	})

	_, err := service.AssignRole(ctx, "area-admin", "regional_reader", "admin", AssignmentMeta{})
	require.NoError(t, err)
	_, err = service.AssignRole(ctx, "state-admin", "regional_reader", "admin", AssignmentMeta{})
	require.NoError(t, err)
	_, err = service.AssignRole(ctx, "plain-user", "own_reader", "admin", AssignmentMeta{})
	require.NoError(t, err)

	t.Run("own scope matches owner", func(t *testing.T) {
		granted, err := service.Resolver().HasPermission(ctx, "plain-user", "beneficiaries.read.own",
			&models.CheckContext{RecordOwnerID: "plain-user"})
		require.NoError(t, err)
		assert.True(t, granted)
	})

	t.Run("own scope denies other owner", func(t *testing.T) {
		granted, err := service.Resolver().HasPermission(ctx, "plain-user", "beneficiaries.read.own",
			&models.CheckContext{RecordOwnerID: "someone-else"})
		require.NoError(t, err)
		assert.False(t, granted)
	})

	t.Run("regional scope covers locations inside admin area", func(t *testing.T) {
		granted, err := service.Resolver().HasPermission(ctx, "area-admin", "beneficiaries.read.regional",
			&models.CheckContext{RecordLocationID: "unit-7"})
		require.NoError(t, err)
		assert.True(t, granted)
	})

	t.Run("regional scope denies locations outside admin area", func(t *testing.T) {
		granted, err := service.Resolver().HasPermission(ctx, "area-admin", "beneficiaries.read.regional",
			&models.CheckContext{RecordLocationID: "unit-9"})
		require.NoError(t, err)
		assert.False(t, granted)
	})

	t.Run("state level admin passes any location", func(t *testing.T) {
		granted, err := service.Resolver().HasPermission(ctx, "state-admin", "beneficiaries.read.regional",
			&models.CheckContext{RecordLocationID: "unit-9"})
		require.NoError(t, err)
		assert.True(t, granted)
	})

	t.Run("regional check without admin scope is denied", func(t *testing.T) {
		_, err := service.AssignRole(ctx, "scopeless", "regional_reader", "admin", AssignmentMeta{})
		require.NoError(t, err)
		granted, err := service.Resolver().HasPermission(ctx, "scopeless", "beneficiaries.read.regional",
			&models.CheckContext{RecordLocationID: "unit-7"})
		require.NoError(t, err)
		assert.False(t, granted)
	})
}

func TestHasPermissionWidestScopeWins(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	seedPermission(t, store, models.Permission{
		Name: "beneficiaries.read.own", Module: "beneficiaries",
		Resource: "beneficiaries", Action: "read", Scope: models.ScopeOwn,
	})
	seedPermission(t, store, models.Permission{
		Name: "beneficiaries.read.all", Module: "beneficiaries",
		Resource: "beneficiaries", Action: "read", Scope: models.ScopeAll,
	})
	seedRole(t, store, models.Role{
		Name: "own_reader", Level: 10, Category: models.RoleCategoryStaff,
		Permissions: []string{"beneficiaries.read.own"},
	})
	seedRole(t, store, models.Role{
		Name: "global_reader", Level: 90, Category: models.RoleCategoryCoordinator,
		Permissions: []string{"beneficiaries.read.all"},
	})

	_, err := service.AssignRole(ctx, "user-1", "own_reader", "admin", AssignmentMeta{})
	require.NoError(t, err)
	_, err = service.AssignRole(ctx, "user-1", "global_reader", "admin", AssignmentMeta{})
	require.NoError(t, err)

	// Checking the narrow permission against a foreign record: the user
	// also holds the same action at scope all, so the check widens.
	granted, err := service.Resolver().HasPermission(ctx, "user-1", "beneficiaries.read.own",
		&models.CheckContext{RecordOwnerID: "someone-else"})
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestHasPermissionInheritedThroughParentChain(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	seedPermission(t, store, models.Permission{
		Name: "beneficiaries.read.own", Module: "beneficiaries",
		Resource: "beneficiaries", Action: "read", Scope: models.ScopeOwn,
	})
	seedPermission(t, store, models.Permission{
		Name: "users.read.regional", Module: "users",
		Resource: "users", Action: "read", Scope: models.ScopeRegional,
	})
	seedRole(t, store, models.Role{
		Name: "unit_staff", Level: 20, Category: models.RoleCategoryStaff,
		Permissions: []string{"beneficiaries.read.own"},
	})
	seedRole(t, store, models.Role{
		Name: "area_coordinator", Level: 40, Category: models.RoleCategoryCoordinator,
		Permissions: []string{"users.read.regional"}, Parent: "unit_staff",
	})

	_, err := service.AssignRole(ctx, "coord", "area_coordinator", "admin", AssignmentMeta{})
	require.NoError(t, err)

	granted, err := service.Resolver().HasPermission(ctx, "coord", "beneficiaries.read.own", nil)
	require.NoError(t, err)
	assert.True(t, granted, "parent role permissions are inherited")
}

func TestHasPermissionExpiredAssignment(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	seedPermission(t, store, models.Permission{
		Name: "beneficiaries.read.own", Module: "beneficiaries",
		Resource: "beneficiaries", Action: "read", Scope: models.ScopeOwn,
	})
	seedRole(t, store, models.Role{
		Name: "temp_role", Level: 10, Category: models.RoleCategoryCustom,
		Permissions: []string{"beneficiaries.read.own"},
	})

	expiry := time.Now().Add(time.Hour)
	_, err := service.AssignRole(ctx, "user-1", "temp_role", "admin", AssignmentMeta{ExpiresAt: &expiry})
	require.NoError(t, err)

	granted, err := service.Resolver().HasPermission(ctx, "user-1", "beneficiaries.read.own", nil)
	require.NoError(t, err)
	assert.True(t, granted, "assignment still inside validity")

	afterExpiry := time.Now().Add(2 * time.Hour)
	granted, err = service.Resolver().HasPermission(ctx, "user-1", "beneficiaries.read.own",
		&models.CheckContext{Timestamp: afterExpiry})
	require.NoError(t, err)
	assert.False(t, granted, "expired assignment grants nothing")
}

func TestUserPermissionsUnion(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	seedPermission(t, store, models.Permission{
		Name: "beneficiaries.read.own", Module: "beneficiaries",
		Resource: "beneficiaries", Action: "read", Scope: models.ScopeOwn,
	})
	seedPermission(t, store, models.Permission{
		Name: "users.read.regional", Module: "users",
		Resource: "users", Action: "read", Scope: models.ScopeRegional,
	})
	seedRole(t, store, models.Role{
		Name: "role_a", Level: 10, Category: models.RoleCategoryCustom,
		Permissions: []string{"beneficiaries.read.own"},
	})
	seedRole(t, store, models.Role{
		Name: "role_b", Level: 20, Category: models.RoleCategoryCustom,
		Permissions: []string{"users.read.regional", "beneficiaries.read.own"},
	})

	_, err := service.AssignRole(ctx, "user-1", "role_a", "admin", AssignmentMeta{})
	require.NoError(t, err)
	_, err = service.AssignRole(ctx, "user-1", "role_b", "admin", AssignmentMeta{})
	require.NoError(t, err)

	perms, err := service.Resolver().UserPermissions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, perms, 2, "duplicates collapse in the union")

	none, err := service.Resolver().UserPermissions(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
