package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sahay/internal/rbac/models"
)

func TestAssignRole(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	seedRole(t, store, models.Role{
		Name: "unit_staff", Level: 20, Category: models.RoleCategoryStaff,
	})

	t.Run("assigns and activates", func(t *testing.T) {
		assignment, err := service.AssignRole(ctx, "user-1", "unit_staff", "admin", AssignmentMeta{Reason: "onboarding"})
		require.NoError(t, err)
		assert.True(t, assignment.IsActive)
		assert.Equal(t, "admin", assignment.AssignedBy)
		assert.Equal(t, "onboarding", assignment.Reason)
		assert.False(t, assignment.AssignedAt.IsZero())
	})

	t.Run("duplicate active assignment is rejected", func(t *testing.T) {
		_, err := service.AssignRole(ctx, "user-1", "unit_staff", "admin", AssignmentMeta{})
		var dup *models.DuplicateAssignmentError
		require.ErrorAs(t, err, &dup)
		assert.Contains(t, err.Error(), "already has this role")
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		_, err := service.AssignRole(ctx, "user-1", "no_such_role", "admin", AssignmentMeta{})
		var notFound *models.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("empty user id is rejected", func(t *testing.T) {
		_, err := service.AssignRole(ctx, "", "unit_staff", "admin", AssignmentMeta{})
		var validation *models.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("reassignment after removal succeeds", func(t *testing.T) {
		require.NoError(t, service.RemoveRole(ctx, "user-1", "unit_staff", "admin", "transfer"))
		_, err := service.AssignRole(ctx, "user-1", "unit_staff", "admin", AssignmentMeta{})
		require.NoError(t, err)
	})
}

func TestRemoveRole(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	seedRole(t, store, models.Role{
		Name: "unit_staff", Level: 20, Category: models.RoleCategoryStaff,
	})
	_, err := service.AssignRole(ctx, "user-1", "unit_staff", "admin", AssignmentMeta{})
	require.NoError(t, err)

	require.NoError(t, service.RemoveRole(ctx, "user-1", "unit_staff", "supervisor", "transfer"))

	// Soft delete: the record survives with the removal audit fields set.
	records, err := store.ListAssignments(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].IsActive)
	assert.Equal(t, "supervisor", records[0].RemovedBy)
	assert.Equal(t, "transfer", records[0].RemovalReason)
	assert.NotNil(t, records[0].RemovedAt)

	t.Run("removing again reports not found", func(t *testing.T) {
		err := service.RemoveRole(ctx, "user-1", "unit_staff", "supervisor", "again")
		var notFound *models.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestCleanupExpired(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	seedRole(t, store, models.Role{Name: "role_a", Level: 10, Category: models.RoleCategoryCustom})
	seedRole(t, store, models.Role{Name: "role_b", Level: 20, Category: models.RoleCategoryCustom})
	seedRole(t, store, models.Role{Name: "role_c", Level: 30, Category: models.RoleCategoryCustom})

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	_, err := service.AssignRole(ctx, "user-1", "role_a", "admin", AssignmentMeta{ExpiresAt: &past})
	require.NoError(t, err)
	_, err = service.AssignRole(ctx, "user-1", "role_b", "admin", AssignmentMeta{ExpiresAt: &future})
	require.NoError(t, err)
	_, err = service.AssignRole(ctx, "user-1", "role_c", "admin", AssignmentMeta{})
	require.NoError(t, err)

	count, err := service.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "only the expired assignment is swept")

	t.Run("second run deactivates nothing", func(t *testing.T) {
		count, err := service.CleanupExpired(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("swept assignment carries the expiry reason", func(t *testing.T) {
		records, err := store.ListAssignments(ctx, "user-1")
		require.NoError(t, err)
		for _, record := range records {
			if record.RoleName == "role_a" {
				assert.False(t, record.IsActive)
				assert.Equal(t, "expired", record.RemovalReason)
				return
			}
		}
		t.Fatal("expired assignment record missing")
	})
}

func TestUserRoles(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	seedRole(t, store, models.Role{Name: "role_a", Level: 10, Category: models.RoleCategoryCustom})
	seedRole(t, store, models.Role{Name: "role_b", Level: 20, Category: models.RoleCategoryCustom})

	past := time.Now().Add(-time.Hour)
	_, err := service.AssignRole(ctx, "user-1", "role_a", "admin", AssignmentMeta{})
	require.NoError(t, err)
	_, err = service.AssignRole(ctx, "user-1", "role_b", "admin", AssignmentMeta{ExpiresAt: &past})
	require.NoError(t, err)

	assignments, roles, err := service.UserRoles(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, assignments, 1, "expired assignments are excluded")
	require.Len(t, roles, 1)
	assert.Equal(t, "role_a", roles[0].Name)
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	seedPermission(t, store, models.Permission{
		Name: "beneficiaries.read.own", Module: "beneficiaries",
		Resource: "beneficiaries", Action: "read", Scope: models.ScopeOwn,
	})
	seedRole(t, store, models.Role{Name: "role_a", Level: 10, Category: models.RoleCategoryCustom})

	_, err := service.AssignRole(ctx, "user-1", "role_a", "admin", AssignmentMeta{})
	require.NoError(t, err)
	_, err = service.AssignRole(ctx, "user-2", "role_a", "admin", AssignmentMeta{})
	require.NoError(t, err)
	require.NoError(t, service.RemoveRole(ctx, "user-2", "role_a", "admin", ""))

	stats, err := service.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Roles)
	assert.Equal(t, int64(1), stats.Permissions)
	assert.Equal(t, int64(1), stats.ActiveAssignments, "deactivated assignments are not counted")
}

func TestInitializeRBAC(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := newTestService(store, nil, nil)

	require.NoError(t, service.InitializeRBAC(ctx))

	roles, err := store.ListRoles(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, roles)
	for _, role := range roles {
		assert.True(t, role.IsSystem, "seeded roles are system roles")
	}

	role, err := store.GetRole(ctx, "super_admin")
	require.NoError(t, err)
	require.NotNil(t, role)

	perm, err := store.GetPermission(ctx, "rbac.roles.manage")
	require.NoError(t, err)
	require.NotNil(t, perm)
	assert.True(t, perm.IsSystem)

	t.Run("seed is idempotent", func(t *testing.T) {
		before, err := store.CountRoles(ctx)
		require.NoError(t, err)

		require.NoError(t, service.InitializeRBAC(ctx))

		after, err := store.CountRoles(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("seeded permissions pass their own validation", func(t *testing.T) {
		perms, err := store.ListPermissions(ctx, "")
		require.NoError(t, err)
		for _, p := range perms {
			assert.NoError(t, validatePermission(&p), p.Name)
		}
	})

	t.Run("seeded parent chains resolve", func(t *testing.T) {
		for _, r := range roles {
			names, err := service.Roles().EffectivePermissions(ctx, &r)
			require.NoError(t, err, r.Name)
			_ = names
		}
	})
}
