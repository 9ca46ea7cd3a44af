package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sahay/internal/rbac/models"
)

func TestPermissionDefine(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	perms := NewPermissionService(store)

	valid := models.Permission{
		Name: "beneficiaries.read.regional", Module: "beneficiaries",
		Resource: "records", Action: "read", Scope: models.ScopeRegional,
	}

	t.Run("valid permission", func(t *testing.T) {
		p := valid
		require.NoError(t, perms.Define(ctx, &p))
	})

	t.Run("duplicate name", func(t *testing.T) {
		p := valid
		err := perms.Define(ctx, &p)
		var validation *models.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	tests := []struct {
		name   string
		mutate func(*models.Permission)
	}{
		{"empty name", func(p *models.Permission) { p.Name = "" }},
		{"name without dots", func(p *models.Permission) { p.Name = "flatname" }},
		{"empty module", func(p *models.Permission) { p.Module = "" }},
		{"empty resource", func(p *models.Permission) { p.Resource = "" }},
		{"empty action", func(p *models.Permission) { p.Action = "" }},
		{"bad scope", func(p *models.Permission) { p.Scope = "planetary" }},
		{"inverted hours", func(p *models.Permission) {
			p.Conditions = &models.PermissionConditions{AllowedHours: &models.TimeWindow{Start: 17, End: 9}}
		}},
		{"hours out of range", func(p *models.Permission) {
			p.Conditions = &models.PermissionConditions{AllowedHours: &models.TimeWindow{Start: 0, End: 25}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			p.Name = "users.read.all" // avoid the duplicate check
			tt.mutate(&p)
			err := perms.Define(ctx, &p)
			var validation *models.ValidationError
			require.ErrorAs(t, err, &validation)
		})
	}
}

func TestPermissionDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	perms := NewPermissionService(store)

	require.NoError(t, perms.Define(ctx, &models.Permission{
		Name: "reports.view.regional", Module: "reports",
		Resource: "reports", Action: "view", Scope: models.ScopeRegional,
	}))
	store.roles["viewer"] = models.Role{
		Name: "viewer", Category: models.RoleCategoryCustom,
		Permissions: []string{"reports.view.regional"},
	}

	t.Run("referenced permission is blocked", func(t *testing.T) {
		err := perms.Delete(ctx, "reports.view.regional", store)
		var conflict *models.ConflictError
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("unknown permission", func(t *testing.T) {
		err := perms.Delete(ctx, "no.such.permission", store)
		var notFound *models.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("unreferenced permission deletes", func(t *testing.T) {
		delete(store.roles, "viewer")
		require.NoError(t, perms.Delete(ctx, "reports.view.regional", store))
		got, err := store.GetPermission(ctx, "reports.view.regional")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestValidateConditions(t *testing.T) {
	window := &models.PermissionConditions{
		AllowedHours: &models.TimeWindow{Start: 9, End: 17},
	}
	weekdaysOnly := &models.PermissionConditions{
		AllowedDays: []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
	}

	tests := []struct {
		name       string
		conditions *models.PermissionConditions
		at         time.Time
		want       bool
	}{
		{"no conditions", nil, tuesday(3), true},
		{"inside hours", window, tuesday(9), true},
		{"last valid hour", window, tuesday(16), true},
		{"end hour excluded", window, tuesday(17), false},
		{"before window", window, tuesday(8), false},
		{"day match is case insensitive", weekdaysOnly, tuesday(12), true},
		{"disallowed day", weekdaysOnly, time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC), false}, // Saturday
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perm := &models.Permission{Conditions: tt.conditions}
			assert.Equal(t, tt.want, ValidateConditions(perm, tt.at))
		})
	}
}

func TestDependenciesSatisfied(t *testing.T) {
	held := map[string]struct{}{
		"beneficiaries.read.all":  {},
		"beneficiaries.write.all": {},
	}

	t.Run("no dependencies", func(t *testing.T) {
		assert.True(t, DependenciesSatisfied(&models.Permission{}, held))
	})

	t.Run("all requirements held", func(t *testing.T) {
		perm := &models.Permission{Dependencies: &models.PermissionDependencies{
			Requires: []string{"beneficiaries.read.all", "beneficiaries.write.all"},
		}}
		assert.True(t, DependenciesSatisfied(perm, held))
	})

	t.Run("one requirement missing", func(t *testing.T) {
		perm := &models.Permission{Dependencies: &models.PermissionDependencies{
			Requires: []string{"beneficiaries.read.all", "users.read.all"},
		}}
		assert.False(t, DependenciesSatisfied(perm, held))
	})
}

func TestPermissionListByModule(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	perms := NewPermissionService(store)

	for _, p := range []models.Permission{
		{Name: "beneficiaries.read.own", Module: "beneficiaries", Resource: "records", Action: "read", Scope: models.ScopeOwn},
		{Name: "beneficiaries.read.all", Module: "beneficiaries", Resource: "records", Action: "read", Scope: models.ScopeAll},
		{Name: "users.read.all", Module: "users", Resource: "profiles", Action: "read", Scope: models.ScopeAll},
	} {
		perm := p
		require.NoError(t, perms.Define(ctx, &perm))
	}

	all, err := perms.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := perms.GetByModule(ctx, "beneficiaries")
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	for _, p := range scoped {
		assert.Equal(t, "beneficiaries", p.Module)
	}
}
