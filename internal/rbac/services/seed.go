package services

import (
	"go-sahay/internal/rbac/models"
)

// systemPermissions is the seed catalog created by InitializeRBAC.
// Names follow module.action.scope.
func systemPermissions() []models.Permission {
	window := func(start, end int, days ...string) *models.PermissionConditions {
		return &models.PermissionConditions{
			AllowedHours: &models.TimeWindow{Start: start, End: end},
			AllowedDays:  days,
		}
	}
	requires := func(names ...string) *models.PermissionDependencies {
		return &models.PermissionDependencies{Requires: names}
	}

	return []models.Permission{
		// Beneficiary records
		{Name: "beneficiaries.read.own", Module: "beneficiaries", Category: "Beneficiaries", Resource: "records", Action: "read", Scope: models.ScopeOwn, Description: "View beneficiaries registered by the user"},
		{Name: "beneficiaries.read.regional", Module: "beneficiaries", Category: "Beneficiaries", Resource: "records", Action: "read", Scope: models.ScopeRegional, Description: "View beneficiaries inside the user's admin scope"},
		{Name: "beneficiaries.read.all", Module: "beneficiaries", Category: "Beneficiaries", Resource: "records", Action: "read", Scope: models.ScopeAll, Description: "View all beneficiaries"},
		{Name: "beneficiaries.write.regional", Module: "beneficiaries", Category: "Beneficiaries", Resource: "records", Action: "write", Scope: models.ScopeRegional, Description: "Register and update beneficiaries inside the user's admin scope", Dependencies: requires("beneficiaries.read.regional")},
		{Name: "beneficiaries.write.all", Module: "beneficiaries", Category: "Beneficiaries", Resource: "records", Action: "write", Scope: models.ScopeAll, Description: "Register and update any beneficiary", Dependencies: requires("beneficiaries.read.all")},
		{Name: "beneficiaries.delete.all", Module: "beneficiaries", Category: "Beneficiaries", Resource: "records", Action: "delete", Scope: models.ScopeAll, Description: "Delete beneficiary records", Dependencies: requires("beneficiaries.write.all")},

		// User directory
		{Name: "users.read.regional", Module: "users", Category: "Users", Resource: "profiles", Action: "read", Scope: models.ScopeRegional, Description: "View user profiles inside the user's admin scope"},
		{Name: "users.read.all", Module: "users", Category: "Users", Resource: "profiles", Action: "read", Scope: models.ScopeAll, Description: "View all user profiles"},
		{Name: "users.write.all", Module: "users", Category: "Users", Resource: "profiles", Action: "write", Scope: models.ScopeAll, Description: "Create and update user profiles", Dependencies: requires("users.read.all")},

		// Reports; data exports run inside office hours only
		{Name: "reports.view.regional", Module: "reports", Category: "Reports", Resource: "reports", Action: "view", Scope: models.ScopeRegional, Description: "View regional reports"},
		{Name: "reports.export.all", Module: "reports", Category: "Reports", Resource: "reports", Action: "export", Scope: models.ScopeAll, Description: "Export reports during office hours", Conditions: window(9, 17, "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"), Dependencies: requires("reports.view.regional")},

		// Location hierarchy administration
		{Name: "locations.manage.all", Module: "locations", Category: "Administration", Resource: "hierarchy", Action: "manage", Scope: models.ScopeAll, Description: "Create and update location hierarchy nodes"},

		// RBAC administration
		{Name: "rbac.roles.manage", Module: "rbac", Category: "Administration", Resource: "roles", Action: "manage", Scope: models.ScopeAll, Description: "Create, update and delete roles"},
		{Name: "rbac.assignments.manage", Module: "rbac", Category: "Administration", Resource: "assignments", Action: "manage", Scope: models.ScopeAll, Description: "Assign and remove user roles"},
	}
}

// systemRoles is the seed role set. Inheritance runs staff -> area ->
// district coordinator; the state and super admin roles stand alone
// with wide scopes.
func systemRoles() []models.Role {
	return []models.Role{
		{
			Name:        "super_admin",
			DisplayName: "Super Administrator",
			Description: "Unrestricted access to every module",
			Level:       100,
			Category:    models.RoleCategorySystem,
			IsSystem:    true,
			Permissions: []string{
				"beneficiaries.read.all", "beneficiaries.write.all", "beneficiaries.delete.all",
				"users.read.all", "users.write.all",
				"reports.view.regional", "reports.export.all",
				"locations.manage.all",
				"rbac.roles.manage", "rbac.assignments.manage",
			},
		},
		{
			Name:        "state_admin",
			DisplayName: "State Administrator",
			Description: "State-wide administration without role management",
			Level:       80,
			Category:    models.RoleCategorySystem,
			IsSystem:    true,
			Permissions: []string{
				"beneficiaries.read.all", "beneficiaries.write.all",
				"users.read.all",
				"reports.view.regional", "reports.export.all",
				"locations.manage.all",
				"rbac.assignments.manage",
			},
		},
		{
			Name:        "district_coordinator",
			DisplayName: "District Coordinator",
			Description: "Coordinates areas and units inside one district",
			Level:       60,
			Category:    models.RoleCategoryCoordinator,
			IsSystem:    true,
			Parent:      "area_coordinator",
			Permissions: []string{
				"users.read.regional",
				"reports.view.regional",
			},
		},
		{
			Name:        "area_coordinator",
			DisplayName: "Area Coordinator",
			Description: "Coordinates units inside one area",
			Level:       40,
			Category:    models.RoleCategoryCoordinator,
			IsSystem:    true,
			Parent:      "unit_staff",
			Permissions: []string{
				"beneficiaries.write.regional",
			},
		},
		{
			Name:        "unit_staff",
			DisplayName: "Unit Staff",
			Description: "Field staff registering beneficiaries in their unit",
			Level:       20,
			Category:    models.RoleCategoryStaff,
			IsSystem:    true,
			Permissions: []string{
				"beneficiaries.read.own",
				"beneficiaries.read.regional",
			},
		},
	}
}
