package routes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-playground/validator/v10"

	authMiddleware "go-sahay/internal/auth/middleware"
	authModels "go-sahay/internal/auth/models"
	"go-sahay/internal/rbac/dto"
	"go-sahay/internal/rbac/models"
	"go-sahay/internal/rbac/services"
)

const (
	permManageRoles       = "rbac.roles.manage"
	permManageAssignments = "rbac.assignments.manage"
)

// Module handles RBAC route registration
type Module struct {
	service   *services.Service
	auth      *authMiddleware.AuthMiddleware
	validator *validator.Validate
}

// NewModule creates a new RBAC routes module
func NewModule(service *services.Service, auth *authMiddleware.AuthMiddleware) *Module {
	validate, err := dto.NewValidator()
	if err != nil {
		slog.Error("[RBAC] Failed to build request validator, using defaults", "error", err)
		validate = validator.New()
	}
	return &Module{
		service:   service,
		auth:      auth,
		validator: validate,
	}
}

// mapServiceError translates typed service errors into HTTP errors
func mapServiceError(err error) error {
	var validation *models.ValidationError
	var notFound *models.NotFoundError
	var duplicate *models.DuplicateAssignmentError
	var conflict *models.ConflictError
	var cycle *models.CycleError

	switch {
	case errors.As(err, &validation):
		return huma.Error400BadRequest(validation.Error())
	case errors.As(err, &notFound):
		return huma.Error404NotFound(notFound.Error())
	case errors.As(err, &duplicate):
		return huma.Error409Conflict(duplicate.Error())
	case errors.As(err, &conflict):
		return huma.Error409Conflict(conflict.Error())
	case errors.As(err, &cycle):
		return huma.Error409Conflict(cycle.Error())
	default:
		return huma.Error500InternalServerError("Internal server error", err)
	}
}

func (m *Module) requirePermission(ctx context.Context, authHeader, cookieHeader, permission string) (*authModels.AuthenticatedUser, error) {
	user, err := m.auth.RequireAuth(ctx, authHeader, cookieHeader)
	if err != nil {
		return nil, err
	}
	granted, err := m.service.Resolver().HasPermission(ctx, user.UserID, permission, nil)
	if err != nil {
		return nil, huma.Error500InternalServerError("Permission check failed", err)
	}
	if !granted {
		return nil, huma.Error403Forbidden("Missing permission: " + permission)
	}
	return user, nil
}

// requireSelfOrPermission allows users to read their own access records;
// anything else needs the assignment management permission.
func (m *Module) requireSelfOrPermission(ctx context.Context, authHeader, cookieHeader, targetUserID, permission string) (*authModels.AuthenticatedUser, error) {
	user, err := m.auth.RequireAuth(ctx, authHeader, cookieHeader)
	if err != nil {
		return nil, err
	}
	if user.UserID == targetUserID {
		return user, nil
	}
	granted, err := m.service.Resolver().HasPermission(ctx, user.UserID, permission, nil)
	if err != nil {
		return nil, huma.Error500InternalServerError("Permission check failed", err)
	}
	if !granted {
		return nil, huma.Error403Forbidden("Missing permission: " + permission)
	}
	return user, nil
}

// RegisterUnifiedRoutes registers all RBAC endpoints on the shared API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	// Module status (public)
	huma.Register(api, huma.Operation{
		OperationID: "rbac-get-status",
		Method:      http.MethodGet,
		Path:        basePath + "/status",
		Summary:     "Get RBAC module status",
		Tags:        []string{"Module Status"},
	}, func(ctx context.Context, input *struct{}) (*dto.StatusOutput, error) {
		return &dto.StatusOutput{
			Body: dto.StatusResponse{
				Module: "rbac",
				Status: "healthy",
			},
		}, nil
	})

	m.registerRoleRoutes(api, basePath)
	m.registerPermissionRoutes(api, basePath)
	m.registerAssignmentRoutes(api, basePath)
	m.registerAdminRoutes(api, basePath)
}

func (m *Module) registerRoleRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "rbac-list-roles",
		Method:      http.MethodGet,
		Path:        basePath + "/roles",
		Summary:     "List roles",
		Description: "Returns all defined roles, system and custom",
		Tags:        []string{"RBAC / Roles"},
	}, func(ctx context.Context, input *dto.ListRolesInput) (*dto.RoleListOutput, error) {
		if _, err := m.auth.RequireAuth(ctx, input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		roles, err := m.service.Roles().List(ctx)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.RoleListOutput{Body: dto.RoleListResponse{Roles: roles, Total: len(roles)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rbac-get-role",
		Method:      http.MethodGet,
		Path:        basePath + "/roles/{name}",
		Summary:     "Get role",
		Tags:        []string{"RBAC / Roles"},
	}, func(ctx context.Context, input *dto.GetRoleInput) (*dto.RoleOutput, error) {
		if _, err := m.auth.RequireAuth(ctx, input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		role, err := m.service.Roles().Get(ctx, input.Name)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.RoleOutput{Body: *role}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rbac-create-role",
		Method:      http.MethodPost,
		Path:        basePath + "/roles",
		Summary:     "Create role",
		Description: "Defines a new custom role, optionally inheriting from a parent",
		Tags:        []string{"RBAC / Roles"},
	}, func(ctx context.Context, input *dto.CreateRoleInput) (*dto.RoleOutput, error) {
		if _, err := m.requirePermission(ctx, input.Authorization, input.Cookie, permManageRoles); err != nil {
			return nil, err
		}
		if messages := dto.ValidateStruct(m.validator, input.Body); len(messages) > 0 {
			return nil, huma.Error400BadRequest(strings.Join(messages, "; "))
		}

		role := &models.Role{
			Name:        input.Body.Name,
			DisplayName: input.Body.DisplayName,
			Description: input.Body.Description,
			Level:       input.Body.Level,
			Category:    models.RoleCategory(input.Body.Category),
			Permissions: input.Body.Permissions,
			Parent:      input.Body.Parent,
		}
		if err := m.service.Roles().Define(ctx, role); err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.RoleOutput{Body: *role}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rbac-update-role",
		Method:      http.MethodPut,
		Path:        basePath + "/roles/{name}",
		Summary:     "Update role",
		Tags:        []string{"RBAC / Roles"},
	}, func(ctx context.Context, input *dto.UpdateRoleInput) (*dto.RoleOutput, error) {
		if _, err := m.requirePermission(ctx, input.Authorization, input.Cookie, permManageRoles); err != nil {
			return nil, err
		}
		role, err := m.service.Roles().Update(ctx, input.Name, services.RolePatch{
			DisplayName: input.Body.DisplayName,
			Description: input.Body.Description,
			Level:       input.Body.Level,
			Permissions: input.Body.Permissions,
			Parent:      input.Body.Parent,
		})
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.RoleOutput{Body: *role}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rbac-delete-role",
		Method:      http.MethodDelete,
		Path:        basePath + "/roles/{name}",
		Summary:     "Delete role",
		Description: "Deletes a custom role with no active assignments",
		Tags:        []string{"RBAC / Roles"},
	}, func(ctx context.Context, input *dto.DeleteRoleInput) (*dto.MessageOutput, error) {
		if _, err := m.requirePermission(ctx, input.Authorization, input.Cookie, permManageRoles); err != nil {
			return nil, err
		}
		if err := m.service.Roles().Delete(ctx, input.Name); err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Role deleted"}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rbac-get-role-hierarchy",
		Method:      http.MethodGet,
		Path:        basePath + "/roles/hierarchy",
		Summary:     "Get role hierarchy",
		Description: "Returns every role with its direct and inherited permissions",
		Tags:        []string{"RBAC / Roles"},
	}, func(ctx context.Context, input *dto.RoleHierarchyInput) (*dto.RoleHierarchyOutput, error) {
		if _, err := m.auth.RequireAuth(ctx, input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		tree, err := m.service.Roles().Hierarchy(ctx)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.RoleHierarchyOutput{Body: tree}, nil
	})
}

func (m *Module) registerPermissionRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "rbac-list-permissions",
		Method:      http.MethodGet,
		Path:        basePath + "/permissions",
		Summary:     "List permissions",
		Tags:        []string{"RBAC / Permissions"},
	}, func(ctx context.Context, input *dto.ListPermissionsInput) (*dto.PermissionListOutput, error) {
		if _, err := m.auth.RequireAuth(ctx, input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		perms, err := m.service.Permissions().List(ctx, input.Module)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.PermissionListOutput{Body: dto.PermissionListResponse{Permissions: perms, Total: len(perms)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rbac-get-permission",
		Method:      http.MethodGet,
		Path:        basePath + "/permissions/{name}",
		Summary:     "Get permission",
		Tags:        []string{"RBAC / Permissions"},
	}, func(ctx context.Context, input *dto.GetPermissionInput) (*dto.PermissionOutput, error) {
		if _, err := m.auth.RequireAuth(ctx, input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		perm, err := m.service.Permissions().Get(ctx, input.Name)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.PermissionOutput{Body: *perm}, nil
	})
}

func (m *Module) registerAssignmentRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "rbac-assign-role",
		Method:      http.MethodPost,
		Path:        basePath + "/users/{userID}/roles",
		Summary:     "Assign role to user",
		Tags:        []string{"RBAC / Assignments"},
	}, func(ctx context.Context, input *dto.AssignRoleInput) (*dto.AssignmentOutput, error) {
		caller, err := m.requirePermission(ctx, input.Authorization, input.Cookie, permManageAssignments)
		if err != nil {
			return nil, err
		}
		if messages := dto.ValidateStruct(m.validator, input.Body); len(messages) > 0 {
			return nil, huma.Error400BadRequest(strings.Join(messages, "; "))
		}

		assignment, err := m.service.AssignRole(ctx, input.UserID, input.Body.RoleName, caller.UserID, services.AssignmentMeta{
			Reason:    input.Body.Reason,
			IsPrimary: input.Body.IsPrimary,
			ExpiresAt: input.Body.ExpiresAt,
		})
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.AssignmentOutput{Body: *assignment}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rbac-remove-role",
		Method:      http.MethodDelete,
		Path:        basePath + "/users/{userID}/roles/{roleName}",
		Summary:     "Remove role from user",
		Description: "Deactivates the assignment; the audit record is retained",
		Tags:        []string{"RBAC / Assignments"},
	}, func(ctx context.Context, input *dto.RemoveRoleInput) (*dto.MessageOutput, error) {
		caller, err := m.requirePermission(ctx, input.Authorization, input.Cookie, permManageAssignments)
		if err != nil {
			return nil, err
		}
		if err := m.service.RemoveRole(ctx, input.UserID, input.RoleName, caller.UserID, input.Reason); err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Role removed"}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rbac-get-user-roles",
		Method:      http.MethodGet,
		Path:        basePath + "/users/{userID}/roles",
		Summary:     "Get user roles",
		Description: "Returns the user's active assignments and role definitions",
		Tags:        []string{"RBAC / Assignments"},
	}, func(ctx context.Context, input *dto.UserRolesInput) (*dto.UserRolesOutput, error) {
		if _, err := m.requireSelfOrPermission(ctx, input.Authorization, input.Cookie, input.UserID, permManageAssignments); err != nil {
			return nil, err
		}
		assignments, roles, err := m.service.UserRoles(ctx, input.UserID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.UserRolesOutput{Body: dto.UserRolesResponse{
			UserID:      input.UserID,
			Assignments: assignments,
			Roles:       roles,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rbac-get-user-permissions",
		Method:      http.MethodGet,
		Path:        basePath + "/users/{userID}/permissions",
		Summary:     "Get user permissions",
		Description: "Returns the union of permissions from the user's active roles",
		Tags:        []string{"RBAC / Assignments"},
	}, func(ctx context.Context, input *dto.UserPermissionsInput) (*dto.UserPermissionsOutput, error) {
		if _, err := m.requireSelfOrPermission(ctx, input.Authorization, input.Cookie, input.UserID, permManageAssignments); err != nil {
			return nil, err
		}
		perms, err := m.service.Resolver().UserPermissions(ctx, input.UserID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.UserPermissionsOutput{Body: dto.UserPermissionsResponse{
			UserID:      input.UserID,
			Permissions: perms,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rbac-check-permission",
		Method:      http.MethodGet,
		Path:        basePath + "/users/{userID}/check",
		Summary:     "Check permission",
		Description: "Evaluates whether the user holds a permission for an optional record context",
		Tags:        []string{"RBAC / Assignments"},
	}, func(ctx context.Context, input *dto.CheckPermissionInput) (*dto.CheckPermissionOutput, error) {
		if _, err := m.requireSelfOrPermission(ctx, input.Authorization, input.Cookie, input.UserID, permManageAssignments); err != nil {
			return nil, err
		}

		checkCtx := &models.CheckContext{
			RecordLocationID: input.LocationID,
			RecordOwnerID:    input.OwnerID,
		}
		if input.At != "" {
			at, err := time.Parse(time.RFC3339, input.At)
			if err != nil {
				return nil, huma.Error400BadRequest("Invalid 'at' timestamp, expected RFC3339")
			}
			checkCtx.Timestamp = at
		}

		granted, err := m.service.Resolver().HasPermission(ctx, input.UserID, input.Permission, checkCtx)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.CheckPermissionOutput{Body: dto.CheckPermissionResponse{
			UserID:     input.UserID,
			Permission: input.Permission,
			Granted:    granted,
		}}, nil
	})
}

func (m *Module) registerAdminRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "rbac-get-statistics",
		Method:      http.MethodGet,
		Path:        basePath + "/admin/statistics",
		Summary:     "Get RBAC statistics",
		Tags:        []string{"RBAC / Admin"},
	}, func(ctx context.Context, input *dto.StatisticsInput) (*dto.StatisticsOutput, error) {
		if _, err := m.requirePermission(ctx, input.Authorization, input.Cookie, permManageRoles); err != nil {
			return nil, err
		}
		stats, err := m.service.Statistics(ctx)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.StatisticsOutput{Body: *stats}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rbac-cleanup-expired",
		Method:      http.MethodPost,
		Path:        basePath + "/admin/cleanup",
		Summary:     "Clean up expired assignments",
		Description: "Deactivates assignments whose expiry has passed",
		Tags:        []string{"RBAC / Admin"},
	}, func(ctx context.Context, input *dto.CleanupInput) (*dto.CleanupOutput, error) {
		if _, err := m.requirePermission(ctx, input.Authorization, input.Cookie, permManageAssignments); err != nil {
			return nil, err
		}
		count, err := m.service.CleanupExpired(ctx)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &dto.CleanupOutput{Body: dto.CleanupResponse{Deactivated: count}}, nil
	})
}
