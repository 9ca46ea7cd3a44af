package dto

import (
	"go-sahay/internal/rbac/models"
)

// HUMA output structures for the RBAC API endpoints

type StatusOutput struct {
	Body StatusResponse `json:"body"`
}

type StatusResponse struct {
	Module  string `json:"module"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type RoleOutput struct {
	Body models.Role `json:"body"`
}

type RoleListOutput struct {
	Body RoleListResponse `json:"body"`
}

type RoleListResponse struct {
	Roles []models.Role `json:"roles"`
	Total int           `json:"total"`
}

type RoleHierarchyOutput struct {
	Body map[string]models.RoleHierarchyNode `json:"body"`
}

type PermissionOutput struct {
	Body models.Permission `json:"body"`
}

type PermissionListOutput struct {
	Body PermissionListResponse `json:"body"`
}

type PermissionListResponse struct {
	Permissions []models.Permission `json:"permissions"`
	Total       int                 `json:"total"`
}

type AssignmentOutput struct {
	Body models.UserRoleAssignment `json:"body"`
}

type UserRolesOutput struct {
	Body UserRolesResponse `json:"body"`
}

type UserRolesResponse struct {
	UserID      string                      `json:"user_id"`
	Assignments []models.UserRoleAssignment `json:"assignments"`
	Roles       []models.Role               `json:"roles"`
}

type UserPermissionsOutput struct {
	Body UserPermissionsResponse `json:"body"`
}

type UserPermissionsResponse struct {
	UserID      string              `json:"user_id"`
	Permissions []models.Permission `json:"permissions"`
}

type CheckPermissionOutput struct {
	Body CheckPermissionResponse `json:"body"`
}

type CheckPermissionResponse struct {
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
	Granted    bool   `json:"granted"`
}

type StatisticsOutput struct {
	Body models.Statistics `json:"body"`
}

type CleanupOutput struct {
	Body CleanupResponse `json:"body"`
}

type CleanupResponse struct {
	Deactivated int64 `json:"deactivated"`
}

type MessageOutput struct {
	Body MessageResponse `json:"body"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
