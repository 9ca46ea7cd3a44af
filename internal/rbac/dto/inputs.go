package dto

import "time"

// HUMA input structures for the RBAC API endpoints

type ListRolesInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
}

type GetRoleInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	Name          string `path:"name" doc:"Role name"`
}

type CreateRoleInput struct {
	Authorization string            `header:"Authorization"`
	Cookie        string            `header:"Cookie"`
	Body          CreateRoleRequest `json:"body"`
}

type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,role_name" doc:"Unique role name, snake_case"`
	DisplayName string   `json:"display_name" validate:"required" doc:"Human-readable name"`
	Description string   `json:"description,omitempty"`
	Level       int      `json:"level" validate:"gte=0" doc:"Authority level, higher = more authority"`
	Category    string   `json:"category" validate:"required,oneof=coordinator staff custom" doc:"Role category"`
	Permissions []string `json:"permissions,omitempty" doc:"Permission names granted by this role"`
	Parent      string   `json:"parent,omitempty" doc:"Parent role to inherit permissions from"`
}

type UpdateRoleInput struct {
	Authorization string            `header:"Authorization"`
	Cookie        string            `header:"Cookie"`
	Name          string            `path:"name" doc:"Role name"`
	Body          UpdateRoleRequest `json:"body"`
}

type UpdateRoleRequest struct {
	DisplayName *string  `json:"display_name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Level       *int     `json:"level,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Parent      *string  `json:"parent,omitempty"`
}

type DeleteRoleInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	Name          string `path:"name" doc:"Role name"`
}

type RoleHierarchyInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
}

type ListPermissionsInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	Module        string `query:"module" doc:"Filter permissions by module"`
}

type GetPermissionInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	Name          string `path:"name" doc:"Permission name"`
}

type AssignRoleInput struct {
	Authorization string            `header:"Authorization"`
	Cookie        string            `header:"Cookie"`
	UserID        string            `path:"userID" doc:"User ID"`
	Body          AssignRoleRequest `json:"body"`
}

type AssignRoleRequest struct {
	RoleName  string     `json:"role_name" validate:"required" doc:"Role to assign"`
	Reason    string     `json:"reason,omitempty" doc:"Why the role is being granted"`
	IsPrimary bool       `json:"is_primary,omitempty" doc:"Mark as the user's primary role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" doc:"Optional expiry for temporary assignments"`
}

type RemoveRoleInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	UserID        string `path:"userID" doc:"User ID"`
	RoleName      string `path:"roleName" doc:"Role name"`
	Reason        string `query:"reason" doc:"Why the role is being removed"`
}

type UserRolesInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	UserID        string `path:"userID" doc:"User ID"`
}

type UserPermissionsInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	UserID        string `path:"userID" doc:"User ID"`
}

type CheckPermissionInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	UserID        string `path:"userID" doc:"User ID"`
	Permission    string `query:"permission" required:"true" doc:"Permission name to check"`
	LocationID    string `query:"location_id" doc:"Location of the record being accessed"`
	OwnerID       string `query:"owner_id" doc:"Owning user of the record being accessed"`
	At            string `query:"at" doc:"RFC3339 evaluation instant; defaults to now"`
}

type StatisticsInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
}

type CleanupInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
}
