package dto

import (
	rbacModels "go-sahay/internal/rbac/models"
	"go-sahay/internal/users/models"
)

type GetMeInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
}

type GetUserInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	UserID        string `path:"userID" doc:"User ID"`
}

type ListUsersInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	LocationID    string `query:"location_id" doc:"Filter by posting location"`
}

type CreateUserInput struct {
	Authorization string            `header:"Authorization"`
	Cookie        string            `header:"Cookie"`
	Body          CreateUserRequest `json:"body"`
}

type CreateUserRequest struct {
	Name       string                 `json:"name" doc:"Full name"`
	Phone      string                 `json:"phone" doc:"Login phone number"`
	Email      string                 `json:"email,omitempty"`
	LocationID string                 `json:"location_id,omitempty" doc:"Posting location"`
	AdminScope *rbacModels.AdminScope `json:"admin_scope,omitempty" doc:"Slice of the hierarchy the user administers"`
}

type UpdateUserInput struct {
	Authorization string            `header:"Authorization"`
	Cookie        string            `header:"Cookie"`
	UserID        string            `path:"userID" doc:"User ID"`
	Body          UpdateUserRequest `json:"body"`
}

type UpdateUserRequest struct {
	Name       *string                `json:"name,omitempty"`
	Email      *string                `json:"email,omitempty"`
	LocationID *string                `json:"location_id,omitempty"`
	AdminScope *rbacModels.AdminScope `json:"admin_scope,omitempty"`
}

type DeactivateUserInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	UserID        string `path:"userID" doc:"User ID"`
}

type UserOutput struct {
	Body models.User `json:"body"`
}

type UserListOutput struct {
	Body UserListResponse `json:"body"`
}

type UserListResponse struct {
	Users []models.User `json:"users"`
	Total int           `json:"total"`
}

type MessageOutput struct {
	Body MessageResponse `json:"body"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
