package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	authMiddleware "go-sahay/internal/auth/middleware"
	rbacMiddleware "go-sahay/internal/rbac/middleware"
	rbacModels "go-sahay/internal/rbac/models"
	"go-sahay/internal/users/dto"
	"go-sahay/internal/users/models"
	"go-sahay/internal/users/services"
)

const (
	permReadRegional = "users.read.regional"
	permWriteAll     = "users.write.all"
)

// Module handles user route registration
type Module struct {
	service     *services.UserService
	auth        *authMiddleware.AuthMiddleware
	permissions *rbacMiddleware.PermissionMiddleware
}

// NewModule creates a new users routes module
func NewModule(service *services.UserService, auth *authMiddleware.AuthMiddleware, permissions *rbacMiddleware.PermissionMiddleware) *Module {
	return &Module{service: service, auth: auth, permissions: permissions}
}

// RegisterUnifiedRoutes registers user endpoints on the shared API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "users-get-me",
		Method:      http.MethodGet,
		Path:        basePath + "/me",
		Summary:     "Get own profile",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *dto.GetMeInput) (*dto.UserOutput, error) {
		caller, err := m.auth.RequireAuth(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}
		user, err := m.service.Get(ctx, caller.UserID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to load profile", err)
		}
		if user == nil {
			return nil, huma.Error404NotFound("Profile not found")
		}
		return &dto.UserOutput{Body: *user}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "users-get",
		Method:      http.MethodGet,
		Path:        basePath + "/{userID}",
		Summary:     "Get user",
		Description: "Requires regional read access covering the user's posting location",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *dto.GetUserInput) (*dto.UserOutput, error) {
		user, err := m.service.Get(ctx, input.UserID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to load user", err)
		}
		if user == nil {
			return nil, huma.Error404NotFound("User not found: " + input.UserID)
		}

		checkCtx := &rbacModels.CheckContext{
			RecordLocationID: user.LocationID,
			RecordOwnerID:    user.UserID,
		}
		if _, err := m.permissions.RequireAccess(ctx, input.Authorization, input.Cookie, permReadRegional, checkCtx); err != nil {
			return nil, err
		}
		return &dto.UserOutput{Body: *user}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "users-list",
		Method:      http.MethodGet,
		Path:        basePath,
		Summary:     "List users",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *dto.ListUsersInput) (*dto.UserListOutput, error) {
		checkCtx := &rbacModels.CheckContext{RecordLocationID: input.LocationID}
		if _, err := m.permissions.RequireAccess(ctx, input.Authorization, input.Cookie, permReadRegional, checkCtx); err != nil {
			return nil, err
		}
		users, err := m.service.List(ctx, input.LocationID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to list users", err)
		}
		return &dto.UserListOutput{Body: dto.UserListResponse{Users: users, Total: len(users)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "users-create",
		Method:      http.MethodPost,
		Path:        basePath,
		Summary:     "Create user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *dto.CreateUserInput) (*dto.UserOutput, error) {
		if _, err := m.permissions.RequireAccess(ctx, input.Authorization, input.Cookie, permWriteAll, nil); err != nil {
			return nil, err
		}
		user := &models.User{
			Name:       input.Body.Name,
			Phone:      input.Body.Phone,
			Email:      input.Body.Email,
			LocationID: input.Body.LocationID,
			AdminScope: input.Body.AdminScope,
		}
		if err := m.service.Create(ctx, user); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return &dto.UserOutput{Body: *user}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "users-update",
		Method:      http.MethodPut,
		Path:        basePath + "/{userID}",
		Summary:     "Update user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *dto.UpdateUserInput) (*dto.UserOutput, error) {
		if _, err := m.permissions.RequireAccess(ctx, input.Authorization, input.Cookie, permWriteAll, nil); err != nil {
			return nil, err
		}
		user, err := m.service.Update(ctx, input.UserID, services.UserPatch{
			Name:       input.Body.Name,
			Email:      input.Body.Email,
			LocationID: input.Body.LocationID,
			AdminScope: input.Body.AdminScope,
		})
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return &dto.UserOutput{Body: *user}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "users-deactivate",
		Method:      http.MethodDelete,
		Path:        basePath + "/{userID}",
		Summary:     "Deactivate user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *dto.DeactivateUserInput) (*dto.MessageOutput, error) {
		if _, err := m.permissions.RequireAccess(ctx, input.Authorization, input.Cookie, permWriteAll, nil); err != nil {
			return nil, err
		}
		if err := m.service.Deactivate(ctx, input.UserID); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return &dto.MessageOutput{Body: dto.MessageResponse{Message: "User deactivated"}}, nil
	})
}
