package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	authMiddleware "go-sahay/internal/auth/middleware"
	"go-sahay/internal/locations/dto"
	"go-sahay/internal/locations/models"
	"go-sahay/internal/locations/services"
	rbacMiddleware "go-sahay/internal/rbac/middleware"
)

const permManageLocations = "locations.manage.all"

// Module handles location route registration
type Module struct {
	service     *services.LocationService
	auth        *authMiddleware.AuthMiddleware
	permissions *rbacMiddleware.PermissionMiddleware
}

// NewModule creates a new locations routes module
func NewModule(service *services.LocationService, auth *authMiddleware.AuthMiddleware, permissions *rbacMiddleware.PermissionMiddleware) *Module {
	return &Module{service: service, auth: auth, permissions: permissions}
}

// RegisterUnifiedRoutes registers location endpoints on the shared API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "locations-list",
		Method:      http.MethodGet,
		Path:        basePath,
		Summary:     "List locations",
		Tags:        []string{"Locations"},
	}, func(ctx context.Context, input *dto.ListLocationsInput) (*dto.LocationListOutput, error) {
		if _, err := m.auth.RequireAuth(ctx, input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		locations, err := m.service.List(ctx, models.LocationType(input.Type), input.ParentID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to list locations", err)
		}
		return &dto.LocationListOutput{Body: dto.LocationListResponse{Locations: locations, Total: len(locations)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "locations-get",
		Method:      http.MethodGet,
		Path:        basePath + "/{id}",
		Summary:     "Get location",
		Tags:        []string{"Locations"},
	}, func(ctx context.Context, input *dto.GetLocationInput) (*dto.LocationOutput, error) {
		if _, err := m.auth.RequireAuth(ctx, input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		location, err := m.service.Get(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to load location", err)
		}
		if location == nil {
			return nil, huma.Error404NotFound("Location not found: " + input.ID)
		}
		return &dto.LocationOutput{Body: *location}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "locations-children",
		Method:      http.MethodGet,
		Path:        basePath + "/{id}/children",
		Summary:     "List child locations",
		Tags:        []string{"Locations"},
	}, func(ctx context.Context, input *dto.GetLocationInput) (*dto.LocationListOutput, error) {
		if _, err := m.auth.RequireAuth(ctx, input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		parent, err := m.service.Get(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to load location", err)
		}
		if parent == nil {
			return nil, huma.Error404NotFound("Location not found: " + input.ID)
		}
		children, err := m.service.List(ctx, "", input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to list child locations", err)
		}
		return &dto.LocationListOutput{Body: dto.LocationListResponse{Locations: children, Total: len(children)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "locations-create",
		Method:      http.MethodPost,
		Path:        basePath,
		Summary:     "Create location",
		Tags:        []string{"Locations"},
	}, func(ctx context.Context, input *dto.CreateLocationInput) (*dto.LocationOutput, error) {
		if _, err := m.permissions.RequireAccess(ctx, input.Authorization, input.Cookie, permManageLocations, nil); err != nil {
			return nil, err
		}
		location := &models.Location{
			Name:     input.Body.Name,
			Type:     models.LocationType(input.Body.Type),
			ParentID: input.Body.ParentID,
			Code:     input.Body.Code,
		}
		if err := m.service.Create(ctx, location); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return &dto.LocationOutput{Body: *location}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "locations-update",
		Method:      http.MethodPut,
		Path:        basePath + "/{id}",
		Summary:     "Update location",
		Tags:        []string{"Locations"},
	}, func(ctx context.Context, input *dto.UpdateLocationInput) (*dto.LocationOutput, error) {
		if _, err := m.permissions.RequireAccess(ctx, input.Authorization, input.Cookie, permManageLocations, nil); err != nil {
			return nil, err
		}
		location, err := m.service.Update(ctx, input.ID, input.Body.Name, input.Body.Code)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return &dto.LocationOutput{Body: *location}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "locations-deactivate",
		Method:      http.MethodDelete,
		Path:        basePath + "/{id}",
		Summary:     "Deactivate location",
		Description: "Soft-deletes a leaf location; nodes with active children are protected",
		Tags:        []string{"Locations"},
	}, func(ctx context.Context, input *dto.DeactivateLocationInput) (*dto.MessageOutput, error) {
		if _, err := m.permissions.RequireAccess(ctx, input.Authorization, input.Cookie, permManageLocations, nil); err != nil {
			return nil, err
		}
		if err := m.service.Deactivate(ctx, input.ID); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Location deactivated"}}, nil
	})
}
