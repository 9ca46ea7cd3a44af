package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"go-sahay/internal/beneficiaries/dto"
	"go-sahay/internal/beneficiaries/models"
	"go-sahay/internal/beneficiaries/services"
	rbacMiddleware "go-sahay/internal/rbac/middleware"
	rbacModels "go-sahay/internal/rbac/models"
)

// Permission names per action, narrowest scope first; the middleware
// grants on whichever the caller holds and passes.
var (
	readPerms  = []string{"beneficiaries.read.own", "beneficiaries.read.regional", "beneficiaries.read.all"}
	writePerms = []string{"beneficiaries.write.regional", "beneficiaries.write.all"}
	deletePerm = "beneficiaries.delete.all"
)

// Module handles beneficiary route registration
type Module struct {
	service     *services.BeneficiaryService
	permissions *rbacMiddleware.PermissionMiddleware
}

// NewModule creates a new beneficiaries routes module
func NewModule(service *services.BeneficiaryService, permissions *rbacMiddleware.PermissionMiddleware) *Module {
	return &Module{service: service, permissions: permissions}
}

// RegisterUnifiedRoutes registers beneficiary endpoints on the shared API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "beneficiaries-list",
		Method:      http.MethodGet,
		Path:        basePath,
		Summary:     "List beneficiaries",
		Description: "Lists records inside a location the caller can read",
		Tags:        []string{"Beneficiaries"},
	}, func(ctx context.Context, input *dto.ListBeneficiariesInput) (*dto.BeneficiaryListOutput, error) {
		registeredBy := ""
		checkCtx := &rbacModels.CheckContext{RecordLocationID: input.LocationID}

		caller, err := m.permissions.RequireAnyAccess(ctx, input.Authorization, input.Cookie, readPerms, checkCtx)
		if err != nil {
			return nil, err
		}
		if input.Mine {
			registeredBy = caller.UserID
		}

		beneficiaries, err := m.service.List(ctx, input.LocationID, registeredBy)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to list beneficiaries", err)
		}
		return &dto.BeneficiaryListOutput{Body: dto.BeneficiaryListResponse{
			Beneficiaries: beneficiaries,
			Total:         len(beneficiaries),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "beneficiaries-get",
		Method:      http.MethodGet,
		Path:        basePath + "/{id}",
		Summary:     "Get beneficiary",
		Tags:        []string{"Beneficiaries"},
	}, func(ctx context.Context, input *dto.GetBeneficiaryInput) (*dto.BeneficiaryOutput, error) {
		beneficiary, err := m.service.Get(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to load beneficiary", err)
		}
		if beneficiary == nil {
			return nil, huma.Error404NotFound("Beneficiary not found: " + input.ID)
		}

		checkCtx := &rbacModels.CheckContext{
			RecordLocationID: beneficiary.LocationID,
			RecordOwnerID:    beneficiary.RegisteredBy,
		}
		if _, err := m.permissions.RequireAnyAccess(ctx, input.Authorization, input.Cookie, readPerms, checkCtx); err != nil {
			return nil, err
		}
		return &dto.BeneficiaryOutput{Body: *beneficiary}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "beneficiaries-register",
		Method:      http.MethodPost,
		Path:        basePath,
		Summary:     "Register beneficiary",
		Tags:        []string{"Beneficiaries"},
	}, func(ctx context.Context, input *dto.RegisterBeneficiaryInput) (*dto.BeneficiaryOutput, error) {
		checkCtx := &rbacModels.CheckContext{RecordLocationID: input.Body.LocationID}
		caller, err := m.permissions.RequireAnyAccess(ctx, input.Authorization, input.Cookie, writePerms, checkCtx)
		if err != nil {
			return nil, err
		}

		beneficiary := &models.Beneficiary{
			Name:         input.Body.Name,
			Phone:        input.Body.Phone,
			Address:      input.Body.Address,
			LocationID:   input.Body.LocationID,
			RegisteredBy: caller.UserID,
			Notes:        input.Body.Notes,
		}
		if err := m.service.Register(ctx, beneficiary); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return &dto.BeneficiaryOutput{Body: *beneficiary}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "beneficiaries-update",
		Method:      http.MethodPut,
		Path:        basePath + "/{id}",
		Summary:     "Update beneficiary",
		Tags:        []string{"Beneficiaries"},
	}, func(ctx context.Context, input *dto.UpdateBeneficiaryInput) (*dto.BeneficiaryOutput, error) {
		beneficiary, err := m.service.Get(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to load beneficiary", err)
		}
		if beneficiary == nil {
			return nil, huma.Error404NotFound("Beneficiary not found: " + input.ID)
		}

		checkCtx := &rbacModels.CheckContext{
			RecordLocationID: beneficiary.LocationID,
			RecordOwnerID:    beneficiary.RegisteredBy,
		}
		if _, err := m.permissions.RequireAnyAccess(ctx, input.Authorization, input.Cookie, writePerms, checkCtx); err != nil {
			return nil, err
		}

		var status *models.BeneficiaryStatus
		if input.Body.Status != nil {
			s := models.BeneficiaryStatus(*input.Body.Status)
			status = &s
		}
		updated, err := m.service.Update(ctx, input.ID, services.BeneficiaryPatch{
			Name:    input.Body.Name,
			Phone:   input.Body.Phone,
			Address: input.Body.Address,
			Notes:   input.Body.Notes,
			Status:  status,
		})
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return &dto.BeneficiaryOutput{Body: *updated}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "beneficiaries-delete",
		Method:      http.MethodDelete,
		Path:        basePath + "/{id}",
		Summary:     "Delete beneficiary",
		Tags:        []string{"Beneficiaries"},
	}, func(ctx context.Context, input *dto.DeleteBeneficiaryInput) (*dto.MessageOutput, error) {
		if _, err := m.permissions.RequireAccess(ctx, input.Authorization, input.Cookie, deletePerm, nil); err != nil {
			return nil, err
		}
		if err := m.service.Delete(ctx, input.ID); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return &dto.MessageOutput{Body: dto.MessageResponse{Message: "Beneficiary deleted"}}, nil
	})
}
