package beneficiaries

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"go-sahay/internal/beneficiaries/routes"
	"go-sahay/internal/beneficiaries/services"
	rbacMiddleware "go-sahay/internal/rbac/middleware"
	"go-sahay/pkg/database"
	"go-sahay/pkg/module"
)

// Module represents the Beneficiaries module
type Module struct {
	*module.BaseModule
	repository *services.Repository
	service    *services.BeneficiaryService
	routes     *routes.Module
}

// New creates a new Beneficiaries module instance
func New(mongodb *database.MongoDB, redis *database.Redis, permissions *rbacMiddleware.PermissionMiddleware) *Module {
	repository := services.NewRepository(mongodb)
	service := services.NewBeneficiaryService(repository)

	return &Module{
		BaseModule: module.NewBaseModule("beneficiaries", mongodb, redis),
		repository: repository,
		service:    service,
		routes:     routes.NewModule(service, permissions),
	}
}

// Initialize creates the collection indexes
func (m *Module) Initialize(ctx context.Context) error {
	slog.Info("[Beneficiaries] Initializing module")
	return m.repository.EnsureIndexes(ctx)
}

// Routes registers the module's chi routes
func (m *Module) Routes(r chi.Router) {
	m.RegisterHealthRoute(r)
}

// RegisterUnifiedRoutes registers beneficiary endpoints on the shared API
func (m *Module) RegisterUnifiedRoutes(api huma.API) {
	m.routes.RegisterUnifiedRoutes(api, "/beneficiaries")
	slog.Info("[Beneficiaries] Routes registered", "base_path", "/beneficiaries")
}
