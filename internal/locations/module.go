package locations

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	authMiddleware "go-sahay/internal/auth/middleware"
	"go-sahay/internal/locations/routes"
	"go-sahay/internal/locations/services"
	rbacMiddleware "go-sahay/internal/rbac/middleware"
	"go-sahay/pkg/database"
	"go-sahay/pkg/module"
)

// Module represents the Locations module
type Module struct {
	*module.BaseModule
	repository *services.Repository
	service    *services.LocationService
	routes     *routes.Module
}

// New creates a new Locations module instance. The routes need RBAC
// middleware, which in turn needs this module's service; AttachRoutes
// closes the loop after the RBAC module exists.
func New(mongodb *database.MongoDB, redis *database.Redis) *Module {
	repository := services.NewRepository(mongodb)
	service := services.NewLocationService(repository, redis)

	return &Module{
		BaseModule: module.NewBaseModule("locations", mongodb, redis),
		repository: repository,
		service:    service,
	}
}

// Service exposes the location service; it implements the RBAC
// resolver's LocationResolver.
func (m *Module) Service() *services.LocationService {
	return m.service
}

// AttachRoutes wires the route layer once RBAC middleware is available
func (m *Module) AttachRoutes(auth *authMiddleware.AuthMiddleware, permissions *rbacMiddleware.PermissionMiddleware) {
	m.routes = routes.NewModule(m.service, auth, permissions)
}

// Initialize creates the collection indexes
func (m *Module) Initialize(ctx context.Context) error {
	slog.Info("[Locations] Initializing module")
	return m.repository.EnsureIndexes(ctx)
}

// Routes registers the module's chi routes
func (m *Module) Routes(r chi.Router) {
	m.RegisterHealthRoute(r)
}

// RegisterUnifiedRoutes registers location endpoints on the shared API
func (m *Module) RegisterUnifiedRoutes(api huma.API) {
	if m.routes == nil {
		slog.Warn("[Locations] Routes not attached, skipping registration")
		return
	}
	m.routes.RegisterUnifiedRoutes(api, "/locations")
	slog.Info("[Locations] Routes registered", "base_path", "/locations")
}
