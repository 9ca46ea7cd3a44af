package users

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	authMiddleware "go-sahay/internal/auth/middleware"
	rbacMiddleware "go-sahay/internal/rbac/middleware"
	"go-sahay/internal/users/routes"
	"go-sahay/internal/users/services"
	"go-sahay/pkg/database"
	"go-sahay/pkg/module"
)

// Module represents the Users module
type Module struct {
	*module.BaseModule
	repository *services.Repository
	service    *services.UserService
	routes     *routes.Module
}

// New creates a new Users module instance. The service feeds the RBAC
// resolver's directory lookups; AttachRoutes wires the HTTP layer once
// RBAC middleware exists.
func New(mongodb *database.MongoDB, redis *database.Redis) *Module {
	repository := services.NewRepository(mongodb)
	service := services.NewUserService(repository)

	return &Module{
		BaseModule: module.NewBaseModule("users", mongodb, redis),
		repository: repository,
		service:    service,
	}
}

// Service exposes the user service; it implements the RBAC resolver's
// UserDirectory.
func (m *Module) Service() *services.UserService {
	return m.service
}

// AttachRoutes wires the route layer once RBAC middleware is available
func (m *Module) AttachRoutes(auth *authMiddleware.AuthMiddleware, permissions *rbacMiddleware.PermissionMiddleware) {
	m.routes = routes.NewModule(m.service, auth, permissions)
}

// Initialize creates the collection indexes
func (m *Module) Initialize(ctx context.Context) error {
	slog.Info("[Users] Initializing module")
	return m.repository.EnsureIndexes(ctx)
}

// Routes registers the module's chi routes
func (m *Module) Routes(r chi.Router) {
	m.RegisterHealthRoute(r)
}

// RegisterUnifiedRoutes registers user endpoints on the shared API
func (m *Module) RegisterUnifiedRoutes(api huma.API) {
	if m.routes == nil {
		slog.Warn("[Users] Routes not attached, skipping registration")
		return
	}
	m.routes.RegisterUnifiedRoutes(api, "/users")
	slog.Info("[Users] Routes registered", "base_path", "/users")
}
