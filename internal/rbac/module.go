package rbac

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"

	authMiddleware "go-sahay/internal/auth/middleware"
	"go-sahay/internal/rbac/middleware"
	"go-sahay/internal/rbac/routes"
	"go-sahay/internal/rbac/services"
	"go-sahay/pkg/config"
	"go-sahay/pkg/database"
	"go-sahay/pkg/module"
)

// Module represents the RBAC module
type Module struct {
	*module.BaseModule
	repository *services.Repository
	service    *services.Service
	middleware *middleware.PermissionMiddleware
	routes     *routes.Module
	cron       *cron.Cron
}

// New creates a new RBAC module instance. Locations and user directory
// come from their owning modules so the resolver can evaluate scopes.
func New(mongodb *database.MongoDB, redis *database.Redis, auth *authMiddleware.AuthMiddleware, locations services.LocationResolver, directory services.UserDirectory) *Module {
	repository := services.NewRepository(mongodb)
	service := services.NewService(repository, repository, repository, locations, directory).WithCache(redis)

	return &Module{
		BaseModule: module.NewBaseModule("rbac", mongodb, redis),
		repository: repository,
		service:    service,
		middleware: middleware.NewPermissionMiddleware(service.Resolver(), auth),
		routes:     routes.NewModule(service, auth),
		cron:       cron.New(),
	}
}

// Initialize creates indexes and seeds system permissions and roles
func (m *Module) Initialize(ctx context.Context) error {
	slog.Info("[RBAC] Initializing module")

	if err := m.repository.EnsureIndexes(ctx); err != nil {
		slog.Error("[RBAC] Failed to create indexes", "error", err)
		return err
	}
	if err := m.service.InitializeRBAC(ctx); err != nil {
		slog.Error("[RBAC] Failed to seed system roles and permissions", "error", err)
		return err
	}

	slog.Info("[RBAC] Module initialized")
	return nil
}

// Service exposes the RBAC service to other modules
func (m *Module) Service() *services.Service {
	return m.service
}

// PermissionMiddleware exposes permission enforcement to other modules
func (m *Module) PermissionMiddleware() *middleware.PermissionMiddleware {
	return m.middleware
}

// Routes registers the module's chi routes
func (m *Module) Routes(r chi.Router) {
	m.RegisterHealthRoute(r)
}

// RegisterUnifiedRoutes registers RBAC endpoints on the shared huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API) {
	m.routes.RegisterUnifiedRoutes(api, "/rbac")
	slog.Info("[RBAC] Routes registered", "base_path", "/rbac")
}

// StartBackgroundTasks runs the periodic expired-assignment sweep
func (m *Module) StartBackgroundTasks(ctx context.Context) {
	schedule := config.GetEnv("RBAC_CLEANUP_SCHEDULE", "0 * * * *")

	_, err := m.cron.AddFunc(schedule, func() {
		count, err := m.service.CleanupExpired(context.Background())
		if err != nil {
			slog.Error("[RBAC] Expired assignment sweep failed", "error", err)
			return
		}
		if count > 0 {
			slog.Info("[RBAC] Deactivated expired assignments", "count", count)
		}
	})
	if err != nil {
		slog.Error("[RBAC] Failed to schedule cleanup", "schedule", schedule, "error", err)
		return
	}

	slog.Info("[RBAC] Background cleanup scheduled", "schedule", schedule)
	m.cron.Start()

	select {
	case <-ctx.Done():
	case <-m.StopChannel():
	}

	cronCtx := m.cron.Stop()
	<-cronCtx.Done()
	slog.Info("[RBAC] Background tasks stopped")
}
