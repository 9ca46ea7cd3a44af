package otp

import (
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	authServices "go-sahay/internal/auth/services"
	"go-sahay/internal/otp/routes"
	"go-sahay/internal/otp/services"
	"go-sahay/pkg/config"
	"go-sahay/pkg/database"
	"go-sahay/pkg/module"
)

// Module represents the OTP login module
type Module struct {
	*module.BaseModule
	service *services.Service
	routes  *routes.Module
}

// New creates a new OTP module instance
func New(mongodb *database.MongoDB, redis *database.Redis, auth *authServices.AuthService, users services.UserLookup) *Module {
	store := services.NewStore(redis,
		config.GetDurationEnv("OTP_TTL", 5*time.Minute),
		int64(config.GetIntEnv("OTP_MAX_ATTEMPTS", 3)),
		config.GetDurationEnv("OTP_RATE_WINDOW", 15*time.Minute),
		int64(config.GetIntEnv("OTP_RATE_LIMIT", 3)),
	)

	var sender services.Sender
	if config.GetBoolEnv("OTP_DEV_MODE", false) {
		sender = services.LogSender{}
		slog.Warn("[OTP] Dev mode enabled, codes are written to the log")
	} else {
		sender = services.NewGatewayClient()
	}

	service := services.NewService(store, sender, auth, users)

	return &Module{
		BaseModule: module.NewBaseModule("otp", mongodb, redis),
		service:    service,
		routes:     routes.NewModule(service),
	}
}

// Routes registers the module's chi routes
func (m *Module) Routes(r chi.Router) {
	m.RegisterHealthRoute(r)
}

// RegisterUnifiedRoutes registers login endpoints on the shared API
func (m *Module) RegisterUnifiedRoutes(api huma.API) {
	m.routes.RegisterUnifiedRoutes(api, "/auth")
	slog.Info("[OTP] Routes registered", "base_path", "/auth")
}
