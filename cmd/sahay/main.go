package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "go.uber.org/automaxprocs"

	authMiddleware "go-sahay/internal/auth/middleware"
	authServices "go-sahay/internal/auth/services"
	"go-sahay/internal/beneficiaries"
	"go-sahay/internal/locations"
	"go-sahay/internal/otp"
	"go-sahay/internal/rbac"
	"go-sahay/internal/users"
	"go-sahay/pkg/app"
	"go-sahay/pkg/config"
	"go-sahay/pkg/handlers"
	"go-sahay/pkg/module"
	"go-sahay/pkg/version"
)

// customLoggerMiddleware logs requests but excludes health check endpoints
func customLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/health") {
			next.ServeHTTP(w, r)
			return
		}
		middleware.Logger(next).ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers for the configured frontend origins
func corsMiddleware(next http.Handler) http.Handler {
	allowed := strings.Split(config.GetEnv("CORS_ALLOWED_ORIGINS", ""), ",")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, candidate := range allowed {
			if candidate != "" && origin == strings.TrimSpace(candidate) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				break
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	versionInfo := version.Get()
	log.Printf("Sahay %s | build %s | go %s", versionInfo.Version, versionInfo.BuildDate, versionInfo.GoVersion)
	log.Printf("CPUs: %d | GOMAXPROCS: %d", runtime.NumCPU(), runtime.GOMAXPROCS(0))

	ctx := context.Background()

	appCtx, err := app.InitializeApp("sahay")
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer appCtx.Shutdown(ctx)

	r := chi.NewRouter()
	r.Use(customLoggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)
	r.Use(handlers.TracingMiddleware("sahay"))

	r.Get("/health", healthHandler)

	// Identity layer
	authService := authServices.NewAuthService()
	authMw := authMiddleware.NewAuthMiddleware(authService)

	// Modules. Locations and users carry the hierarchy and directory
	// the RBAC resolver depends on; their HTTP layers attach after the
	// RBAC middleware exists.
	locationsModule := locations.New(appCtx.MongoDB, appCtx.Redis)
	usersModule := users.New(appCtx.MongoDB, appCtx.Redis)
	rbacModule := rbac.New(appCtx.MongoDB, appCtx.Redis, authMw, locationsModule.Service(), usersModule.Service())

	permissionMw := rbacModule.PermissionMiddleware()
	locationsModule.AttachRoutes(authMw, permissionMw)
	usersModule.AttachRoutes(authMw, permissionMw)

	otpModule := otp.New(appCtx.MongoDB, appCtx.Redis, authService, usersModule.Service())
	beneficiariesModule := beneficiaries.New(appCtx.MongoDB, appCtx.Redis, permissionMw)

	modules := []module.Module{rbacModule, locationsModule, usersModule, otpModule, beneficiariesModule}

	// Indexes and system seed data
	initCtx, cancelInit := context.WithTimeout(ctx, 2*time.Minute)
	defer cancelInit()
	for _, init := range []func(context.Context) error{
		locationsModule.Initialize,
		usersModule.Initialize,
		beneficiariesModule.Initialize,
		rbacModule.Initialize,
	} {
		if err := init(initCtx); err != nil {
			log.Fatalf("Module initialization failed: %v", err)
		}
	}

	// Unified Huma API
	apiPrefix := config.GetAPIPrefix()
	humaConfig := huma.DefaultConfig("Sahay API Server", versionInfo.Version)
	humaConfig.Info.Description = "Beneficiary management backend with role-based access control"

	var unifiedAPI huma.API
	if apiPrefix == "" {
		unifiedAPI = humachi.New(r, humaConfig)
	} else {
		r.Route(apiPrefix, func(prefixRouter chi.Router) {
			unifiedAPI = humachi.New(prefixRouter, humaConfig)
		})
	}

	rbacModule.RegisterUnifiedRoutes(unifiedAPI)
	locationsModule.RegisterUnifiedRoutes(unifiedAPI)
	usersModule.RegisterUnifiedRoutes(unifiedAPI)
	otpModule.RegisterUnifiedRoutes(unifiedAPI)
	beneficiariesModule.RegisterUnifiedRoutes(unifiedAPI)

	for _, mod := range modules {
		go mod.StartBackgroundTasks(ctx)
	}

	port := app.GetPort("8080")
	host := config.GetHost()
	srv := &http.Server{
		Addr:         host + ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting Sahay API server", slog.String("addr", srv.Addr), slog.String("api_prefix", apiPrefix))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Received shutdown signal, initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	for _, mod := range modules {
		mod.Stop()
	}
	appCtx.Shutdown(shutdownCtx)

	slog.Info("Sahay shutdown completed")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	versionInfo := version.Get()
	fmt.Fprintf(w, `{"status":"healthy","version":"%s","git_commit":"%s","build_date":"%s","go_version":"%s"}`,
		versionInfo.Version, versionInfo.GitCommit, versionInfo.BuildDate, versionInfo.GoVersion)
}
