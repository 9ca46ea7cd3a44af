package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	authMiddleware "go-sahay/internal/auth/middleware"
	authModels "go-sahay/internal/auth/models"
	"go-sahay/internal/rbac/models"
	"go-sahay/internal/rbac/services"
	"go-sahay/pkg/handlers"
)

type contextKey string

// UserContextKey carries the authenticated user through chi middleware
const UserContextKey contextKey = "authenticated_user"

// PermissionMiddleware enforces RBAC permissions for other modules
type PermissionMiddleware struct {
	resolver *services.Resolver
	auth     *authMiddleware.AuthMiddleware
}

// NewPermissionMiddleware creates a new permission middleware
func NewPermissionMiddleware(resolver *services.Resolver, auth *authMiddleware.AuthMiddleware) *PermissionMiddleware {
	return &PermissionMiddleware{resolver: resolver, auth: auth}
}

// RequireAccess resolves the caller and checks a named permission with
// an optional record context. Used by huma handlers in other modules.
func (m *PermissionMiddleware) RequireAccess(ctx context.Context, authHeader, cookieHeader, permission string, checkCtx *models.CheckContext) (*authModels.AuthenticatedUser, error) {
	user, err := m.auth.RequireAuth(ctx, authHeader, cookieHeader)
	if err != nil {
		return nil, err
	}

	granted, err := m.resolver.HasPermission(ctx, user.UserID, permission, checkCtx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Permission check failed", err)
	}
	if !granted {
		return nil, huma.Error403Forbidden("Missing permission: " + permission)
	}
	return user, nil
}

// RequireAnyAccess grants when any of the named permissions passes for
// the record context. Used where an action exists at several scopes,
// e.g. beneficiaries.read.own / .regional / .all.
func (m *PermissionMiddleware) RequireAnyAccess(ctx context.Context, authHeader, cookieHeader string, permissions []string, checkCtx *models.CheckContext) (*authModels.AuthenticatedUser, error) {
	user, err := m.auth.RequireAuth(ctx, authHeader, cookieHeader)
	if err != nil {
		return nil, err
	}

	for _, permission := range permissions {
		granted, err := m.resolver.HasPermission(ctx, user.UserID, permission, checkCtx)
		if err != nil {
			return nil, huma.Error500InternalServerError("Permission check failed", err)
		}
		if granted {
			return user, nil
		}
	}
	return nil, huma.Error403Forbidden("Missing permission: " + strings.Join(permissions, " or "))
}

// RequirePermission creates chi middleware that requires a named
// permission without record context.
func (m *PermissionMiddleware) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			span, r := handlers.StartHTTPSpan(r, "rbac.permission_check",
				attribute.String("permission.name", permission),
			)
			defer span.End()

			user, err := m.auth.RequireAuth(r.Context(), r.Header.Get("Authorization"), r.Header.Get("Cookie"))
			if err != nil {
				span.SetStatus(codes.Error, "Authentication failed")
				handlers.UnauthorizedResponse(w)
				return
			}

			granted, err := m.resolver.HasPermission(r.Context(), user.UserID, permission, nil)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "Permission check failed")
				handlers.ErrorResponse(w, "Permission check failed", http.StatusInternalServerError)
				return
			}
			if !granted {
				span.SetAttributes(attribute.Bool("permission.granted", false))
				handlers.ForbiddenResponse(w, "Missing permission: "+permission)
				return
			}

			span.SetAttributes(attribute.Bool("permission.granted", true))
			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
