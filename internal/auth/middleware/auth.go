package middleware

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"go-sahay/internal/auth/models"
	"go-sahay/internal/auth/services"
)

// AuthMiddleware resolves the calling user from request credentials;
// handlers pass the raw header values captured by their huma inputs.
type AuthMiddleware struct {
	auth *services.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(auth *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth validates the session token and returns the caller's
// identity, or a 401 huma error.
func (m *AuthMiddleware) RequireAuth(ctx context.Context, authHeader, cookieHeader string) (*models.AuthenticatedUser, error) {
	token := services.ExtractToken(authHeader, cookieHeader)
	if token == "" {
		return nil, huma.Error401Unauthorized("Authentication required")
	}

	user, err := m.auth.ValidateToken(token)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired session")
	}
	return user, nil
}
