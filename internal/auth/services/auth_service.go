package services

import (
	"fmt"
	"strings"
	"time"

	"go-sahay/internal/auth/models"
	"go-sahay/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookieName = "sahay_session"

// AuthService issues and validates the HS256 session tokens handed out
// after OTP verification.
type AuthService struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
}

// NewAuthService creates the auth service from environment configuration
func NewAuthService() *AuthService {
	return &AuthService{
		secret:   []byte(config.MustGetEnv("JWT_SECRET")),
		issuer:   config.GetEnv("JWT_ISSUER", "go-sahay"),
		lifetime: config.GetDurationEnv("JWT_LIFETIME", 24*time.Hour),
	}
}

// IssueToken creates a signed session token for the user
func (s *AuthService) IssueToken(user *models.AuthenticatedUser) (string, error) {
	now := time.Now()
	claims := models.SessionClaims{
		Name:  user.Name,
		Phone: user.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and verifies a session token
func (s *AuthService) ValidateToken(tokenString string) (*models.AuthenticatedUser, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	return &models.AuthenticatedUser{
		UserID: claims.Subject,
		Name:   claims.Name,
		Phone:  claims.Phone,
	}, nil
}

// ExtractToken pulls the session token from the Authorization header or
// the session cookie. Header wins when both are present.
func ExtractToken(authHeader, cookieHeader string) string {
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	for _, part := range strings.Split(cookieHeader, ";") {
		part = strings.TrimSpace(part)
		if value, ok := strings.CutPrefix(part, sessionCookieName+"="); ok {
			return value
		}
	}
	return ""
}
