package models

import "github.com/golang-jwt/jwt/v5"

// AuthenticatedUser is the identity attached to a validated request
type AuthenticatedUser struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
}

// SessionClaims is the JWT payload issued after OTP verification
type SessionClaims struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}
