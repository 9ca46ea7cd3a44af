package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	rbacModels "go-sahay/internal/rbac/models"
	"go-sahay/internal/users/models"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// Store is the persistence surface the user service needs
type Store interface {
	Insert(ctx context.Context, user *models.User) error
	Get(ctx context.Context, userID string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	List(ctx context.Context, locationID string) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
	Deactivate(ctx context.Context, userID string) (bool, error)
}

// UserService is the staff directory. It implements the RBAC
// resolver's UserDirectory.
type UserService struct {
	repository Store
}

// NewUserService creates a new user service
func NewUserService(repository Store) *UserService {
	return &UserService{repository: repository}
}

// Create registers a new user account
func (s *UserService) Create(ctx context.Context, user *models.User) error {
	if user.Name == "" {
		return fmt.Errorf("user name cannot be empty")
	}
	if !phonePattern.MatchString(user.Phone) {
		return fmt.Errorf("invalid phone number: %s", user.Phone)
	}

	existing, err := s.repository.FindByPhone(ctx, user.Phone)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("phone number already registered")
	}

	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	if err := s.repository.Insert(ctx, user); err != nil {
		return err
	}

	slog.Info("[Users] User created", "user_id", user.UserID, "location_id", user.LocationID)
	return nil
}

// Get returns a user by id, or nil
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.repository.Get(ctx, userID)
}

// FindByPhone returns the active user registered under phone, or nil
func (s *UserService) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.repository.FindByPhone(ctx, phone)
}

// List returns active users, optionally filtered by posting location
func (s *UserService) List(ctx context.Context, locationID string) ([]models.User, error) {
	return s.repository.List(ctx, locationID)
}

// UserPatch carries updatable profile fields; nil means "leave as is"
type UserPatch struct {
	Name       *string
	Email      *string
	LocationID *string
	AdminScope *rbacModels.AdminScope
}

// Update applies a patch to an existing user
func (s *UserService) Update(ctx context.Context, userID string, patch UserPatch) (*models.User, error) {
	user, err := s.repository.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found: %s", userID)
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, fmt.Errorf("user name cannot be empty")
		}
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.LocationID != nil {
		user.LocationID = *patch.LocationID
	}
	if patch.AdminScope != nil {
		user.AdminScope = patch.AdminScope
	}

	if err := s.repository.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate soft-deletes a user account
func (s *UserService) Deactivate(ctx context.Context, userID string) error {
	removed, err := s.repository.Deactivate(ctx, userID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("user not found: %s", userID)
	}
	slog.Info("[Users] User deactivated", "user_id", userID)
	return nil
}

// RecordLogin stamps a successful login on the profile
func (s *UserService) RecordLogin(ctx context.Context, userID string) {
	if err := s.repository.TouchLastLogin(ctx, userID, time.Now()); err != nil {
		slog.Warn("[Users] Failed to record login", "user_id", userID, "error", err)
	}
}

// GetAdminScope implements the RBAC UserDirectory: the user's admin
// scope, or nil when the user is missing, inactive or unscoped.
func (s *UserService) GetAdminScope(ctx context.Context, userID string) (*rbacModels.AdminScope, error) {
	user, err := s.repository.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}
	return user.AdminScope, nil
}
