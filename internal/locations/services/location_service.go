package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go-sahay/internal/locations/models"
	"go-sahay/pkg/database"
)

const (
	cacheKeyPrefix = "sahay:locations:"
	cacheTTL       = 10 * time.Minute
)

// Store is the persistence surface the location service needs.
// Lookups return (nil, nil) when the document is absent.
type Store interface {
	Insert(ctx context.Context, location *models.Location) error
	Get(ctx context.Context, id string) (*models.Location, error)
	List(ctx context.Context, locationType models.LocationType, parentID string) ([]models.Location, error)
	Update(ctx context.Context, location *models.Location) error
	Deactivate(ctx context.Context, id string) (bool, error)
	CountChildren(ctx context.Context, parentID string) (int64, error)
}

// LocationService manages the administrative location hierarchy and
// answers the ancestor queries regional permission checks depend on.
type LocationService struct {
	repository Store
	redis      *database.Redis
}

// NewLocationService creates a new location service
func NewLocationService(repository Store, redis *database.Redis) *LocationService {
	return &LocationService{repository: repository, redis: redis}
}

// Create validates and inserts a new location node
func (s *LocationService) Create(ctx context.Context, location *models.Location) error {
	if location.Name == "" {
		return fmt.Errorf("location name cannot be empty")
	}
	if !models.ValidLocationType(location.Type) {
		return fmt.Errorf("invalid location type: %s", location.Type)
	}

	if location.Type == models.LocationTypeState {
		if location.ParentID != "" {
			return fmt.Errorf("state locations cannot have a parent")
		}
	} else {
		parent, err := s.Get(ctx, location.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return fmt.Errorf("parent location not found: %s", location.ParentID)
		}
		if parent.Type.ChildType() != location.Type {
			return fmt.Errorf("%s cannot be a child of %s", location.Type, parent.Type)
		}
	}

	if location.ID == "" {
		location.ID = uuid.New().String()
	}
	if err := s.repository.Insert(ctx, location); err != nil {
		return err
	}

	slog.Info("[Locations] Location created", "id", location.ID, "type", location.Type, "name", location.Name)
	return nil
}

// Get returns a location by id, consulting the cache first
func (s *LocationService) Get(ctx context.Context, id string) (*models.Location, error) {
	if id == "" {
		return nil, nil
	}

	if s.redis != nil {
		var cached models.Location
		if err := s.redis.GetJSON(ctx, cacheKeyPrefix+id, &cached); err == nil {
			return &cached, nil
		}
	}

	location, err := s.repository.Get(ctx, id)
	if err != nil || location == nil {
		return location, err
	}

	if s.redis != nil {
		if err := s.redis.SetJSON(ctx, cacheKeyPrefix+id, location, cacheTTL); err != nil {
			slog.Debug("[Locations] Cache write failed", "id", id, "error", err)
		}
	}
	return location, nil
}

// List returns active locations filtered by type and parent
func (s *LocationService) List(ctx context.Context, locationType models.LocationType, parentID string) ([]models.Location, error) {
	return s.repository.List(ctx, locationType, parentID)
}

// Update renames a location; type and parent are fixed after creation
func (s *LocationService) Update(ctx context.Context, id, name, code string) (*models.Location, error) {
	location, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, fmt.Errorf("location not found: %s", id)
	}

	if name != "" {
		location.Name = name
	}
	if code != "" {
		location.Code = code
	}
	if err := s.repository.Update(ctx, location); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return location, nil
}

// Deactivate soft-deletes a leaf location. Nodes with active children
// are protected.
func (s *LocationService) Deactivate(ctx context.Context, id string) error {
	children, err := s.repository.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("location %s still has %d active children", id, children)
	}

	removed, err := s.repository.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("location not found: %s", id)
	}
	s.invalidate(ctx, id)
	return nil
}

// IsAncestorOrEqual reports whether ancestorID is locationID itself or
// appears on its parent chain. Used by the RBAC resolver for regional
// scope checks.
func (s *LocationService) IsAncestorOrEqual(ctx context.Context, ancestorID, locationID string) (bool, error) {
	if ancestorID == "" || locationID == "" {
		return false, nil
	}

	current := locationID
	for depth := 0; current != "" && depth <= models.MaxHierarchyDepth; depth++ {
		if current == ancestorID {
			return true, nil
		}
		location, err := s.Get(ctx, current)
		if err != nil {
			return false, err
		}
		if location == nil {
			return false, nil
		}
		current = location.ParentID
	}
	return false, nil
}

func (s *LocationService) invalidate(ctx context.Context, id string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, cacheKeyPrefix+id); err != nil {
		slog.Debug("[Locations] Cache invalidation failed", "id", id, "error", err)
	}
}
