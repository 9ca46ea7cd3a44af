package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sahay/internal/locations/models"
)

type memStore struct {
	locations map[string]models.Location
}

func newMemStore() *memStore {
	return &memStore{locations: make(map[string]models.Location)}
}

func (m *memStore) Insert(_ context.Context, location *models.Location) error {
	location.IsActive = true
	m.locations[location.ID] = *location
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*models.Location, error) {
	location, ok := m.locations[id]
	if !ok {
		return nil, nil
	}
	return &location, nil
}

func (m *memStore) List(_ context.Context, locationType models.LocationType, parentID string) ([]models.Location, error) {
	var out []models.Location
	for _, location := range m.locations {
		if !location.IsActive {
			continue
		}
		if locationType != "" && location.Type != locationType {
			continue
		}
		if parentID != "" && location.ParentID != parentID {
			continue
		}
		out = append(out, location)
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, location *models.Location) error {
	m.locations[location.ID] = *location
	return nil
}

func (m *memStore) Deactivate(_ context.Context, id string) (bool, error) {
	location, ok := m.locations[id]
	if !ok || !location.IsActive {
		return false, nil
	}
	location.IsActive = false
	m.locations[id] = location
	return true, nil
}

func (m *memStore) CountChildren(_ context.Context, parentID string) (int64, error) {
	var count int64
	for _, location := range m.locations {
		if location.IsActive && location.ParentID == parentID {
			count++
		}
	}
	return count, nil
}

// seedHierarchy builds state-1 > district-1 > area-1 > unit-1 plus a
// sibling unit-2 under area-2
func seedHierarchy(t *testing.T, store *memStore) {
	t.Helper()
	ctx := context.Background()
	nodes := []models.Location{
		{ID: "state-1", Name: "State", Type: models.LocationTypeState},
		{ID: "district-1", Name: "District One", Type: models.LocationTypeDistrict, ParentID: "state-1"},
		{ID: "area-1", Name: "Area One", Type: models.LocationTypeArea, ParentID: "district-1"},
		{ID: "area-2", Name: "Area Two", Type: models.LocationTypeArea, ParentID: "district-1"},
		{ID: "unit-1", Name: "Unit One", Type: models.LocationTypeUnit, ParentID: "area-1"},
		{ID: "unit-2", Name: "Unit Two", Type: models.LocationTypeUnit, ParentID: "area-2"},
	}
	for _, node := range nodes {
		n := node
		require.NoError(t, store.Insert(ctx, &n))
	}
}

func TestIsAncestorOrEqual(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seedHierarchy(t, store)
	service := NewLocationService(store, nil)

	tests := []struct {
		name     string
		ancestor string
		location string
		want     bool
	}{
		{"location equals ancestor", "unit-1", "unit-1", true},
		{"direct parent", "area-1", "unit-1", true},
		{"grandparent", "district-1", "unit-1", true},
		{"state root covers everything", "state-1", "unit-2", true},
		{"sibling area does not cover", "area-1", "unit-2", false},
		{"child is not an ancestor", "unit-1", "area-1", false},
		{"unknown location", "area-1", "nowhere", false},
		{"empty ancestor", "", "unit-1", false},
		{"empty location", "area-1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.IsAncestorOrEqual(ctx, tt.ancestor, tt.location)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocationCreate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seedHierarchy(t, store)
	service := NewLocationService(store, nil)

	t.Run("valid child", func(t *testing.T) {
		location := &models.Location{Name: "Unit Three", Type: models.LocationTypeUnit, ParentID: "area-1"}
		require.NoError(t, service.Create(ctx, location))
		assert.NotEmpty(t, location.ID, "id is generated")
	})

	t.Run("second state root", func(t *testing.T) {
		location := &models.Location{Name: "Another State", Type: models.LocationTypeState}
		require.NoError(t, service.Create(ctx, location))
	})

	tests := []struct {
		name     string
		location models.Location
	}{
		{"empty name", models.Location{Type: models.LocationTypeUnit, ParentID: "area-1"}},
		{"invalid type", models.Location{Name: "X", Type: "village", ParentID: "area-1"}},
		{"state with parent", models.Location{Name: "X", Type: models.LocationTypeState, ParentID: "district-1"}},
		{"missing parent", models.Location{Name: "X", Type: models.LocationTypeUnit, ParentID: "nowhere"}},
		{"level skip", models.Location{Name: "X", Type: models.LocationTypeUnit, ParentID: "district-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			location := tt.location
			assert.Error(t, service.Create(ctx, &location))
		})
	}
}

func TestLocationDeactivate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seedHierarchy(t, store)
	service := NewLocationService(store, nil)

	t.Run("node with children is protected", func(t *testing.T) {
		assert.Error(t, service.Deactivate(ctx, "area-1"))
	})

	t.Run("leaf deactivates", func(t *testing.T) {
		require.NoError(t, service.Deactivate(ctx, "unit-1"))
		require.NoError(t, service.Deactivate(ctx, "area-1"), "now childless")
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.Error(t, service.Deactivate(ctx, "nowhere"))
	})
}
