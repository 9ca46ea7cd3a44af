package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rbacModels "go-sahay/internal/rbac/models"
	"go-sahay/internal/users/models"
)

type memStore struct {
	users map[string]models.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]models.User)}
}

func (m *memStore) Insert(_ context.Context, user *models.User) error {
	user.IsActive = true
	user.CreatedAt = time.Now()
	m.users[user.UserID] = *user
	return nil
}

func (m *memStore) Get(_ context.Context, userID string) (*models.User, error) {
	user, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (m *memStore) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	for _, user := range m.users {
		if user.IsActive && user.Phone == phone {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memStore) List(_ context.Context, locationID string) ([]models.User, error) {
	var out []models.User
	for _, user := range m.users {
		if user.IsActive && (locationID == "" || user.LocationID == locationID) {
			out = append(out, user)
		}
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, user *models.User) error {
	m.users[user.UserID] = *user
	return nil
}

func (m *memStore) TouchLastLogin(_ context.Context, userID string, at time.Time) error {
	user, ok := m.users[userID]
	if ok {
		user.LastLogin = &at
		m.users[userID] = user
	}
	return nil
}

func (m *memStore) Deactivate(_ context.Context, userID string) (bool, error) {
	user, ok := m.users[userID]
	if !ok || !user.IsActive {
		return false, nil
	}
	user.IsActive = false
	m.users[userID] = user
	return true, nil
}

func TestUserCreate(t *testing.T) {
	ctx := context.Background()
	service := NewUserService(newMemStore())

	t.Run("valid user", func(t *testing.T) {
		user := &models.User{Name: "Asha Nair", Phone: "+919800000001", LocationID: "unit-1"}
		require.NoError(t, service.Create(ctx, user))
		assert.NotEmpty(t, user.UserID)
		assert.True(t, user.IsActive)
	})

	t.Run("duplicate phone", func(t *testing.T) {
		err := service.Create(ctx, &models.User{Name: "Other", Phone: "+919800000001"})
		assert.Error(t, err)
	})

	tests := []struct {
		name string
		user models.User
	}{
		{"empty name", models.User{Phone: "+919800000002"}},
		{"short phone", models.User{Name: "X", Phone: "12345"}},
		{"phone with letters", models.User{Name: "X", Phone: "98abc00002"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.user
			assert.Error(t, service.Create(ctx, &user))
		})
	}
}

func TestGetAdminScope(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := NewUserService(store)

	scoped := &models.User{
		Name: "Coordinator", Phone: "+919800000010",
		AdminScope: &rbacModels.AdminScope{Level: rbacModels.ScopeLevelArea, AreaID: "area-1"},
	}
	require.NoError(t, service.Create(ctx, scoped))

	plain := &models.User{Name: "Staff", Phone: "+919800000011"}
	require.NoError(t, service.Create(ctx, plain))

	t.Run("scoped user", func(t *testing.T) {
		scope, err := service.GetAdminScope(ctx, scoped.UserID)
		require.NoError(t, err)
		require.NotNil(t, scope)
		assert.Equal(t, "area-1", scope.LocationID())
	})

	t.Run("unscoped user", func(t *testing.T) {
		scope, err := service.GetAdminScope(ctx, plain.UserID)
		require.NoError(t, err)
		assert.Nil(t, scope)
	})

	t.Run("unknown user", func(t *testing.T) {
		scope, err := service.GetAdminScope(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, scope)
	})

	t.Run("deactivated user loses scope", func(t *testing.T) {
		require.NoError(t, service.Deactivate(ctx, scoped.UserID))
		scope, err := service.GetAdminScope(ctx, scoped.UserID)
		require.NoError(t, err)
		assert.Nil(t, scope)
	})
}

func TestUserUpdate(t *testing.T) {
	ctx := context.Background()
	service := NewUserService(newMemStore())

	user := &models.User{Name: "Asha Nair", Phone: "+919800000001"}
	require.NoError(t, service.Create(ctx, user))

	name := "Asha N"
	location := "unit-2"
	updated, err := service.Update(ctx, user.UserID, UserPatch{Name: &name, LocationID: &location})
	require.NoError(t, err)
	assert.Equal(t, "Asha N", updated.Name)
	assert.Equal(t, "unit-2", updated.LocationID)
	assert.Equal(t, "+919800000001", updated.Phone, "phone is immutable through patch")

	t.Run("empty name rejected", func(t *testing.T) {
		empty := ""
		_, err := service.Update(ctx, user.UserID, UserPatch{Name: &empty})
		assert.Error(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := service.Update(ctx, "nobody", UserPatch{Name: &name})
		assert.Error(t, err)
	})
}
