package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authServices "go-sahay/internal/auth/services"
	userModels "go-sahay/internal/users/models"
)

type memCodeStore struct {
	codes     map[string]pendingOTP
	attempts  map[string]int64
	sends     map[string]int64
	rateLimit int64
}

func newMemCodeStore() *memCodeStore {
	return &memCodeStore{
		codes:     make(map[string]pendingOTP),
		attempts:  make(map[string]int64),
		sends:     make(map[string]int64),
		rateLimit: 3,
	}
}

func (m *memCodeStore) Save(_ context.Context, requestID, phone, code, channel string) error {
	m.codes[requestID] = pendingOTP{Phone: phone, CodeHash: hashCode(code), Channel: channel}
	return nil
}

func (m *memCodeStore) Consume(_ context.Context, requestID, code string) (string, error) {
	pending, ok := m.codes[requestID]
	if !ok {
		return "", fmt.Errorf("code expired or unknown request")
	}
	if hashCode(code) != pending.CodeHash {
		m.attempts[requestID]++
		if m.attempts[requestID] >= 3 {
			delete(m.codes, requestID)
			return "", fmt.Errorf("too many failed attempts")
		}
		return "", fmt.Errorf("invalid code")
	}
	delete(m.codes, requestID)
	return pending.Phone, nil
}

func (m *memCodeStore) AllowSend(_ context.Context, phone string) (bool, error) {
	m.sends[phone]++
	return m.sends[phone] <= m.rateLimit, nil
}

// captureSender records the last code instead of delivering it
type captureSender struct {
	lastPhone   string
	lastChannel string
	lastCode    string
}

func (s *captureSender) Send(_ context.Context, phone, channel, code string) error {
	s.lastPhone = phone
	s.lastChannel = channel
	s.lastCode = code
	return nil
}

type memUsers struct {
	byPhone map[string]userModels.User
	logins  []string
}

func (m *memUsers) FindByPhone(_ context.Context, phone string) (*userModels.User, error) {
	user, ok := m.byPhone[phone]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (m *memUsers) RecordLogin(_ context.Context, userID string) {
	m.logins = append(m.logins, userID)
}

func newTestOTPService(t *testing.T) (*Service, *memCodeStore, *captureSender, *memUsers) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	store := newMemCodeStore()
	sender := &captureSender{}
	users := &memUsers{byPhone: map[string]userModels.User{
		"+919800000001": {UserID: "user-1", Name: "Asha Nair", Phone: "+919800000001", IsActive: true},
	}}
	service := NewService(store, sender, authServices.NewAuthService(), users)
	return service, store, sender, users
}

func TestOTPRequest(t *testing.T) {
	ctx := context.Background()
	service, _, sender, _ := newTestOTPService(t)

	t.Run("issues a code over sms", func(t *testing.T) {
		requestID, err := service.Request(ctx, "+919800000001", ChannelSMS)
		require.NoError(t, err)
		assert.NotEmpty(t, requestID)
		assert.Equal(t, "+919800000001", sender.lastPhone)
		assert.Len(t, sender.lastCode, 6)
	})

	t.Run("whatsapp channel", func(t *testing.T) {
		_, err := service.Request(ctx, "+919800000001", ChannelWhatsApp)
		require.NoError(t, err)
		assert.Equal(t, ChannelWhatsApp, sender.lastChannel)
	})

	t.Run("unsupported channel", func(t *testing.T) {
		_, err := service.Request(ctx, "+919800000001", "carrier-pigeon")
		assert.Error(t, err)
	})

	t.Run("unknown phone", func(t *testing.T) {
		_, err := service.Request(ctx, "+919899999999", ChannelSMS)
		assert.Error(t, err)
	})

	t.Run("rate limit", func(t *testing.T) {
		// Two sends already happened above.
		_, err := service.Request(ctx, "+919800000001", ChannelSMS)
		require.NoError(t, err)
		_, err = service.Request(ctx, "+919800000001", ChannelSMS)
		assert.Error(t, err, "fourth send inside the window is blocked")
	})
}

func TestOTPVerify(t *testing.T) {
	ctx := context.Background()
	service, _, sender, users := newTestOTPService(t)

	requestID, err := service.Request(ctx, "+919800000001", ChannelSMS)
	require.NoError(t, err)

	t.Run("wrong code", func(t *testing.T) {
		_, _, err := service.Verify(ctx, requestID, "000000")
		assert.Error(t, err)
	})

	t.Run("valid code issues a session", func(t *testing.T) {
		token, user, err := service.Verify(ctx, requestID, sender.lastCode)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "user-1", user.UserID)
		assert.Equal(t, []string{"user-1"}, users.logins)

		validated, err := authServices.NewAuthService().ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", validated.UserID)
	})

	t.Run("code is single use", func(t *testing.T) {
		_, _, err := service.Verify(ctx, requestID, sender.lastCode)
		assert.Error(t, err)
	})

	t.Run("unknown request id", func(t *testing.T) {
		_, _, err := service.Verify(ctx, "nonsense", "123456")
		assert.Error(t, err)
	})
}

func TestOTPVerifyAttemptLimit(t *testing.T) {
	ctx := context.Background()
	service, store, sender, _ := newTestOTPService(t)

	requestID, err := service.Request(ctx, "+919800000001", ChannelSMS)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, _, err := service.Verify(ctx, requestID, "999999")
		require.Error(t, err)
	}

	// Burned: even the right code no longer works.
	_, _, err = service.Verify(ctx, requestID, sender.lastCode)
	assert.Error(t, err)
	assert.NotContains(t, store.codes, requestID)
}
