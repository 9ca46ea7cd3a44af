package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/google/uuid"

	authModels "go-sahay/internal/auth/models"
	authServices "go-sahay/internal/auth/services"
	userModels "go-sahay/internal/users/models"
)

// UserLookup is the slice of the user directory OTP login needs
type UserLookup interface {
	FindByPhone(ctx context.Context, phone string) (*userModels.User, error)
	RecordLogin(ctx context.Context, userID string)
}

// CodeStore holds outstanding codes and counters; *Store is the Redis
// implementation.
type CodeStore interface {
	Save(ctx context.Context, requestID, phone, code, channel string) error
	Consume(ctx context.Context, requestID, code string) (string, error)
	AllowSend(ctx context.Context, phone string) (bool, error)
}

// Service implements phone-number login: request a code, verify it,
// receive a session token.
type Service struct {
	store  CodeStore
	sender Sender
	auth   *authServices.AuthService
	users  UserLookup
}

// NewService creates a new OTP service
func NewService(store CodeStore, sender Sender, auth *authServices.AuthService, users UserLookup) *Service {
	return &Service{store: store, sender: sender, auth: auth, users: users}
}

// generateCode returns a random 6-digit code
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Request issues a code to a registered phone number and returns the
// request id the verify call must present. Unknown phone numbers and
// rate-limited numbers both fail.
func (s *Service) Request(ctx context.Context, phone, channel string) (string, error) {
	if !ValidChannel(channel) {
		return "", fmt.Errorf("unsupported channel: %s", channel)
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fmt.Errorf("phone number not registered")
	}

	allowed, err := s.store.AllowSend(ctx, phone)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", fmt.Errorf("too many codes requested, try again later")
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	requestID := uuid.New().String()
	if err := s.store.Save(ctx, requestID, phone, code, channel); err != nil {
		return "", err
	}
	if err := s.sender.Send(ctx, phone, channel, code); err != nil {
		return "", err
	}

	slog.Info("[OTP] Code issued", "request_id", requestID, "channel", channel)
	return requestID, nil
}

// Verify checks the code and returns a session token for the user the
// phone belongs to.
func (s *Service) Verify(ctx context.Context, requestID, code string) (string, *authModels.AuthenticatedUser, error) {
	phone, err := s.store.Consume(ctx, requestID, code)
	if err != nil {
		return "", nil, err
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, fmt.Errorf("account no longer active")
	}

	identity := &authModels.AuthenticatedUser{
		UserID: user.UserID,
		Name:   user.Name,
		Phone:  user.Phone,
	}
	token, err := s.auth.IssueToken(identity)
	if err != nil {
		return "", nil, err
	}

	s.users.RecordLogin(ctx, user.UserID)
	slog.Info("[OTP] Login verified", "user_id", user.UserID)
	return token, identity, nil
}
