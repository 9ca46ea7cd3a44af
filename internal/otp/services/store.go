package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go-sahay/pkg/database"
)

const (
	codeKeyPrefix     = "sahay:otp:code:"
	attemptsKeyPrefix = "sahay:otp:attempts:"
	rateKeyPrefix     = "sahay:otp:rate:"
)

// pendingOTP is the redis payload for an outstanding code
type pendingOTP struct {
	Phone    string    `json:"phone"`
	CodeHash string    `json:"code_hash"`
	Channel  string    `json:"channel"`
	IssuedAt time.Time `json:"issued_at"`
}

// Store keeps outstanding OTP codes, verification attempt counters and
// per-phone send rate counters in Redis.
type Store struct {
	redis       *database.Redis
	ttl         time.Duration
	maxAttempts int64
	rateWindow  time.Duration
	rateLimit   int64
}

// NewStore creates a new OTP store
func NewStore(redis *database.Redis, ttl time.Duration, maxAttempts int64, rateWindow time.Duration, rateLimit int64) *Store {
	return &Store{
		redis:       redis,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		rateWindow:  rateWindow,
		rateLimit:   rateLimit,
	}
}

// hashCode stores a digest, never the code itself
func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Save records a freshly issued code under its request id
func (s *Store) Save(ctx context.Context, requestID, phone, code, channel string) error {
	pending := pendingOTP{
		Phone:    phone,
		CodeHash: hashCode(code),
		Channel:  channel,
		IssuedAt: time.Now(),
	}
	return s.redis.SetJSON(ctx, codeKeyPrefix+requestID, pending, s.ttl)
}

// Consume verifies the code for requestID. On success the code is
// deleted; on failure the attempt counter advances and the code is
// burned once maxAttempts is reached. Returns the phone the code was
// issued for.
func (s *Store) Consume(ctx context.Context, requestID, code string) (string, error) {
	var pending pendingOTP
	if err := s.redis.GetJSON(ctx, codeKeyPrefix+requestID, &pending); err != nil {
		return "", fmt.Errorf("code expired or unknown request")
	}

	if hashCode(code) != pending.CodeHash {
		attempts, err := s.redis.Incr(ctx, attemptsKeyPrefix+requestID)
		if err == nil {
			_ = s.redis.Expire(ctx, attemptsKeyPrefix+requestID, s.ttl)
			if attempts >= s.maxAttempts {
				_ = s.redis.Delete(ctx, codeKeyPrefix+requestID, attemptsKeyPrefix+requestID)
				return "", fmt.Errorf("too many failed attempts")
			}
		}
		return "", fmt.Errorf("invalid code")
	}

	_ = s.redis.Delete(ctx, codeKeyPrefix+requestID, attemptsKeyPrefix+requestID)
	return pending.Phone, nil
}

// AllowSend enforces the per-phone send rate limit
func (s *Store) AllowSend(ctx context.Context, phone string) (bool, error) {
	key := rateKeyPrefix + phone
	count, err := s.redis.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := s.redis.Expire(ctx, key, s.rateWindow); err != nil {
			return false, err
		}
	}
	return count <= s.rateLimit, nil
}
