package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go-sahay/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Redis struct {
	Client *redis.Client
	tracer trace.Tracer
}

func NewRedis(ctx context.Context) (*Redis, error) {
	redisURL := config.GetEnv("REDIS_URL", "redis://localhost:6379")

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", opt.Addr)

	r := &Redis{
		Client: client,
	}

	// Only initialize tracer if telemetry is enabled
	if config.GetBoolEnv("ENABLE_TELEMETRY", false) {
		r.tracer = otel.Tracer("redis-client")
	}

	return r, nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

func (r *Redis) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}

func (r *Redis) span(ctx context.Context, op, key string) (context.Context, trace.Span) {
	if r.tracer == nil {
		return ctx, nil
	}
	return r.tracer.Start(ctx, "redis."+op,
		trace.WithAttributes(
			attribute.String("redis.key", key),
			attribute.String("redis.operation", op),
		),
	)
}

func (r *Redis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	ctx, span := r.span(ctx, "set", key)
	err := r.Client.Set(ctx, key, value, expiration).Err()
	if span != nil {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
	return err
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	ctx, span := r.span(ctx, "get", key)
	result, err := r.Client.Get(ctx, key).Result()
	if span != nil {
		if err != nil && err != redis.Nil {
			span.RecordError(err)
		}
		span.End()
	}
	return result, err
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	ctx, span := r.span(ctx, "del", fmt.Sprintf("%v", keys))
	err := r.Client.Del(ctx, keys...).Err()
	if span != nil {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
	return err
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	ctx, span := r.span(ctx, "incr", key)
	n, err := r.Client.Incr(ctx, key).Result()
	if span != nil {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
	return n, err
}

func (r *Redis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	ctx, span := r.span(ctx, "expire", key)
	err := r.Client.Expire(ctx, key, expiration).Err()
	if span != nil {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
	return err
}

// SetJSON stores a JSON-serializable object in Redis with expiration
func (r *Redis) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return r.Set(ctx, key, jsonData, expiration)
}

// GetJSON retrieves and unmarshals a JSON object from Redis
func (r *Redis) GetJSON(ctx context.Context, key string, dest interface{}) error {
	jsonData, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(jsonData), dest); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}
