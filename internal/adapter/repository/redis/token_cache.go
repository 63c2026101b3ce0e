package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kamrikalive/logg/internal/domain"
)

const tokenKeyPrefix = "logg:iam_token:"

// TokenCache implements domain.TokenCache on top of Redis string keys with TTLs.
type TokenCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewTokenCache creates a Redis-backed token cache.
func NewTokenCache(client *redis.Client, logger *slog.Logger) *TokenCache {
	return &TokenCache{
		client: client,
		logger: logger.With("component", "redis_token_cache"),
	}
}

// Get returns the cached token for a service account key id.
func (c *TokenCache) Get(ctx context.Context, key string) (domain.IAMToken, bool, error) {
	raw, err := c.client.Get(ctx, tokenKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.IAMToken{}, false, nil
		}
		return domain.IAMToken{}, false, fmt.Errorf("failed to GET token from redis: %w", err)
	}

	var tok domain.IAMToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		c.logger.Warn("invalid cached token, ignoring", "error", err)
		return domain.IAMToken{}, false, nil
	}
	return tok, true, nil
}

// Set stores a token with the given TTL.
func (c *TokenCache) Set(ctx context.Context, key string, token domain.IAMToken, ttl time.Duration) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := c.client.Set(ctx, tokenKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to SET token in redis: %w", err)
	}
	return nil
}

// Connect parses a redis:// URL and verifies connectivity. It returns
// ErrRedisNotAvailable, together with the client, when the ping fails.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return client, fmt.Errorf("%w: %v", ErrRedisNotAvailable, err)
	}
	return client, nil
}

// ErrRedisNotAvailable indicates Redis could not be reached.
var ErrRedisNotAvailable = errors.New("redis is not available")
