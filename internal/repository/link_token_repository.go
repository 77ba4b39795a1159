package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LinkTokenRepository tracks consumed consent/reset tokens in Redis so an
// emailed link can only be used once. With no Redis client configured the
// checks degrade to signature+TTL validation only.
type LinkTokenRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewLinkTokenRepository constructs a link token repository.
func NewLinkTokenRepository(client *redis.Client, logger *zap.Logger) *LinkTokenRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkTokenRepository{client: client, logger: logger}
}

// Consume marks the token used. Returns false when the token was already
// consumed by a previous request.
func (r *LinkTokenRepository) Consume(ctx context.Context, purpose, token string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return true, nil
	}

	key := fmt.Sprintf("linktoken:%s:%s", purpose, token)
	ok, err := r.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}
