package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// minRevokeTTL keeps a revocation entry alive briefly even when a token
// is already at (or past) its expiry, covering the clock skew the
// validator tolerates.
const minRevokeTTL = 2 * time.Minute

// RedisRevoker stores signed-out session tokens in Redis so every
// instance rejects them until they expire on their own.
type RedisRevoker struct {
	client *redis.Client
}

// NewRedisRevoker creates a revoker using the provided Redis client.
func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client}
}

// Tokens are hashed before use as keys; raw credentials never land in Redis.
func (r *RedisRevoker) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked:" + hex.EncodeToString(sum[:])
}

// Revoke records the token. ttl is the token's remaining lifetime; after
// that the entry is useless anyway because validation rejects the token.
func (r *RedisRevoker) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl < minRevokeTTL {
		ttl = minRevokeTTL
	}
	return r.client.Set(ctx, r.key(token), 1, ttl).Err()
}

// IsRevoked reports whether the token was signed out.
func (r *RedisRevoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
