package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList stores logged-out token ids in Redis. Keys expire with the
// token they revoke, so the set never outgrows the live sessions.
type RevocationList struct {
	client    redis.UniversalClient
	keyPrefix string
	now       func() time.Time
}

// NewRevocationList wraps client. keyPrefix defaults to "revoked_session:".
func NewRevocationList(client redis.UniversalClient, keyPrefix string) *RevocationList {
	if keyPrefix == "" {
		keyPrefix = "revoked_session:"
	}
	return &RevocationList{client: client, keyPrefix: keyPrefix, now: time.Now}
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Revoke marks tokenID as logged out until the given time.
func (r *RevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was logged out.
func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func (r *RevocationList) key(tokenID string) string {
	return r.keyPrefix + tokenID
}
