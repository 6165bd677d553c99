// Package redis provides the production blocklist store. Membership lives
// in a single Redis set maintained by an external moderation pipeline; the
// portal only ever reads it.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultSetKey is the set consulted when no key is configured.
const DefaultSetKey = "portal:blocklist"

// Store implements blocklist.Store against a Redis set.
type Store struct {
	client *redis.Client
	setKey string
}

// Option configures a Store.
type Option func(*Store)

// WithSetKey overrides the Redis set holding blocked subdomains.
func WithSetKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.setKey = key
		}
	}
}

// New constructs a Redis-backed blocklist store.
func New(client *redis.Client, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	s := &Store{
		client: client,
		setKey: DefaultSetKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Contains checks set membership with a single SISMEMBER.
func (s *Store) Contains(ctx context.Context, subject string) (bool, error) {
	if subject == "" {
		return false, nil
	}
	blocked, err := s.client.SIsMember(ctx, s.setKey, subject).Result()
	if err != nil {
		return false, fmt.Errorf("sismember %s: %w", s.setKey, err)
	}
	return blocked, nil
}

// Health verifies the backing connection.
func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
