package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps issued refresh tokens in Redis so logout can revoke them before
// their JWT expiry. Tokens are keyed by digest; the raw token never touches
// the store.
type Store struct {
	client *redis.Client
	prefix string
}

func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
	}
}

func (s *Store) key(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return fmt.Sprintf("%s:%s", s.prefix, hex.EncodeToString(sum[:]))
}

// Save persists a refresh token until its expiry.
func (s *Store) Save(ctx context.Context, tokenString string, userID uint, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("refresh token already expired")
	}
	return s.client.Set(ctx, s.key(tokenString), userID, ttl).Err()
}

// Exists reports whether the refresh token is still valid (issued and not
// revoked).
func (s *Store) Exists(ctx context.Context, tokenString string) (bool, error) {
	err := s.client.Get(ctx, s.key(tokenString)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Revoke deletes the refresh token. Revoking an unknown token is not an
// error.
func (s *Store) Revoke(ctx context.Context, tokenString string) error {
	return s.client.Del(ctx, s.key(tokenString)).Err()
}
