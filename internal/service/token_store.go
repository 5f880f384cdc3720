package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	accessTokenPrefix  = "access_token"
	refreshTokenPrefix = "refresh_token"
)

// TokenStore keeps the ids of issued tokens in Redis. A token whose key is
// missing has been revoked or has expired.
type TokenStore struct {
	redisClient *redis.Client
}

func NewTokenStore(redisClient *redis.Client) *TokenStore {
	return &TokenStore{redisClient: redisClient}
}

func tokenKey(prefix string, userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, userID.String(), tokenID)
}

// SavePair registers an access/refresh pair in one round trip
func (s *TokenStore) SavePair(ctx context.Context, userID uuid.UUID, accessID string, accessTTL time.Duration, refreshID string, refreshTTL time.Duration) error {
	pipe := s.redisClient.TxPipeline()
	pipe.Set(ctx, tokenKey(accessTokenPrefix, userID, accessID), "valid", accessTTL)
	pipe.Set(ctx, tokenKey(refreshTokenPrefix, userID, refreshID), "valid", refreshTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store tokens for user %s: %w", userID, err)
	}
	return nil
}

func (s *TokenStore) AccessTokenExists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	return s.exists(ctx, tokenKey(accessTokenPrefix, userID, tokenID))
}

func (s *TokenStore) exists(ctx context.Context, key string) (bool, error) {
	n, err := s.redisClient.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check token %s: %w", key, err)
	}
	return n > 0, nil
}

// RevokeRefreshToken deletes a single refresh token and reports whether it was present
func (s *TokenStore) RevokeRefreshToken(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	n, err := s.redisClient.Del(ctx, tokenKey(refreshTokenPrefix, userID, tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}
	return n > 0, nil
}

func (s *TokenStore) RevokePair(ctx context.Context, userID uuid.UUID, accessID, refreshID string) error {
	keys := []string{tokenKey(accessTokenPrefix, userID, accessID)}
	if refreshID != "" {
		keys = append(keys, tokenKey(refreshTokenPrefix, userID, refreshID))
	}
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("revoke tokens for user %s: %w", userID, err)
	}
	return nil
}

// RevokeAll removes every access and refresh token issued to the user
func (s *TokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	for _, prefix := range []string{accessTokenPrefix, refreshTokenPrefix} {
		pattern := fmt.Sprintf("%s:%s:*", prefix, userID.String())
		keys, err := s.redisClient.Keys(ctx, pattern).Result()
		if err != nil {
			return fmt.Errorf("list %s keys: %w", prefix, err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete %s keys: %w", prefix, err)
		}
	}
	return nil
}
