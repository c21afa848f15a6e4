// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/adminauth/internal/platform/constants"
)

// RedisRevocationList implements [RevocationList] as Redis keys that expire
// together with the token they deny.
type RedisRevocationList struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisRevocationList creates a Redis-backed [RevocationList].
func NewRedisRevocationList(client redis.UniversalClient) *RedisRevocationList {
	return &RedisRevocationList{client: client, now: time.Now}
}

func revocationKey(tokenID string) string {
	return constants.RedisPrefixRevokedToken + tokenID
}

/*
Revoke denies tokenID until expiresAt.

Description: Tokens that are already expired need no entry and are skipped.

Parameters:
  - context: context.Context
  - tokenID: string (the token's jti)
  - expiresAt: time.Time

Returns:
  - error: Redis failures
*/
func (list *RedisRevocationList) Revoke(context context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(list.now())
	if ttl <= 0 {
		return nil
	}

	if err := list.client.Set(context, revocationKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis_revocation_set_failed: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has an active denylist entry.
func (list *RedisRevocationList) IsRevoked(context context.Context, tokenID string) (bool, error) {
	count, err := list.client.Exists(context, revocationKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_revocation_lookup_failed: %w", err)
	}
	return count > 0, nil
}
