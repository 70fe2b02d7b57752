package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"eudrgate/internal/domain"
	"eudrgate/internal/traces"
)

const redisKeyPrefix = "traces:lookup:"

// RedisStore shares the lookup cache across instances.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

type redisEntry struct {
	Kind        int    `json:"kind"`
	Status      string `json:"status,omitempty"`
	FaultReason string `json:"faultReason,omitempty"`
}

func redisKey(key domain.StatementKey) string {
	return redisKeyPrefix + key.ReferenceNumber + ":" + key.VerificationNumber
}

func (s *RedisStore) Get(ctx context.Context, key domain.StatementKey) (traces.LookupResult, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return traces.LookupResult{}, false, nil
		}
		return traces.LookupResult{}, false, fmt.Errorf("redis get: %w", err)
	}
	var entry redisEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return traces.LookupResult{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return traces.LookupResult{
		Kind:        traces.LookupKind(entry.Kind),
		Status:      domain.StatementStatus(entry.Status),
		FaultReason: entry.FaultReason,
	}, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key domain.StatementKey, result traces.LookupResult, ttl time.Duration) error {
	raw, err := json.Marshal(redisEntry{
		Kind:        int(result.Kind),
		Status:      string(result.Status),
		FaultReason: result.FaultReason,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
