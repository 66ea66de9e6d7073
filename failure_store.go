package goChat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var errFailureBackend = errors.New("failure counter backend unavailable")

// failureCounterStore tracks a bounded counter per arbitrary key (identifier
// or source address) with a rolling expiry. Absence of a key means count 0.
//
// Save is a full replace by design: the caller reads, increments, and writes
// back. Concurrent failures for the same key may lose an increment, which is
// an accepted approximation for coarse-grained brute-force deterrence.
type failureCounterStore struct {
	redis  redis.UniversalClient
	prefix string
}

func newFailureCounterStore(redisClient redis.UniversalClient, prefix string) *failureCounterStore {
	return &failureCounterStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *failureCounterStore) key(k string) string {
	return s.prefix + ":" + k
}

// FindByKey returns the current record, or a zero-count record when the key
// is absent or its TTL has lapsed. Absence is not an error.
func (s *failureCounterStore) FindByKey(ctx context.Context, key string) (FailureRecord, error) {
	count, err := s.redis.Get(ctx, s.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return FailureRecord{Key: key}, nil
		}
		return FailureRecord{}, fmt.Errorf("%w: %v", errFailureBackend, err)
	}
	if count < 0 {
		count = 0
	}
	return FailureRecord{Key: key, Count: int(count)}, nil
}

// Save upserts the record and refreshes its TTL on every write.
func (s *failureCounterStore) Save(ctx context.Context, record FailureRecord, ttl time.Duration) (FailureRecord, error) {
	if record.Count < 0 {
		record.Count = 0
	}
	value := strconv.Itoa(record.Count)
	if err := s.redis.Set(ctx, s.key(record.Key), value, ttl).Err(); err != nil {
		return FailureRecord{}, fmt.Errorf("%w: %v", errFailureBackend, err)
	}
	return record, nil
}

// DeleteByKey clears the counter. Used on successful authentication;
// deleting an absent key is a no-op.
func (s *failureCounterStore) DeleteByKey(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errFailureBackend, err)
	}
	return nil
}

// Increment is the atomic fixed-window variant: INCR plus TTL on the first
// hit of the window. Provided for callers that prefer exact accounting over
// the documented read-modify-write approximation.
func (s *failureCounterStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := s.redis.Incr(ctx, s.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errFailureBackend, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := s.redis.Expire(ctx, s.key(key), ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", errFailureBackend, err)
		}
	}

	return count, nil
}
