package goChat

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var errMembershipBackend = errors.New("membership backend unavailable")

// RedisMembershipStore is the default [MembershipStore]: one Redis set per
// chat room. SADD and SREM are naturally idempotent, which the coordinator's
// join/leave guarantees rely on.
//
// The store itself performs no locking; the Engine serializes same-room
// mutations through the lock manager before calling it.
type RedisMembershipStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisMembershipStore creates a membership store using the given key
// prefix (one set per room at "<prefix>:<chatRoomID>").
func NewRedisMembershipStore(redisClient redis.UniversalClient, prefix string) *RedisMembershipStore {
	if prefix == "" {
		prefix = "rm"
	}
	return &RedisMembershipStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisMembershipStore) key(chatRoomID string) string {
	return s.prefix + ":" + chatRoomID
}

// IsMember reports whether the user is in the room's member set.
func (s *RedisMembershipStore) IsMember(ctx context.Context, chatRoomID, userID string) (bool, error) {
	member, err := s.redis.SIsMember(ctx, s.key(chatRoomID), userID).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", errMembershipBackend, err)
	}
	return member, nil
}

// Add inserts the membership record. Adding an existing member is a no-op.
func (s *RedisMembershipStore) Add(ctx context.Context, chatRoomID, userID string) error {
	if err := s.redis.SAdd(ctx, s.key(chatRoomID), userID).Err(); err != nil {
		return fmt.Errorf("%w: %v", errMembershipBackend, err)
	}
	return nil
}

// Remove deletes the membership record. Removing a non-member is a no-op.
func (s *RedisMembershipStore) Remove(ctx context.Context, chatRoomID, userID string) error {
	if err := s.redis.SRem(ctx, s.key(chatRoomID), userID).Err(); err != nil {
		return fmt.Errorf("%w: %v", errMembershipBackend, err)
	}
	return nil
}

// Members returns the room's current member set.
func (s *RedisMembershipStore) Members(ctx context.Context, chatRoomID string) ([]string, error) {
	members, err := s.redis.SMembers(ctx, s.key(chatRoomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMembershipBackend, err)
	}
	return members, nil
}
