package goChat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goChat/lock"
)

// roomLockKey scopes mutual exclusion to a single room. Operations on
// different rooms never contend.
func roomLockKey(chatRoomID string) string {
	return "chatroom:" + chatRoomID
}

// JoinRoom adds the user to the room's member set under the room lock.
// Joining a room the user is already in is idempotent: no duplicate, no
// error. If the lock cannot be acquired within Membership.LockWait the
// operation fails with [ErrRoomBusy] and may be retried.
func (e *Engine) JoinRoom(ctx context.Context, cmd JoinCommand) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if cmd.ChatRoomID == "" || cmd.UserID == "" {
		return ErrInvalidCommand
	}

	err := e.withRoomLock(ctx, cmd.ChatRoomID, func(ctx context.Context) error {
		member, err := e.members.IsMember(ctx, cmd.ChatRoomID, cmd.UserID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMembershipUnavailable, err)
		}
		if member {
			return nil
		}
		if err := e.members.Add(ctx, cmd.ChatRoomID, cmd.UserID); err != nil {
			return fmt.Errorf("%w: %v", ErrMembershipUnavailable, err)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrRoomBusy) {
			e.metricInc(MetricRoomBusy)
			e.emitAudit(ctx, auditEventRoomBusy, false, cmd.UserID, cmd.ChatRoomID, "", err, func() map[string]string {
				return map[string]string{"operation": "join"}
			})
		} else {
			e.emitAudit(ctx, auditEventRoomJoin, false, cmd.UserID, cmd.ChatRoomID, "", err, nil)
		}
		return err
	}

	e.metricInc(MetricRoomJoin)
	e.emitAudit(ctx, auditEventRoomJoin, true, cmd.UserID, cmd.ChatRoomID, "", nil, nil)
	return nil
}

// LeaveRoom removes the user from the room's member set under the room lock.
// Leaving a room the user is not in is idempotent.
func (e *Engine) LeaveRoom(ctx context.Context, cmd LeaveCommand) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if cmd.ChatRoomID == "" || cmd.UserID == "" {
		return ErrInvalidCommand
	}

	err := e.withRoomLock(ctx, cmd.ChatRoomID, func(ctx context.Context) error {
		if err := e.members.Remove(ctx, cmd.ChatRoomID, cmd.UserID); err != nil {
			return fmt.Errorf("%w: %v", ErrMembershipUnavailable, err)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrRoomBusy) {
			e.metricInc(MetricRoomBusy)
			e.emitAudit(ctx, auditEventRoomBusy, false, cmd.UserID, cmd.ChatRoomID, "", err, func() map[string]string {
				return map[string]string{"operation": "leave"}
			})
		} else {
			e.emitAudit(ctx, auditEventRoomLeave, false, cmd.UserID, cmd.ChatRoomID, "", err, nil)
		}
		return err
	}

	e.metricInc(MetricRoomLeave)
	e.emitAudit(ctx, auditEventRoomLeave, true, cmd.UserID, cmd.ChatRoomID, "", nil, nil)
	return nil
}

// RoomMembers returns the room's current member set. Reads take no lock;
// they observe whatever the last linearized mutation committed.
func (e *Engine) RoomMembers(ctx context.Context, chatRoomID string) ([]string, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if chatRoomID == "" {
		return nil, ErrInvalidCommand
	}

	members, err := e.members.Members(ctx, chatRoomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMembershipUnavailable, err)
	}
	return members, nil
}

// withRoomLock runs fn while holding the room lock. Release happens on every
// exit path, including fn failure and caller cancellation; passive lease
// expiry remains the backstop if this process dies mid-write.
func (e *Engine) withRoomLock(ctx context.Context, chatRoomID string, fn func(ctx context.Context) error) error {
	waitCtx, cancel := context.WithTimeout(ctx, e.config.Membership.LockWait)
	defer cancel()

	start := time.Now()
	tok, err := e.locks.Acquire(waitCtx, []string{roomLockKey(chatRoomID)}, e.config.Membership.LockLease)
	e.metricObserve(MetricLockWaitLatency, time.Since(start))
	if err != nil {
		if errors.Is(err, lock.ErrAcquireTimeout) || errors.Is(err, lock.ErrNotAcquired) {
			return fmt.Errorf("%w: %v", ErrRoomBusy, err)
		}
		return err
	}
	e.metricInc(MetricLockAcquired)

	defer func() {
		// The caller's context may already be done; release must not be
		// skipped because of it.
		released, _ := e.locks.Release(context.WithoutCancel(ctx), tok)
		if released {
			e.metricInc(MetricLockReleased)
		}
	}()

	return fn(ctx)
}
