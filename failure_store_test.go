package goChat

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFailureStoreFindAbsentKeyIsZero(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	store := newFailureCounterStore(rdb, "lf")

	record, err := store.FindByKey(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("FindByKey failed: %v", err)
	}
	if record.Key != "alice@example.com" || record.Count != 0 {
		t.Fatalf("expected zero record, got %+v", record)
	}
}

func TestFailureStoreSaveAndFind(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	store := newFailureCounterStore(rdb, "lf")
	ctx := context.Background()

	saved, err := store.Save(ctx, FailureRecord{Key: "alice@example.com", Count: 3}, time.Minute)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.Count != 3 {
		t.Fatalf("unexpected saved record %+v", saved)
	}

	record, err := store.FindByKey(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByKey failed: %v", err)
	}
	if record.Count != 3 {
		t.Fatalf("expected count 3, got %+v", record)
	}

	// Keys are namespaced under the configured prefix.
	if !mr.Exists("lf:alice@example.com") {
		t.Fatal("expected prefixed key in store")
	}
}

func TestFailureStoreSaveClampsNegativeCount(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	store := newFailureCounterStore(rdb, "lf")

	saved, err := store.Save(context.Background(), FailureRecord{Key: "k", Count: -5}, time.Minute)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.Count != 0 {
		t.Fatalf("expected negative count clamped to 0, got %d", saved.Count)
	}
}

func TestFailureStoreTTLLapse(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	store := newFailureCounterStore(rdb, "lf")
	ctx := context.Background()

	if _, err := store.Save(ctx, FailureRecord{Key: "k", Count: 4}, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	record, err := store.FindByKey(ctx, "k")
	if err != nil {
		t.Fatalf("FindByKey failed: %v", err)
	}
	if record.Count != 0 {
		t.Fatalf("expected TTL lapse to read as zero, got %+v", record)
	}
}

func TestFailureStoreDeleteByKey(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	store := newFailureCounterStore(rdb, "lf")
	ctx := context.Background()

	if _, err := store.Save(ctx, FailureRecord{Key: "k", Count: 2}, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.DeleteByKey(ctx, "k"); err != nil {
		t.Fatalf("DeleteByKey failed: %v", err)
	}

	record, err := store.FindByKey(ctx, "k")
	if err != nil {
		t.Fatalf("FindByKey failed: %v", err)
	}
	if record.Count != 0 {
		t.Fatalf("expected zero after delete, got %+v", record)
	}

	// Deleting an absent key is a no-op.
	if err := store.DeleteByKey(ctx, "never-seen"); err != nil {
		t.Fatalf("deleting absent key failed: %v", err)
	}
}

func TestFailureStoreIncrementFixedWindow(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	store := newFailureCounterStore(rdb, "lf")
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := store.Increment(ctx, "ip:203.0.113.9", time.Minute)
		if err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
		if count != want {
			t.Fatalf("expected count %d, got %d", want, count)
		}
	}

	// Fixed window: later hits do not extend the TTL set by the first.
	mr.FastForward(61 * time.Second)

	count, err := store.Increment(ctx, "ip:203.0.113.9", time.Minute)
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a fresh window to restart at 1, got %d", count)
	}
}

func TestFailureStoreBackendDown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	store := newFailureCounterStore(rdb, "lf")
	mr.Close()
	ctx := context.Background()

	if _, err := store.FindByKey(ctx, "k"); !errors.Is(err, errFailureBackend) {
		t.Fatalf("expected errFailureBackend, got %v", err)
	}
	if _, err := store.Save(ctx, FailureRecord{Key: "k", Count: 1}, time.Minute); !errors.Is(err, errFailureBackend) {
		t.Fatalf("expected errFailureBackend, got %v", err)
	}
	if _, err := store.Increment(ctx, "k", time.Minute); !errors.Is(err, errFailureBackend) {
		t.Fatalf("expected errFailureBackend, got %v", err)
	}
}
