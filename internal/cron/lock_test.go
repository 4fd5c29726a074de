package cron

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

const testLockKey = "sf:lock:cron-worker:test"

type memoryLockStore struct {
	data map[string]string
	err  error
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryLockStore) CompareAndDelete(_ context.Context, key, token string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.data[key] != token {
		return false, nil
	}
	delete(m.data, key)
	return true, nil
}

func TestRedisLockIsExclusive(t *testing.T) {
	store := &memoryLockStore{data: map[string]string{}}
	first, _ := NewRedisLock(store, testLockKey, time.Minute)
	second, _ := NewRedisLock(store, testLockKey, time.Minute)
	ctx := context.Background()

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatalf("second acquire should fail while held")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatalf("second acquire should succeed after release")
	}
}

func TestRedisLockReleaseLeavesForeignOwner(t *testing.T) {
	store := &memoryLockStore{data: map[string]string{}}
	lock, _ := NewRedisLock(store, testLockKey, time.Minute)
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatalf("acquire failed")
	}
	store.data[testLockKey] = "someone-else"
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.data[testLockKey] != "someone-else" {
		t.Fatalf("foreign lock must survive release")
	}
}

func TestRedisLockSurfacesStoreErrors(t *testing.T) {
	store := &memoryLockStore{data: map[string]string{}, err: errors.New("redis down")}
	lock, _ := NewRedisLock(store, testLockKey, 0)
	if lock.ttl != defaultLockTTL {
		t.Fatalf("expected default ttl, got %s", lock.ttl)
	}
	if _, err := lock.Acquire(context.Background()); err == nil {
		t.Fatalf("expected acquire error")
	}
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release without holding should be a no-op, got %v", err)
	}
}
