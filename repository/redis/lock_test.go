package redis

import (
	"context"
	"testing"
	"time"
)

func TestTryLockMutualExclusion(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewLockRepo(client)
	ctx := context.Background()

	acquired, err := repo.TryLock(ctx, "bootstrap:superadmin", "owner-a", 10*time.Second)
	if err != nil {
		t.Fatalf("first trylock: %v", err)
	}
	if !acquired {
		t.Fatalf("first trylock should succeed")
	}

	acquired, err = repo.TryLock(ctx, "bootstrap:superadmin", "owner-b", 10*time.Second)
	if err != nil {
		t.Fatalf("second trylock: %v", err)
	}
	if acquired {
		t.Fatalf("second trylock should fail while the lock is held")
	}
}

func TestReleaseChecksOwner(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewLockRepo(client)
	ctx := context.Background()

	if _, err := repo.TryLock(ctx, "resource", "owner-a", 10*time.Second); err != nil {
		t.Fatalf("trylock: %v", err)
	}

	// 非持有者释放不应删除锁
	released, err := repo.Release(ctx, "resource", "owner-b")
	if err != nil {
		t.Fatalf("release by wrong owner: %v", err)
	}
	if released {
		t.Fatalf("wrong owner must not release the lock")
	}

	released, err = repo.Release(ctx, "resource", "owner-a")
	if err != nil {
		t.Fatalf("release by owner: %v", err)
	}
	if !released {
		t.Fatalf("owner release should succeed")
	}

	// 释放后锁可以被重新获取
	acquired, err := repo.TryLock(ctx, "resource", "owner-b", 10*time.Second)
	if err != nil {
		t.Fatalf("re-acquire: %v", err)
	}
	if !acquired {
		t.Fatalf("lock should be free after release")
	}
}

func TestLockExpiresAndRenew(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewLockRepo(client)
	ctx := context.Background()

	if _, err := repo.TryLock(ctx, "resource", "owner-a", 2*time.Second); err != nil {
		t.Fatalf("trylock: %v", err)
	}

	renewed, err := repo.Renew(ctx, "resource", "owner-a", 10*time.Second)
	if err != nil {
		t.Fatalf("renew: %v", err)
	}
	if !renewed {
		t.Fatalf("owner renew should succeed")
	}

	renewed, err = repo.Renew(ctx, "resource", "owner-b", 10*time.Second)
	if err != nil {
		t.Fatalf("renew by wrong owner: %v", err)
	}
	if renewed {
		t.Fatalf("wrong owner must not renew the lock")
	}

	// TTL 到期后锁自动释放
	mr.FastForward(11 * time.Second)
	acquired, err := repo.TryLock(ctx, "resource", "owner-c", 10*time.Second)
	if err != nil {
		t.Fatalf("trylock after expiry: %v", err)
	}
	if !acquired {
		t.Fatalf("lock should be acquirable after TTL expiry")
	}
}
