package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	commonConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/errs"
	redisRepo "github.com/Xushengqwer/auth_hub/repository/redis"
)

func newTestLogger(t *testing.T) *core.ZapLogger {
	t.Helper()
	logger, err := core.NewZapLogger(commonConfig.ZapConfig{Level: "error"})
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return logger
}

func newTestLockService(t *testing.T) (*miniredis.Miniredis, DistributedLockService) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.LockConfig{
		TTL:        2 * time.Second,
		MaxRetries: 2,
		RetryDelay: 10 * time.Millisecond,
	}
	return mr, NewDistributedLockService(redisRepo.NewLockRepo(client), cfg, newTestLogger(t))
}

func TestAcquireReleaseAcquire(t *testing.T) {
	_, svc := newTestLockService(t)
	ctx := context.Background()

	lock, err := svc.Acquire(ctx, "bootstrap:superadmin")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if lock.Key != "bootstrap:superadmin" || lock.OwnerToken == "" {
		t.Fatalf("unexpected lock handle: %+v", lock)
	}

	if err := svc.Release(ctx, lock); err != nil {
		t.Fatalf("release: %v", err)
	}

	if _, err := svc.Acquire(ctx, "bootstrap:superadmin"); err != nil {
		t.Fatalf("re-acquire after release: %v", err)
	}
}

func TestAcquireBusyAfterRetries(t *testing.T) {
	_, svc := newTestLockService(t)
	ctx := context.Background()

	if _, err := svc.Acquire(ctx, "resource"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := svc.Acquire(ctx, "resource"); !errors.Is(err, errs.ErrLockBusy) {
		t.Fatalf("expected lock busy, got %v", err)
	}
}

func TestAcquireAfterTTLExpiry(t *testing.T) {
	mr, svc := newTestLockService(t)
	ctx := context.Background()

	if _, err := svc.Acquire(ctx, "resource"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	// 持有者崩溃的场景: 锁随 TTL 自动过期后可被重新获取
	mr.FastForward(3 * time.Second)
	if _, err := svc.Acquire(ctx, "resource"); err != nil {
		t.Fatalf("acquire after TTL expiry: %v", err)
	}
}

func TestConcurrentAcquireSingleWinner(t *testing.T) {
	_, svc := newTestLockService(t)
	ctx := context.Background()

	// 多个竞争者同时抢同一把锁，持有者不释放，只能有一个赢家
	const contenders = 8
	var wg sync.WaitGroup
	var winners int32
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Acquire(ctx, "resource"); err == nil {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", winners)
	}
}

func TestRenewExtendsHold(t *testing.T) {
	mr, svc := newTestLockService(t)
	ctx := context.Background()

	lock, err := svc.Acquire(ctx, "resource")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// 临近过期时续期，TTL 被重置，锁仍然被持有
	mr.FastForward(1 * time.Second)
	if err := svc.Renew(ctx, lock); err != nil {
		t.Fatalf("renew: %v", err)
	}
	mr.FastForward(1500 * time.Millisecond)
	if _, err := svc.Acquire(ctx, "resource"); !errors.Is(err, errs.ErrLockBusy) {
		t.Fatalf("expected lock still held after renew, got %v", err)
	}

	// 锁过期后续期无效
	mr.FastForward(3 * time.Second)
	if err := svc.Renew(ctx, lock); !errors.Is(err, errs.ErrLockBusy) {
		t.Fatalf("expected renew to fail on expired lock, got %v", err)
	}
}

func TestRunExclusive(t *testing.T) {
	_, svc := newTestLockService(t)
	ctx := context.Background()

	executed := false
	err := svc.RunExclusive(ctx, "resource", func(ctx context.Context) error {
		executed = true
		// 临界区内再抢同一把锁必须失败
		if _, acquireErr := svc.Acquire(ctx, "resource"); !errors.Is(acquireErr, errs.ErrLockBusy) {
			t.Fatalf("expected lock busy inside critical section, got %v", acquireErr)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run exclusive: %v", err)
	}
	if !executed {
		t.Fatalf("callback was not executed")
	}

	// 回调结束后锁已释放
	if _, err := svc.Acquire(ctx, "resource"); err != nil {
		t.Fatalf("acquire after RunExclusive: %v", err)
	}
}

func TestRunExclusivePropagatesErrorAndReleases(t *testing.T) {
	_, svc := newTestLockService(t)
	ctx := context.Background()

	wantErr := errors.New("业务失败")
	if err := svc.RunExclusive(ctx, "resource", func(ctx context.Context) error {
		return wantErr
	}); !errors.Is(err, wantErr) {
		t.Fatalf("expected callback error to propagate, got %v", err)
	}

	// 回调失败同样要释放锁
	if _, err := svc.Acquire(ctx, "resource"); err != nil {
		t.Fatalf("acquire after failed callback: %v", err)
	}
}
