package ratelimit

import (
	"context"
	"errors"
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

func newTestRateLimitService(t *testing.T) (*miniredis.Miniredis, RateLimitService) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.RateLimitConfig{
		LoginWindow:         15 * time.Minute,
		LoginMaxAttempts:    3,
		SendCodeWindow:      time.Minute,
		SendCodeMaxAttempts: 1,
	}
	return mr, NewRateLimitService(redisRepo.NewRateLimitRepo(client), cfg, newTestLogger(t))
}

func TestLoginAttemptLimitByIdentifier(t *testing.T) {
	_, svc := newTestRateLimitService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := svc.CheckLoginAttempt(ctx, "user-a", ""); err != nil {
			t.Fatalf("attempt %d should pass: %v", i+1, err)
		}
	}
	if err := svc.CheckLoginAttempt(ctx, "user-a", ""); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("expected rate limited on 4th attempt, got %v", err)
	}

	// 不同标识符互不影响
	if err := svc.CheckLoginAttempt(ctx, "user-b", ""); err != nil {
		t.Fatalf("other identifier should not be limited: %v", err)
	}
}

func TestLoginAttemptLimitByIP(t *testing.T) {
	_, svc := newTestRateLimitService(t)
	ctx := context.Background()

	// 同一 IP 扫描不同账号，IP 维度计数照样累积
	for i := 0; i < 3; i++ {
		account := string(rune('a' + i))
		if err := svc.CheckLoginAttempt(ctx, "scan-"+account, "203.0.113.9"); err != nil {
			t.Fatalf("attempt %d should pass: %v", i+1, err)
		}
	}
	if err := svc.CheckLoginAttempt(ctx, "scan-x", "203.0.113.9"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("expected IP-dimension rate limit, got %v", err)
	}
}

func TestClearLoginAttempts(t *testing.T) {
	_, svc := newTestRateLimitService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := svc.CheckLoginAttempt(ctx, "user-a", "203.0.113.9"); err != nil {
			t.Fatalf("attempt %d should pass: %v", i+1, err)
		}
	}
	if err := svc.ClearLoginAttempts(ctx, "user-a", "203.0.113.9"); err != nil {
		t.Fatalf("clear attempts: %v", err)
	}

	// 清空后配额重新计算
	if err := svc.CheckLoginAttempt(ctx, "user-a", "203.0.113.9"); err != nil {
		t.Fatalf("attempt after clear should pass: %v", err)
	}
}

func TestLoginAttemptWindowExpiry(t *testing.T) {
	mr, svc := newTestRateLimitService(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_ = svc.CheckLoginAttempt(ctx, "user-a", "")
	}
	if err := svc.CheckLoginAttempt(ctx, "user-a", ""); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}

	// 窗口到期后计数归零
	mr.FastForward(16 * time.Minute)
	if err := svc.CheckLoginAttempt(ctx, "user-a", ""); err != nil {
		t.Fatalf("attempt after window expiry should pass: %v", err)
	}
}

func TestSendCodeAttemptLimit(t *testing.T) {
	mr, svc := newTestRateLimitService(t)
	ctx := context.Background()

	if err := svc.CheckSendCodeAttempt(ctx, "13800138000"); err != nil {
		t.Fatalf("first send should pass: %v", err)
	}
	if err := svc.CheckSendCodeAttempt(ctx, "13800138000"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("expected rate limited on second send, got %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if err := svc.CheckSendCodeAttempt(ctx, "13800138000"); err != nil {
		t.Fatalf("send after window expiry should pass: %v", err)
	}
}
