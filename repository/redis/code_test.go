package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/Xushengqwer/go-common/commonerrors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Xushengqwer/auth_hub/models/enums"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConsumeCaptchaOnce(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewCodeRepo(client)
	ctx := context.Background()

	if err := repo.SetCaptcha(ctx, enums.PurposeLogin, "13800138000", "123456", 5*time.Minute); err != nil {
		t.Fatalf("set captcha: %v", err)
	}

	if err := repo.ConsumeCaptcha(ctx, enums.PurposeLogin, "13800138000", "123456"); err != nil {
		t.Fatalf("consume captcha: %v", err)
	}

	// 消费成功后验证码立即失效，重复提交同一验证码必须失败
	if err := repo.ConsumeCaptcha(ctx, enums.PurposeLogin, "13800138000", "123456"); !errors.Is(err, commonerrors.ErrRepoNotFound) {
		t.Fatalf("expected not found on second consume, got %v", err)
	}
}

func TestConsumeCaptchaWrongValueKeepsCode(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewCodeRepo(client)
	ctx := context.Background()

	if err := repo.SetCaptcha(ctx, enums.PurposeLogin, "13800138000", "123456", 5*time.Minute); err != nil {
		t.Fatalf("set captcha: %v", err)
	}

	if err := repo.ConsumeCaptcha(ctx, enums.PurposeLogin, "13800138000", "654321"); !errors.Is(err, commonerrors.ErrRepoNotFound) {
		t.Fatalf("expected not found for wrong code, got %v", err)
	}

	// 错误的提交不应消耗正确的验证码
	if err := repo.ConsumeCaptcha(ctx, enums.PurposeLogin, "13800138000", "123456"); err != nil {
		t.Fatalf("correct code should still work after a wrong attempt: %v", err)
	}
}

func TestCaptchaPurposeIsolation(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewCodeRepo(client)
	ctx := context.Background()

	if err := repo.SetCaptcha(ctx, enums.PurposeLogin, "13800138000", "123456", 5*time.Minute); err != nil {
		t.Fatalf("set captcha: %v", err)
	}

	// 登录验证码不能用于手机绑定
	if err := repo.ConsumeCaptcha(ctx, enums.PurposePhoneBinding, "13800138000", "123456"); !errors.Is(err, commonerrors.ErrRepoNotFound) {
		t.Fatalf("expected purpose isolation, got %v", err)
	}
}

func TestGetCaptchaStatus(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewCodeRepo(client)
	ctx := context.Background()

	exists, ttl, err := repo.GetCaptchaStatus(ctx, enums.PurposeRegister, "13800138000")
	if err != nil {
		t.Fatalf("status of missing captcha: %v", err)
	}
	if exists || ttl != 0 {
		t.Fatalf("expected missing captcha, got exists=%v ttl=%v", exists, ttl)
	}

	if err := repo.SetCaptcha(ctx, enums.PurposeRegister, "13800138000", "123456", 5*time.Minute); err != nil {
		t.Fatalf("set captcha: %v", err)
	}
	exists, ttl, err = repo.GetCaptchaStatus(ctx, enums.PurposeRegister, "13800138000")
	if err != nil {
		t.Fatalf("status of existing captcha: %v", err)
	}
	if !exists || ttl <= 0 || ttl > 5*time.Minute {
		t.Fatalf("unexpected status: exists=%v ttl=%v", exists, ttl)
	}

	// 模拟时间流逝让验证码过期
	mr.FastForward(6 * time.Minute)
	exists, _, err = repo.GetCaptchaStatus(ctx, enums.PurposeRegister, "13800138000")
	if err != nil {
		t.Fatalf("status after expiry: %v", err)
	}
	if exists {
		t.Fatalf("captcha should have expired")
	}
}

func TestDeleteCaptcha(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewCodeRepo(client)
	ctx := context.Background()

	if err := repo.SetCaptcha(ctx, enums.PurposeLogin, "13800138000", "123456", 5*time.Minute); err != nil {
		t.Fatalf("set captcha: %v", err)
	}
	if err := repo.DeleteCaptcha(ctx, enums.PurposeLogin, "13800138000"); err != nil {
		t.Fatalf("delete captcha: %v", err)
	}
	if err := repo.ConsumeCaptcha(ctx, enums.PurposeLogin, "13800138000", "123456"); !errors.Is(err, commonerrors.ErrRepoNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	// 删除不存在的验证码是幂等的
	if err := repo.DeleteCaptcha(ctx, enums.PurposeLogin, "13800138000"); err != nil {
		t.Fatalf("delete of missing captcha should be a no-op: %v", err)
	}
}
