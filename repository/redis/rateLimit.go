package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitRepo 定义了基于 Redis 的固定窗口计数器存储操作接口。
// - 每个键是一个独立的计数窗口，首次计数时设置窗口过期时间。
// - 限流判定（计数值与阈值比较）放在限流服务层，这里只负责计数。
type RateLimitRepo interface {
	// Increment 将指定键的计数加一，并返回加一后的计数值。
	// - 当本次加一让计数从无到有（返回值为 1）时，为键设置 window 的过期时间，
	//   窗口到期后计数自动清零。
	Increment(ctx context.Context, key string, window time.Duration) (count int64, err error)

	// Clear 删除指定键的计数。
	// - 登录成功后清空该账号的失败计数时使用，对不存在的键是幂等的。
	Clear(ctx context.Context, key string) error

	// Current 查询指定键的当前计数值。
	// - 键不存在时返回 0，不视为错误。
	Current(ctx context.Context, key string) (int64, error)
}

// rateLimitRepo 是 RateLimitRepo 接口基于 go-redis/v9 的实现。
type rateLimitRepo struct {
	client *redis.Client // client 是 Redis v9 客户端实例
}

// NewRateLimitRepo 创建一个新的 rateLimitRepo 实例。
// - 依赖注入 Redis v9 客户端。
func NewRateLimitRepo(client *redis.Client) RateLimitRepo {
	return &rateLimitRepo{client: client}
}

// Increment 实现接口方法，固定窗口计数加一。
func (r *rateLimitRepo) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("rateLimitRepo.Increment: 计数自增失败 (Key: %s): %w", key, err)
	}
	// 返回 1 说明本次 INCR 创建了键，由本次调用负责设置窗口过期时间。
	// INCR 和 EXPIRE 之间进程崩溃会留下一个不过期的计数键，窗口退化为永久，
	// 只会让限流偏严不会放水，可接受。
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("rateLimitRepo.Increment: 设置计数窗口过期时间失败 (Key: %s): %w", key, err)
		}
	}
	return count, nil
}

// Clear 实现接口方法，删除计数键。
func (r *rateLimitRepo) Clear(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("rateLimitRepo.Clear: 清除计数失败 (Key: %s): %w", key, err)
	}
	return nil
}

// Current 实现接口方法，查询当前计数值。
func (r *rateLimitRepo) Current(ctx context.Context, key string) (int64, error) {
	val, err := r.client.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("rateLimitRepo.Current: 查询计数失败 (Key: %s): %w", key, err)
	}
	return val, nil
}
