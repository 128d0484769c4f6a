package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Xushengqwer/auth_hub/constants"
)

// releaseLockScript 原子化地完成“比对持有者并删除”。
// - 只有锁的当前值与调用方持有的 ownerToken 一致时才删除，返回 1。
// - 不一致（锁已过期被他人抢占）时不做任何修改，返回 0，避免误删他人的锁。
var releaseLockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// renewLockScript 原子化地完成“比对持有者并续期”。
// - 只有锁仍由调用方持有时才重置 TTL，返回 1。
var renewLockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("pexpire", KEYS[1], ARGV[2])
else
    return 0
end
`)

// LockRepo 定义了基于 Redis 的分布式锁存储操作接口。
// - 锁的值是每次加锁生成的随机持有者标识，释放和续期都要先比对持有者。
// - 单次 TryLock 不重试，排队重试的策略放在锁服务层。
type LockRepo interface {
	// TryLock 尝试获取一把锁，非阻塞。
	// - key 是业务锁名，ownerToken 是本次加锁的持有者标识，ttl 是锁的自动过期时间。
	// - 返回 acquired 表示是否拿到锁；锁被他人持有时返回 false 且 err 为 nil。
	TryLock(ctx context.Context, key string, ownerToken string, ttl time.Duration) (acquired bool, err error)

	// Release 释放锁。
	// - 只有持有者标识匹配时才真正删除键，返回 released 表示本次调用是否删除了锁。
	// - 锁已过期或已被他人持有时返回 false 且 err 为 nil，释放是幂等的。
	Release(ctx context.Context, key string, ownerToken string) (released bool, err error)

	// Renew 为仍然持有的锁续期。
	// - 持有者标识不匹配时返回 false 且 err 为 nil，说明锁已丢失，调用方应停止临界区操作。
	Renew(ctx context.Context, key string, ownerToken string, ttl time.Duration) (renewed bool, err error)
}

// lockRepo 是 LockRepo 接口基于 go-redis/v9 的实现。
type lockRepo struct {
	client *redis.Client // client 是 Redis v9 客户端实例
}

// NewLockRepo 创建一个新的 lockRepo 实例。
// - 依赖注入 Redis v9 客户端。
func NewLockRepo(client *redis.Client) LockRepo {
	return &lockRepo{client: client}
}

// buildKey 根据业务锁名生成用于 Redis 操作的键名。
// - 格式: lock:{key}。
func (r *lockRepo) buildKey(key string) string {
	return fmt.Sprintf("%s:%s", constants.LockKeyPrefix, key)
}

// TryLock 实现接口方法，通过 SET NX 抢锁。
func (r *lockRepo) TryLock(ctx context.Context, key string, ownerToken string, ttl time.Duration) (bool, error) {
	redisKey := r.buildKey(key)
	// SET key value NX PX ttl，键已存在时返回 false
	acquired, err := r.client.SetNX(ctx, redisKey, ownerToken, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lockRepo.TryLock: 获取锁失败 (Key: %s): %w", key, err)
	}
	return acquired, nil
}

// Release 实现接口方法，比对持有者后删除锁。
func (r *lockRepo) Release(ctx context.Context, key string, ownerToken string) (bool, error) {
	redisKey := r.buildKey(key)
	result, err := releaseLockScript.Run(ctx, r.client, []string{redisKey}, ownerToken).Int64()
	if err != nil {
		return false, fmt.Errorf("lockRepo.Release: 释放锁失败 (Key: %s): %w", key, err)
	}
	return result == 1, nil
}

// Renew 实现接口方法，比对持有者后重置 TTL。
func (r *lockRepo) Renew(ctx context.Context, key string, ownerToken string, ttl time.Duration) (bool, error) {
	redisKey := r.buildKey(key)
	result, err := renewLockScript.Run(ctx, r.client, []string{redisKey}, ownerToken, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("lockRepo.Renew: 锁续期失败 (Key: %s): %w", key, err)
	}
	return result == 1, nil
}
