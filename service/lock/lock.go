package lock

import (
	"context"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/repository/redis"
)

// DistributedLockService 定义了分布式锁服务的接口。
// 设计目的:
// - 为跨实例的互斥操作（如超级管理员引导、凭证绑定竞态保护）提供统一的加锁入口。
// - 锁仓库只提供单次非阻塞抢锁，排队重试、持有者标识的生成和释放都在本层完成。
// 使用场景:
// - 服务启动时的超级管理员引导，多实例同时启动只允许一个执行。
// - 对同一资源的并发写入需要串行化时。
type DistributedLockService interface {
	// Acquire 尝试获取指定名称的锁，带有限次数的重试。
	// 主要逻辑: 生成随机持有者标识后轮询抢锁，每次失败后等待固定间隔，
	// 重试耗尽仍未拿到锁时返回 errs.ErrLockBusy。
	// 参数:
	//  - ctx: 请求上下文，等待期间 ctx 被取消会立即放弃。
	//  - key: 业务锁名，如 "bootstrap:superadmin"。
	// 返回:
	//  - *Lock: 锁句柄，持有释放和续期所需的持有者标识。
	//  - error: errs.ErrLockBusy（锁被占用）或 commonerrors.ErrSystemError。
	Acquire(ctx context.Context, key string) (*Lock, error)

	// Release 释放锁句柄对应的锁。
	// 只有持有者标识匹配时才会真正删除，释放一把已经易主的锁是安全的空操作。
	Release(ctx context.Context, lock *Lock) error

	// Renew 为仍然持有的锁重置 TTL，用于执行时间可能超过锁有效期的临界区。
	// 返回:
	//  - error: errs.ErrLockBusy（锁已过期或已易主，续期无效）或 commonerrors.ErrSystemError。
	Renew(ctx context.Context, lock *Lock) error

	// RunExclusive 在锁的保护下执行回调函数。
	// 主要逻辑: Acquire 成功后执行 fn，无论 fn 结果如何都保证释放锁。
	// 参数:
	//  - fn: 临界区逻辑，其返回的错误会原样透传给调用方。
	RunExclusive(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Lock 是一次成功加锁的句柄。
// - OwnerToken 是加锁时生成的随机标识，释放和续期都要凭它比对。
type Lock struct {
	Key        string // 业务锁名
	OwnerToken string // 本次加锁的持有者标识
}

// distributedLockService 是 DistributedLockService 接口的实现。
type distributedLockService struct {
	lockRepo redis.LockRepo     // lockRepo: 锁存储仓库。
	cfg      *config.LockConfig // cfg: 锁的 TTL 和重试策略。
	logger   *core.ZapLogger    // logger: 日志记录器。
}

// NewDistributedLockService 创建一个新的 distributedLockService 实例。
func NewDistributedLockService(
	lockRepo redis.LockRepo,
	cfg *config.LockConfig,
	logger *core.ZapLogger,
) DistributedLockService {
	return &distributedLockService{
		lockRepo: lockRepo,
		cfg:      cfg,
		logger:   logger,
	}
}

// Acquire 实现接口方法，带重试地获取锁。
func (s *distributedLockService) Acquire(ctx context.Context, key string) (*Lock, error) {
	const operation = "DistributedLockService.Acquire"

	// 每次加锁生成独立的持有者标识，防止释放时误删他人持有的锁
	ownerToken := uuid.New().String()

	// 首次尝试加上 MaxRetries 次重试
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.RetryDelay):
			}
		}

		acquired, err := s.lockRepo.TryLock(ctx, key, ownerToken, s.cfg.TTL)
		if err != nil {
			s.logger.Error("获取分布式锁失败",
				zap.String("operation", operation),
				zap.String("key", key),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return nil, commonerrors.ErrSystemError
		}
		if acquired {
			s.logger.Info("成功获取分布式锁",
				zap.String("operation", operation),
				zap.String("key", key),
				zap.Int("attempt", attempt),
			)
			return &Lock{Key: key, OwnerToken: ownerToken}, nil
		}
	}

	s.logger.Warn("重试耗尽仍未获取到分布式锁",
		zap.String("operation", operation),
		zap.String("key", key),
		zap.Int("maxRetries", s.cfg.MaxRetries),
	)
	return nil, errs.ErrLockBusy
}

// Release 实现接口方法，释放锁。
func (s *distributedLockService) Release(ctx context.Context, lock *Lock) error {
	const operation = "DistributedLockService.Release"

	released, err := s.lockRepo.Release(ctx, lock.Key, lock.OwnerToken)
	if err != nil {
		s.logger.Error("释放分布式锁失败",
			zap.String("operation", operation),
			zap.String("key", lock.Key),
			zap.Error(err),
		)
		return commonerrors.ErrSystemError
	}
	if !released {
		// 锁已过期被他人抢占，说明临界区执行时间超过了 TTL，值得关注
		s.logger.Warn("释放分布式锁时发现锁已易主或已过期",
			zap.String("operation", operation),
			zap.String("key", lock.Key),
		)
	}
	return nil
}

// Renew 实现接口方法，为持有的锁续期。
func (s *distributedLockService) Renew(ctx context.Context, lock *Lock) error {
	const operation = "DistributedLockService.Renew"

	renewed, err := s.lockRepo.Renew(ctx, lock.Key, lock.OwnerToken, s.cfg.TTL)
	if err != nil {
		s.logger.Error("分布式锁续期失败",
			zap.String("operation", operation),
			zap.String("key", lock.Key),
			zap.Error(err),
		)
		return commonerrors.ErrSystemError
	}
	if !renewed {
		// 锁已过期被他人抢占，临界区不再受保护，调用方应当中止
		s.logger.Warn("分布式锁续期时发现锁已易主或已过期",
			zap.String("operation", operation),
			zap.String("key", lock.Key),
		)
		return errs.ErrLockBusy
	}
	return nil
}

// RunExclusive 实现接口方法，在锁保护下执行回调。
func (s *distributedLockService) RunExclusive(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lock, err := s.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		// 释放失败不覆盖 fn 的返回值，锁最终会随 TTL 自动过期
		_ = s.Release(ctx, lock)
	}()
	return fn(ctx)
}
