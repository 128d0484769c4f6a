package redis

import (
	"context"
	"errors"
	"fmt" // 引入 fmt 包用于错误包装
	"time"

	// 使用 go-redis/v9
	"github.com/redis/go-redis/v9"
	// 引入你的公共错误包
	"github.com/Xushengqwer/go-common/commonerrors"

	"github.com/Xushengqwer/auth_hub/constants"
	"github.com/Xushengqwer/auth_hub/models/enums"
)

// consumeCaptchaScript 原子化地完成“比对并删除”。
// - 只有在存储的验证码与提交值完全一致时才删除键，返回 1。
// - 值不匹配或键不存在时不做任何修改，返回 0。
// - GET 和 DEL 拆成两条命令会留出并发窗口，同一个验证码可能被使用两次。
var consumeCaptchaScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    redis.call("del", KEYS[1])
    return 1
else
    return 0
end
`)

// CodeRepo 定义了与 Redis 中存储验证码相关的操作接口。
// - 它封装了 Redis 的具体命令，提供标准化的验证码管理方法。
// - 验证码按 (用途, 标识符) 维度隔离，登录用的验证码不能拿去做手机绑定。
type CodeRepo interface {
	// SetCaptcha 在 Redis 中设置验证码，并指定其有效时间。
	// - 接收应用上下文、验证码用途、标识符（手机号）、验证码本身以及过期时长。
	// - 重复发送会直接覆盖旧值并重置 TTL。
	// - 如果 Redis 操作失败，则返回包装后的错误。
	SetCaptcha(ctx context.Context, purpose enums.CodePurpose, identifier string, captcha string, expire time.Duration) error

	// ConsumeCaptcha 原子化地校验并消费验证码。
	// - 只有提交值与存储值一致时才算消费成功，成功后键立即删除，验证码一次有效。
	// - 值不匹配或验证码不存在（已过期/已消费）时返回 commonerrors.ErrRepoNotFound。
	ConsumeCaptcha(ctx context.Context, purpose enums.CodePurpose, identifier string, captcha string) error

	// GetCaptchaStatus 查询验证码是否存在及其剩余有效时间。
	// - 不返回验证码本身，只暴露存在性和 TTL，供客户端展示倒计时。
	// - 验证码不存在时 exists 为 false 且 ttl 为 0，不视为错误。
	GetCaptchaStatus(ctx context.Context, purpose enums.CodePurpose, identifier string) (exists bool, ttl time.Duration, err error)

	// DeleteCaptcha 从 Redis 中删除指定的验证码。
	// - 管理场景下强制作废验证码时使用。
	// - 如果 Redis 操作失败，则返回包装后的错误。
	DeleteCaptcha(ctx context.Context, purpose enums.CodePurpose, identifier string) error
}

// codeRepo 是 CodeRepo 接口基于 go-redis/v9 的实现。
type codeRepo struct {
	client *redis.Client // client 是 Redis v9 客户端实例
}

// NewCodeRepo 创建一个新的 codeRepo 实例。
// - 依赖注入 Redis v9 客户端。
func NewCodeRepo(client *redis.Client) CodeRepo {
	return &codeRepo{client: client}
}

// buildKey 根据用途和标识符生成用于 Redis 操作的键名。
// - 格式: captcha:{purpose}:{identifier}，用途写进键名实现维度隔离。
func (r *codeRepo) buildKey(purpose enums.CodePurpose, identifier string) string {
	return fmt.Sprintf("%s:%s:%s", constants.CaptchaKeyPrefix, purpose, identifier)
}

// SetCaptcha 实现接口方法，在 Redis 中存储验证码。
func (r *codeRepo) SetCaptcha(ctx context.Context, purpose enums.CodePurpose, identifier string, captcha string, expire time.Duration) error {
	key := r.buildKey(purpose, identifier)
	// 执行 Redis SET 命令，带过期时间 (EX)
	if err := r.client.Set(ctx, key, captcha, expire).Err(); err != nil {
		// 包装 Redis SET 操作错误，添加中文上下文
		return fmt.Errorf("codeRepo.SetCaptcha: 设置验证码失败 (用途: %s, 标识符: %s): %w", purpose, identifier, err)
	}
	// 操作成功，返回 nil
	return nil
}

// ConsumeCaptcha 实现接口方法，原子化校验并消费验证码。
func (r *codeRepo) ConsumeCaptcha(ctx context.Context, purpose enums.CodePurpose, identifier string, captcha string) error {
	key := r.buildKey(purpose, identifier)
	// 通过 Lua 脚本执行比对和删除，整个过程在 Redis 端原子完成
	result, err := consumeCaptchaScript.Run(ctx, r.client, []string{key}, captcha).Int64()
	if err != nil {
		return fmt.Errorf("codeRepo.ConsumeCaptcha: 消费验证码失败 (用途: %s, 标识符: %s): %w", purpose, identifier, err)
	}
	if result == 0 {
		// 值不匹配和键不存在对调用方是同一种结果，统一返回未找到
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

// GetCaptchaStatus 实现接口方法，查询验证码的存在性和剩余 TTL。
func (r *codeRepo) GetCaptchaStatus(ctx context.Context, purpose enums.CodePurpose, identifier string) (bool, time.Duration, error) {
	key := r.buildKey(purpose, identifier)
	// TTL 命令同时回答了两个问题: 键是否存在 (-2 表示不存在)，以及剩余有效期
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("codeRepo.GetCaptchaStatus: 查询验证码状态失败 (用途: %s, 标识符: %s): %w", purpose, identifier, err)
	}
	// go-redis 将 "键不存在" 表示为 -2ns，"键存在但无过期时间" 表示为 -1ns
	if ttl < 0 {
		return false, 0, nil
	}
	return true, ttl, nil
}

// DeleteCaptcha 实现接口方法，从 Redis 中删除验证码。
func (r *codeRepo) DeleteCaptcha(ctx context.Context, purpose enums.CodePurpose, identifier string) error {
	key := r.buildKey(purpose, identifier)
	// 执行 Redis DEL 命令
	// 即使 key 不存在，DEL 也会成功返回，主要捕获连接错误等非 Nil 错误
	if err := r.client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("codeRepo.DeleteCaptcha: 删除验证码失败 (用途: %s, 标识符: %s): %w", purpose, identifier, err)
	}
	// 操作成功（或 key 本就不存在），返回 nil
	return nil
}
