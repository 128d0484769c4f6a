package errs

import "errors"

// 认证领域的业务错误哨兵。
// - 服务层统一返回这些错误，控制器通过 errors.Is 映射为对应的 HTTP 状态码。
// - 基础设施类错误（数据库、Redis 等）仍使用 commonerrors 包的哨兵。
var (
	// ErrConflict 唯一性冲突，如重复注册、重复绑定同一标识符。
	ErrConflict = errors.New("资源冲突，标识符已被占用")

	// ErrUnauthorized 凭证校验失败，如密码错误、验证码错误、刷新令牌无效或已被吊销。
	ErrUnauthorized = errors.New("凭证无效或已失效")

	// ErrForbidden 身份有效但操作被策略拒绝，如用户已停用、重复绑定第三方身份。
	ErrForbidden = errors.New("当前身份不允许执行该操作")

	// ErrRateLimited 请求频率超出限流窗口的上限。
	ErrRateLimited = errors.New("操作过于频繁，请稍后重试")

	// ErrLockBusy 分布式锁在重试耗尽后仍未获取到。
	ErrLockBusy = errors.New("资源正忙，请稍后重试")

	// ErrValidation 输入数据不满足格式或业务约束。
	ErrValidation = errors.New("输入参数无效")
)
