package constants

const (
	// Redis 键前缀

	// CaptchaKeyPrefix 验证码键前缀，完整键形如 "captcha:login:13800001111"
	CaptchaKeyPrefix = "captcha"

	// LockKeyPrefix 分布式锁键前缀，完整键形如 "lock:bootstrap:superadmin"
	LockKeyPrefix = "lock"

	// LoginAttemptsKeyPrefix 登录限流键前缀，完整键形如 "login_attempts:user123"
	LoginAttemptsKeyPrefix = "login_attempts"

	// SendCodeAttemptsKeyPrefix 发送验证码限流键前缀
	SendCodeAttemptsKeyPrefix = "send_code_attempts"
)

const (
	// ClaimsContextKey 认证中间件解析出的令牌声明在 gin.Context 中的键名
	ClaimsContextKey = "auth_claims"
)

const (
	// SuperAdminBootstrapLockKey 超级管理员初始化使用的锁键
	SuperAdminBootstrapLockKey = "bootstrap:superadmin"
)
