package enums

// UserStatus 用户状态枚举
type UserStatus uint

const (
	StatusActive              UserStatus = 0 // 活跃，允许登录和刷新令牌
	StatusPendingVerification UserStatus = 1 // 待验证，注册后尚未完成验证
	StatusInactive            UserStatus = 2 // 已停用，禁止一切认证操作
)
