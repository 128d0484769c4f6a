package enums

// CredentialType 凭证类型枚举
type CredentialType uint

const (
	AccountPassword CredentialType = 0 // 账号密码
	Phone           CredentialType = 1 // 手机号（短信验证码）
	Facebook        CredentialType = 2 // Facebook（联合登录）
	// 可扩展其他类型，如 Email、AppleID 等
)
