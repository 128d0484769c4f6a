package dto

import "github.com/Xushengqwer/auth_hub/models/enums"

// BindCredentialDTO 定义为已有用户绑定新凭证的请求结构体
type BindCredentialDTO struct {
	// 凭证类型（0=账号密码, 1=手机号, 2=Facebook）
	CredentialType enums.CredentialType `json:"credentialType" binding:"CredentialType"`
	// 标识符（如账号、手机号、Facebook 用户 ID）
	Identifier string `json:"identifier" binding:"required"`
	// 凭证明文（仅账号密码类型需要，存储前哈希）
	Credential string `json:"credential"`
	// 短信验证码（仅绑定手机号时需要，用途为 phone_binding）
	Code string `json:"code"`
}

// UnbindCredentialDTO 定义解绑凭证的请求结构体
type UnbindCredentialDTO struct {
	CredentialType enums.CredentialType `json:"credentialType" binding:"CredentialType"`
}

// CredentialLookup 定义凭证校验所需的最小字段集结构体
// - 登录路径只需要用户 ID 和哈希凭证，避免查询整行。
type CredentialLookup struct {
	UserID     string `gorm:"column:user_id"`    // 用户 ID
	Credential string `gorm:"column:credential"` // 凭证（如密码哈希）
}
