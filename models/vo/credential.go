package vo

import (
	"time"

	"github.com/Xushengqwer/auth_hub/models/enums"
)

// CredentialVO 定义凭证响应结构体
// - 用于返回凭证信息，不包含凭证内容本身。
type CredentialVO struct {
	// 凭证 ID
	CredentialID uint `json:"credential_id" example:"1"`
	// 用户 ID
	UserID string `json:"user_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	// 凭证类型（0=账号密码, 1=手机号, 2=Facebook）
	CredentialType enums.CredentialType `json:"credential_type" example:"0"`
	// 标识符（如账号、手机号、Facebook 用户 ID）
	Identifier string `json:"identifier" example:"user123"`
	// 创建时间
	CreatedAt time.Time `json:"created_at" example:"2023-01-01T00:00:00Z"`
	// 更新时间
	UpdatedAt time.Time `json:"updated_at" example:"2023-01-01T00:00:00Z"`
}

type CredentialList struct {
	Items []*CredentialVO `json:"items"`
}
