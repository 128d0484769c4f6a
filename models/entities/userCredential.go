package entities

import (
	"time"

	"github.com/Xushengqwer/auth_hub/models/enums"
)

// UserCredential 用户登录凭证
// - 每个用户同一类型的凭证至多一条，(credential_type, identifier) 全局唯一。
type UserCredential struct {
	// 自增主键
	CredentialID uint `gorm:"primary_key;auto_increment"`

	// 关联 User 表的 UserID，外键
	UserID string `gorm:"type:char(36);not null;index;foreignKey:UserID;references:user_id;constraint:OnDelete:CASCADE"`

	// 凭证类型（0=账号密码, 1=手机号, 2=Facebook）
	CredentialType enums.CredentialType `gorm:"type:int;not null;uniqueIndex:idx_type_identifier"`

	// 标识符，如账号、手机号、Facebook 用户 ID，与类型组成唯一索引
	Identifier string `gorm:"type:varchar(255);not null;uniqueIndex:idx_type_identifier"`

	// 凭证，如密码（哈希）。手机号和第三方身份无本地凭证，存空字符串
	Credential string `gorm:"type:varchar(255)"`

	// 创建时间，默认当前时间戳
	CreatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`

	// 更新时间，默认当前时间戳，自动更新
	UpdatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;autoUpdateTime"`
}
