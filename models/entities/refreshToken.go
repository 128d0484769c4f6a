package entities

import (
	"time"
)

// RefreshToken 刷新令牌记录
// - 令牌本身是不透明随机串，数据库中的行是其唯一的事实来源。
// - Revoked 只会从 false 变为 true，吊销是单向的。
type RefreshToken struct {
	// 自增主键
	ID uint `gorm:"primary_key;auto_increment"`

	// 令牌值，随机生成，全局唯一
	Token string `gorm:"type:varchar(64);not null;uniqueIndex"`

	// 关联 User 表的 UserID
	UserID string `gorm:"type:char(36);not null;index"`

	// 设备信息，登录时由客户端上报
	DeviceID   string `gorm:"type:varchar(128)"`
	DeviceName string `gorm:"type:varchar(128)"`
	UserAgent  string `gorm:"type:varchar(255)"`
	IPAddress  string `gorm:"type:varchar(45)"`

	// 签发时使用的客户端平台，如 web、app
	Platform string `gorm:"type:varchar(16)"`

	// 过期时间，超过该时间的令牌不可再用于刷新
	ExpiresAt time.Time `gorm:"type:timestamp;not null;index"`

	// 是否已吊销（轮换、登出或安全策略触发）
	Revoked bool `gorm:"not null;default:0"`

	// 吊销时间，未吊销时为 NULL
	RevokedAt *time.Time `gorm:"type:timestamp"`

	// 创建时间，默认当前时间戳
	CreatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`

	// 更新时间，默认当前时间戳，自动更新
	UpdatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;autoUpdateTime"`
}
