package vo

import "time"

// SessionVO 定义活跃会话的响应结构体
// - 对应一条未吊销且未过期的刷新令牌记录，不回传令牌值本身。
type SessionVO struct {
	// 会话 ID（刷新令牌记录的主键）
	SessionID uint `json:"session_id" example:"1"`
	// 设备唯一标识
	DeviceID string `json:"device_id" example:"a1b2c3d4"`
	// 设备名称
	DeviceName string `json:"device_name" example:"iPhone 15"`
	// 客户端 UA
	UserAgent string `json:"user_agent" example:"Mozilla/5.0"`
	// 登录时的客户端 IP
	IPAddress string `json:"ip_address" example:"203.0.113.10"`
	// 客户端平台
	Platform string `json:"platform" example:"web"`
	// 会话创建时间
	CreatedAt time.Time `json:"created_at" example:"2023-01-01T00:00:00Z"`
	// 会话过期时间
	ExpiresAt time.Time `json:"expires_at" example:"2023-01-11T00:00:00Z"`
}

type SessionList struct {
	Items []*SessionVO `json:"items"`
}
