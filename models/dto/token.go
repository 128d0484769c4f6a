package dto

// RefreshTokenRequest 定义刷新令牌的请求体
// - Web 平台的刷新令牌从 Cookie 读取，非 Web 平台从此请求体读取。
type RefreshTokenRequest struct {
	RefreshToken string     `json:"refresh_token"`
	Device       DeviceInfo `json:"device"` // 设备信息，可选
}

// LogoutRequest 定义退出登录的请求体
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}
