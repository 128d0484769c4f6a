package dto

// DeviceInfo 客户端上报的设备信息
// - 随登录/刷新请求附带，写入刷新令牌记录，便于用户识别和吊销会话。
// - 所有字段均可选，IP 地址由服务端从请求中提取后补充。
type DeviceInfo struct {
	DeviceID   string `json:"deviceID"`   // 设备唯一标识
	DeviceName string `json:"deviceName"` // 设备名称，如 "iPhone 15"
	UserAgent  string `json:"userAgent"`  // 客户端 UA
	IPAddress  string `json:"-"`          // 客户端 IP，服务端填充
}
