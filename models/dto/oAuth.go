package dto

// FacebookLoginData 定义 DTO 结构体，用于接收 Facebook 授权数据
type FacebookLoginData struct {
	// AccessToken 客户端通过 Facebook SDK 登录后获取的访问令牌
	// - 必填，后端调用 Graph API 验证并换取用户的 Facebook ID
	AccessToken string `json:"accessToken" binding:"required"`

	Device DeviceInfo `json:"device"` // 设备信息，可选
}

// FacebookBindData 定义已登录用户绑定 Facebook 身份的请求体
type FacebookBindData struct {
	AccessToken string `json:"accessToken" binding:"required"`
}
