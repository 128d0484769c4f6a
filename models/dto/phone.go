package dto

import "github.com/Xushengqwer/auth_hub/models/enums"

// PhoneLoginOrRegisterData 定义手机号登录或注册的数据传输对象
type PhoneLoginOrRegisterData struct {
	Phone  string     `json:"phone" binding:"required,ChinesePhone"` // 手机号，必填
	Code   string     `json:"code" binding:"required,len=6"`         // 验证码，必填，6位
	Device DeviceInfo `json:"device"`                                // 设备信息，可选
}

// SendCodeRequest 定义发送验证码的请求数据传输对象
type SendCodeRequest struct {
	Phone string `json:"phone" binding:"required,ChinesePhone"` // 手机号，必填且需符合格式
	// 验证码用途（login、register、phone_binding），决定验证码的隔离空间
	Purpose enums.CodePurpose `json:"purpose" binding:"required,CodePurpose"`
}

// CodeStatusQuery 定义查询验证码状态的请求参数
type CodeStatusQuery struct {
	Phone   string            `form:"phone" binding:"required,ChinesePhone"`
	Purpose enums.CodePurpose `form:"purpose" binding:"required,CodePurpose"`
}
