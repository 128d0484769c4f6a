package dto

type AccountRegisterData struct {
	Account         string `json:"account" binding:"required,Account"`   // 使用 "Account" 校验器
	Password        string `json:"password" binding:"required,Password"` // 使用 "Password" 校验器
	ConfirmPassword string `json:"confirmPassword" binding:"required"`   // 密码一致性在服务层校验
}

type AccountLoginData struct {
	Account  string     `json:"account" binding:"required"`  // 用户账号
	Password string     `json:"password" binding:"required"` // 密码
	Device   DeviceInfo `json:"device"`                      // 设备信息，可选
}
