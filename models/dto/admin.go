package dto

import "github.com/Xushengqwer/auth_hub/models/enums"

// UpdateUserStatusDTO 定义管理员变更用户状态的请求结构体
type UpdateUserStatusDTO struct {
	// 目标状态（0=活跃, 1=待验证, 2=已停用）
	Status *enums.UserStatus `json:"status" binding:"required,Status"`
}
