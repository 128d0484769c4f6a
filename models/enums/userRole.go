package enums

// UserRole 用户角色枚举
type UserRole uint

const (
	RoleCustomer UserRole = 0 // 普通客户
	RoleBusiness UserRole = 1 // 商家用户
	RoleAdmin    UserRole = 2 // 管理员
)
