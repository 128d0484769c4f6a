package config

// BootstrapConfig 定义服务启动时超级管理员的初始化参数
type BootstrapConfig struct {
	// SuperAdminAccount 超级管理员账号，留空则跳过初始化
	SuperAdminAccount string `mapstructure:"super_admin_account" yaml:"super_admin_account"`

	// SuperAdminPassword 超级管理员初始密码，仅在账号不存在需要创建时使用
	SuperAdminPassword string `mapstructure:"super_admin_password" yaml:"super_admin_password"`
}
