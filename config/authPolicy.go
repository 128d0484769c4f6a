package config

// AuthPolicyConfig 定义会话生命周期的策略开关
type AuthPolicyConfig struct {
	// SingleDeviceSession 为 true 时，登录签发新令牌对会吊销该用户所有旧的刷新令牌，
	// 即同一账号同时只允许一个活跃会话。默认 false（多端并存）。
	SingleDeviceSession bool `mapstructure:"singleDeviceSession" json:"singleDeviceSession" yaml:"singleDeviceSession"`

	// RevokeAllOnReplay 为 true 时，检测到已吊销的刷新令牌被再次使用（疑似令牌泄露重放）
	// 会吊销该用户全部刷新令牌，强制所有会话重新登录。默认 true。
	RevokeAllOnReplay bool `mapstructure:"revokeAllOnReplay" json:"revokeAllOnReplay" yaml:"revokeAllOnReplay"`
}
