package config

import "time"

// RateLimitConfig 定义认证相关操作的限流参数
type RateLimitConfig struct {
	// 登录尝试限流：窗口内同一标识符（或同一 IP）允许的最大尝试次数
	LoginWindow      time.Duration `mapstructure:"login_window" yaml:"login_window"`             // 如 15m
	LoginMaxAttempts int64         `mapstructure:"login_max_attempts" yaml:"login_max_attempts"` // 如 5

	// 发送验证码限流：窗口内同一手机号允许的最大发送次数
	SendCodeWindow      time.Duration `mapstructure:"send_code_window" yaml:"send_code_window"`             // 如 1m
	SendCodeMaxAttempts int64         `mapstructure:"send_code_max_attempts" yaml:"send_code_max_attempts"` // 如 1
}
