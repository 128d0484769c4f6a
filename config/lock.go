package config

import "time"

// LockConfig 定义分布式锁的默认参数
type LockConfig struct {
	// TTL 锁的默认持有时长，超时后自动释放，防止持有者崩溃导致死锁
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"` // 如 10s

	// MaxRetries 获取锁失败后的最大重试次数
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"` // 如 3

	// RetryDelay 每次重试之间的固定等待时长
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"` // 如 100ms
}
