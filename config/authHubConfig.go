package config

import (
	"github.com/Xushengqwer/go-common/config"
)

type AuthHubConfig struct {
	ZapConfig        config.ZapConfig     `mapstructure:"zapConfig" json:"zapConfig" yaml:"zapConfig"`
	GormLogConfig    config.GormLogConfig `mapstructure:"gormLogConfig" json:"gormLogConfig" yaml:"gormLogConfig"`
	ServerConfig     config.ServerConfig  `mapstructure:"serverConfig" json:"serverConfig" yaml:"serverConfig"`
	TracerConfig     config.TracerConfig  `mapstructure:"tracerConfig" json:"tracerConfig" yaml:"tracerConfig"`
	JWTConfig        JWTConfig            `mapstructure:"jwtConfig" json:"jwtConfig" yaml:"jwtConfig"`
	MySQLConfig      MySQLConfig          `mapstructure:"mySQLConfig" json:"mySQLConfig" yaml:"mySQLConfig"`
	RedisConfig      RedisConfig          `mapstructure:"redisConfig" json:"redisConfig" yaml:"redisConfig"`
	FacebookConfig   FacebookConfig       `mapstructure:"facebookConfig" json:"facebookConfig" yaml:"facebookConfig"`
	SMSConfig        SMSConfig            `mapstructure:"smsConfig" json:"smsConfig" yaml:"smsConfig"`
	CookieConfig     CookieConfig         `mapstructure:"cookieConfig" json:"cookieConfig" yaml:"cookieConfig"`
	AuthPolicyConfig AuthPolicyConfig     `mapstructure:"authPolicyConfig" json:"authPolicyConfig" yaml:"authPolicyConfig"`
	RateLimitConfig  RateLimitConfig      `mapstructure:"rateLimitConfig" json:"rateLimitConfig" yaml:"rateLimitConfig"`
	LockConfig       LockConfig           `mapstructure:"lockConfig" json:"lockConfig" yaml:"lockConfig"`
	BootstrapConfig  BootstrapConfig      `mapstructure:"bootstrapConfig" json:"bootstrapConfig" yaml:"bootstrapConfig"`
}
