package config

// JWTConfig 定义JWT认证功能的相关配置，包含密钥、签发者等信息，用于生成和验证Access Token。
// 刷新令牌是持久化的不透明随机串，不走JWT签名，因此无需独立密钥。
type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"` // 用于签名Access Token的密钥
	Issuer    string `mapstructure:"issuer" yaml:"issuer"`         // JWT的签发者
}
