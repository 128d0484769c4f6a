package config

// FacebookConfig 定义 Facebook 联合登录的相关配置
type FacebookConfig struct {
	// 应用 ID
	AppID string `mapstructure:"appID" json:"appID" yaml:"appID"`

	// 应用密钥
	AppSecret string `mapstructure:"appSecret" json:"appSecret" yaml:"appSecret"`

	// Graph API 基础地址（如 "https://graph.facebook.com"），留空使用默认值
	GraphAPIBaseURL string `mapstructure:"graphAPIBaseURL" json:"graphAPIBaseURL" yaml:"graphAPIBaseURL"`
}
