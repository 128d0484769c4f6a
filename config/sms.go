package config

// SMSConfig 定义短信网关客户端的配置
type SMSConfig struct {
	// 短信网关分配的 AppID
	AppID string `mapstructure:"appID" json:"appID" yaml:"appID"`

	// 短信网关分配的 Secret
	Secret string `mapstructure:"secret" json:"secret" yaml:"secret"`

	// SMS 服务 API 端点
	Endpoint string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`

	// 短信模板 ID
	TemplateID string `mapstructure:"templateID" json:"templateID" yaml:"templateID"`
}
