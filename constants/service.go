package constants

const (
	// ServiceName 服务名，用于追踪和日志标识
	ServiceName = "auth-hub"

	// ServiceVersion 服务版本号
	ServiceVersion = "1.0.0"
)
