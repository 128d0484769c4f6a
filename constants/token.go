package constants

import (
	"time"
)

const (
	// 认证令牌和刷新令牌的过期时间

	AccessTokenTTL = 15 * time.Minute // 认证令牌（Access Token）的有效期

	RefreshTokenTTL = 10 * 24 * time.Hour // 刷新令牌（Refresh Token）的有效期

	// RefreshTokenByteLength 刷新令牌的随机字节长度，编码后约 43 个字符
	RefreshTokenByteLength = 32

	// CaptchaTTL 短信验证码的有效期
	CaptchaTTL = 5 * time.Minute

	// RefreshTokenCleanupInterval 过期刷新令牌后台清理任务的执行间隔
	RefreshTokenCleanupInterval = time.Hour
)
