package ratelimit

import (
	"context"
	"fmt"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/constants"
	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/repository/redis"
)

// RateLimitService 定义了认证相关操作的限流服务接口。
// 设计目的:
// - 对登录尝试和验证码发送做固定窗口限流，抵御撞库和短信轰炸。
// - 计数在尝试前自增，失败的尝试同样占用配额；登录成功后清空计数，
//   正常用户偶尔输错密码不会被误伤太久。
type RateLimitService interface {
	// CheckLoginAttempt 为一次登录尝试计数并判定是否放行。
	// 主要逻辑: 同时按登录标识符和客户端 IP 两个维度计数，任一维度超限即拒绝。
	// 参数:
	//  - identifier: 登录标识符（账号名或手机号）。
	//  - clientIP: 客户端 IP，为空时跳过 IP 维度。
	// 返回:
	//  - error: errs.ErrRateLimited（超限）或 commonerrors.ErrSystemError。
	CheckLoginAttempt(ctx context.Context, identifier string, clientIP string) error

	// ClearLoginAttempts 清空指定标识符和 IP 的登录计数。
	// 登录成功后调用，失败计数不应跨越一次成功登录继续累积。
	ClearLoginAttempts(ctx context.Context, identifier string, clientIP string) error

	// CheckSendCodeAttempt 为一次验证码发送计数并判定是否放行。
	// 按接收方标识符（手机号）计数，窗口和阈值独立于登录限流配置。
	CheckSendCodeAttempt(ctx context.Context, identifier string) error
}

// rateLimitService 是 RateLimitService 接口的实现。
type rateLimitService struct {
	rateLimitRepo redis.RateLimitRepo     // rateLimitRepo: 计数器仓库。
	cfg           *config.RateLimitConfig // cfg: 各维度的窗口和阈值。
	logger        *core.ZapLogger         // logger: 日志记录器。
}

// NewRateLimitService 创建一个新的 rateLimitService 实例。
func NewRateLimitService(
	rateLimitRepo redis.RateLimitRepo,
	cfg *config.RateLimitConfig,
	logger *core.ZapLogger,
) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		cfg:           cfg,
		logger:        logger,
	}
}

// loginKey 生成按登录标识符维度的计数键。
func loginKey(identifier string) string {
	return fmt.Sprintf("%s:%s", constants.LoginAttemptsKeyPrefix, identifier)
}

// loginIPKey 生成按客户端 IP 维度的计数键。
func loginIPKey(clientIP string) string {
	return fmt.Sprintf("%s:ip:%s", constants.LoginAttemptsKeyPrefix, clientIP)
}

// sendCodeKey 生成验证码发送维度的计数键。
func sendCodeKey(identifier string) string {
	return fmt.Sprintf("%s:%s", constants.SendCodeAttemptsKeyPrefix, identifier)
}

// CheckLoginAttempt 实现接口方法，登录尝试计数与判定。
func (s *rateLimitService) CheckLoginAttempt(ctx context.Context, identifier string, clientIP string) error {
	const operation = "RateLimitService.CheckLoginAttempt"
	window := s.cfg.LoginWindow

	// 标识符维度: 锁定被撞库的具体账号
	count, err := s.rateLimitRepo.Increment(ctx, loginKey(identifier), window)
	if err != nil {
		s.logger.Error("登录限流计数失败",
			zap.String("operation", operation),
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return commonerrors.ErrSystemError
	}
	if count > s.cfg.LoginMaxAttempts {
		s.logger.Warn("登录尝试超过标识符维度限流阈值",
			zap.String("operation", operation),
			zap.String("identifier", identifier),
			zap.Int64("count", count),
			zap.Int64("limit", s.cfg.LoginMaxAttempts),
		)
		return errs.ErrRateLimited
	}

	// IP 维度: 拦截同一来源对大量账号的扫描
	if clientIP != "" {
		ipCount, err := s.rateLimitRepo.Increment(ctx, loginIPKey(clientIP), window)
		if err != nil {
			s.logger.Error("登录限流 IP 维度计数失败",
				zap.String("operation", operation),
				zap.String("clientIP", clientIP),
				zap.Error(err),
			)
			return commonerrors.ErrSystemError
		}
		if ipCount > s.cfg.LoginMaxAttempts {
			s.logger.Warn("登录尝试超过 IP 维度限流阈值",
				zap.String("operation", operation),
				zap.String("clientIP", clientIP),
				zap.Int64("count", ipCount),
				zap.Int64("limit", s.cfg.LoginMaxAttempts),
			)
			return errs.ErrRateLimited
		}
	}
	return nil
}

// ClearLoginAttempts 实现接口方法，登录成功后清空计数。
func (s *rateLimitService) ClearLoginAttempts(ctx context.Context, identifier string, clientIP string) error {
	const operation = "RateLimitService.ClearLoginAttempts"

	if err := s.rateLimitRepo.Clear(ctx, loginKey(identifier)); err != nil {
		s.logger.Error("清空登录限流计数失败",
			zap.String("operation", operation),
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return commonerrors.ErrSystemError
	}
	if clientIP != "" {
		if err := s.rateLimitRepo.Clear(ctx, loginIPKey(clientIP)); err != nil {
			s.logger.Error("清空登录限流 IP 维度计数失败",
				zap.String("operation", operation),
				zap.String("clientIP", clientIP),
				zap.Error(err),
			)
			return commonerrors.ErrSystemError
		}
	}
	return nil
}

// CheckSendCodeAttempt 实现接口方法，验证码发送计数与判定。
func (s *rateLimitService) CheckSendCodeAttempt(ctx context.Context, identifier string) error {
	const operation = "RateLimitService.CheckSendCodeAttempt"
	window := s.cfg.SendCodeWindow

	count, err := s.rateLimitRepo.Increment(ctx, sendCodeKey(identifier), window)
	if err != nil {
		s.logger.Error("验证码发送限流计数失败",
			zap.String("operation", operation),
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return commonerrors.ErrSystemError
	}
	if count > s.cfg.SendCodeMaxAttempts {
		s.logger.Warn("验证码发送超过限流阈值",
			zap.String("operation", operation),
			zap.String("identifier", identifier),
			zap.Int64("count", count),
			zap.Int64("limit", s.cfg.SendCodeMaxAttempts),
		)
		return errs.ErrRateLimited
	}
	return nil
}
