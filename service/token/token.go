package token

import (
	"context"
	"errors"
	"time"

	// 引入公共模块
	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core" // 引入日志包
	commonEnums "github.com/Xushengqwer/go-common/models/enums"
	"go.uber.org/zap" // 引入 zap 用于日志字段
	"gorm.io/gorm"

	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/constants"
	"github.com/Xushengqwer/auth_hub/dependencies"
	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/entities"
	"github.com/Xushengqwer/auth_hub/models/enums"
	"github.com/Xushengqwer/auth_hub/models/vo"
	"github.com/Xushengqwer/auth_hub/repository/mysql"
	"github.com/Xushengqwer/auth_hub/utils"
)

// AuthTokenService 定义了管理认证令牌（Access Token 和 Refresh Token）的服务接口。
// 设计目的:
// - Access Token 是短期 JWT，无状态校验；Refresh Token 是持久化的不透明随机串，
//   每条对应一个登录会话，可精确吊销。
// - 与具体的登录方式（账号密码、手机验证码、Facebook）解耦，登录服务拿到用户后
//   统一调用本服务签发令牌对，后续的轮换和吊销也由本服务负责。
// 使用场景:
// - 登录成功后签发初始令牌对。
// - 客户端在 Access Token 过期后，使用 Refresh Token 换取新的令牌对（轮换）。
// - 用户退出登录、管理员强制下线。
type AuthTokenService interface {
	// GenerateTokenPair 为指定用户签发一对新令牌。
	// 主要逻辑: 生成 JWT 访问令牌和随机刷新令牌，将刷新令牌连同设备信息持久化。
	// 若启用了单设备会话策略，签发前会在同一事务内吊销该用户已有的全部刷新令牌。
	// 参数:
	//  - ctx: 请求上下文。
	//  - user: 已通过身份认证的用户实体。
	//  - platform: 客户端平台（Web 或 App），写入访问令牌声明并随刷新令牌记录。
	//  - device: 客户端设备信息，用于会话审计。
	// 返回:
	//  - vo.TokenPair: 新签发的令牌对。
	//  - error: 系统错误（数据库或签名失败）。
	GenerateTokenPair(ctx context.Context, user *entities.User, platform commonEnums.Platform, device dto.DeviceInfo) (vo.TokenPair, error)

	// RefreshToken 使用有效的 Refresh Token 换取新的令牌对（轮换）。
	// 主要逻辑: 按令牌值查库，依次检查吊销标记（重放检测）、过期时间和用户状态，
	// 然后在一个事务内吊销旧令牌并写入新令牌，最后签发新的访问令牌。
	// 旧令牌的吊销走条件更新，并发使用同一令牌时只有一个请求能成功。
	// 检测到重放（令牌已吊销却再次被提交）时，按配置吊销该用户的全部会话。
	// 参数:
	//  - ctx: 请求上下文。
	//  - refreshToken: 客户端持有的刷新令牌。
	//  - platform: 客户端平台。
	//  - device: 本次请求的设备信息，写入新的刷新令牌记录。
	// 返回:
	//  - vo.TokenPair: 新的令牌对。
	//  - error: errs.ErrUnauthorized（令牌无效/已吊销/已过期）、
	//    errs.ErrForbidden（用户状态不允许）或 commonerrors.ErrSystemError。
	RefreshToken(ctx context.Context, refreshToken string, platform commonEnums.Platform, device dto.DeviceInfo) (vo.TokenPair, error)

	// Logout 处理用户退出登录的请求。
	// 主要逻辑: 按令牌值做条件吊销。令牌不存在或已吊销时同样视为成功，
	// 退出登录是幂等操作，目标状态（令牌不可用）已经达到。
	// 参数:
	//  - ctx: 请求上下文。
	//  - refreshToken: 需要吊销的刷新令牌。
	// 返回:
	//  - error: 仅在数据库操作失败时返回系统错误。
	Logout(ctx context.Context, refreshToken string) error

	// RevokeAll 吊销指定用户的全部活跃会话。
	// 使用场景: 用户修改密码、管理员强制下线、检测到账号风险。
	// 返回:
	//  - int64: 实际吊销的会话数量。
	//  - error: 数据库操作失败时返回系统错误。
	RevokeAll(ctx context.Context, userID string) (int64, error)

	// VerifyAccessToken 校验访问令牌并返回其声明。
	// 主要逻辑: 委托 JWT 工具做签名和时效校验，再查询用户当前状态，
	// 签发后被停用的账号立即拒绝，不等访问令牌自然过期。供认证中间件调用。
	// 返回:
	//  - *dependencies.CustomClaims: 校验通过的令牌声明。
	//  - error: errs.ErrUnauthorized（签名无效或已过期）、
	//    errs.ErrForbidden（用户已被停用）或 commonerrors.ErrSystemError。
	VerifyAccessToken(ctx context.Context, accessToken string) (*dependencies.CustomClaims, error)

	// CleanupExpired 物理删除已过期的刷新令牌记录。
	// 过期令牌在刷新路径上本就会被拒绝，删除只是控制表的体积，由后台任务周期调用。
	// 返回:
	//  - int64: 实际删除的记录数量。
	CleanupExpired(ctx context.Context) (int64, error)
}

// authTokenService 是 AuthTokenService 接口的实现。
type authTokenService struct {
	db               *gorm.DB                       // db: 数据库连接，用于开启轮换事务。
	refreshTokenRepo mysql.RefreshTokenRepository   // refreshTokenRepo: 刷新令牌仓库。
	userRepo         mysql.UserRepository           // userRepo: 用户仓库，刷新时获取最新的用户状态。
	jwtUtil          dependencies.JWTTokenInterface // jwtUtil: JWT 工具，签发和解析访问令牌。
	policy           *config.AuthPolicyConfig       // policy: 会话策略（单设备会话、重放全量吊销）。
	logger           *core.ZapLogger                // logger: 日志记录器。
}

// NewAuthTokenService 创建一个新的 authTokenService 实例。
// 设计原因:
// - 依赖注入确保了服务的可测试性和灵活性。
func NewAuthTokenService(
	db *gorm.DB,
	refreshTokenRepo mysql.RefreshTokenRepository,
	userRepo mysql.UserRepository,
	jwtUtil dependencies.JWTTokenInterface,
	policy *config.AuthPolicyConfig,
	logger *core.ZapLogger,
) AuthTokenService {
	return &authTokenService{
		db:               db,
		refreshTokenRepo: refreshTokenRepo,
		userRepo:         userRepo,
		jwtUtil:          jwtUtil,
		policy:           policy,
		logger:           logger,
	}
}

// GenerateTokenPair 实现接口方法，为用户签发新令牌对。
func (s *authTokenService) GenerateTokenPair(ctx context.Context, user *entities.User, platform commonEnums.Platform, device dto.DeviceInfo) (vo.TokenPair, error) {
	const operation = "AuthTokenService.GenerateTokenPair"
	emptyTokenPair := vo.TokenPair{}

	// 1. 生成访问令牌（短期 JWT）
	accessToken, err := s.jwtUtil.GenerateAccessToken(user.UserID, user.UserRole, user.Status, platform)
	if err != nil {
		s.logger.Error("生成 Access Token 失败",
			zap.String("operation", operation),
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
		return emptyTokenPair, commonerrors.ErrSystemError
	}

	// 2. 生成刷新令牌（不透明随机串）
	refreshTokenValue, err := utils.GenerateOpaqueToken(constants.RefreshTokenByteLength)
	if err != nil {
		s.logger.Error("生成 Refresh Token 随机串失败",
			zap.String("operation", operation),
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
		return emptyTokenPair, commonerrors.ErrSystemError
	}

	now := time.Now()
	record := &entities.RefreshToken{
		Token:      refreshTokenValue,
		UserID:     user.UserID,
		DeviceID:   device.DeviceID,
		DeviceName: device.DeviceName,
		UserAgent:  device.UserAgent,
		IPAddress:  device.IPAddress,
		Platform:   string(platform),
		ExpiresAt:  now.Add(constants.RefreshTokenTTL),
	}

	// 3. 持久化刷新令牌
	//    单设备会话策略开启时，吊销旧会话和写入新会话放在同一事务内，
	//    不会出现“旧的已吊销、新的没写进去”的中间态。
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if s.policy.SingleDeviceSession {
			revoked, revokeErr := s.refreshTokenRepo.RevokeAllByUserID(ctx, tx, user.UserID, now)
			if revokeErr != nil {
				return revokeErr
			}
			if revoked > 0 {
				s.logger.Info("单设备会话策略生效，已吊销用户旧会话",
					zap.String("operation", operation),
					zap.String("userID", user.UserID),
					zap.Int64("revokedCount", revoked),
				)
			}
		}
		return s.refreshTokenRepo.Create(ctx, tx, record)
	})
	if err != nil {
		s.logger.Error("持久化 Refresh Token 失败",
			zap.String("operation", operation),
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
		return emptyTokenPair, commonerrors.ErrSystemError
	}

	// 4. 成功签发，返回令牌对
	s.logger.Info("成功签发令牌对",
		zap.String("operation", operation),
		zap.String("userID", user.UserID),
		zap.String("platform", string(platform)),
		// 不记录令牌的具体内容
	)
	return vo.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenValue,
	}, nil
}

// RefreshToken 实现接口方法，轮换刷新令牌。
func (s *authTokenService) RefreshToken(ctx context.Context, refreshToken string, platform commonEnums.Platform, device dto.DeviceInfo) (vo.TokenPair, error) {
	const operation = "AuthTokenService.RefreshToken"
	emptyTokenPair := vo.TokenPair{}

	// 1. 按令牌值查库
	record, err := s.refreshTokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			s.logger.Warn("刷新令牌不存在",
				zap.String("operation", operation),
				// 不记录完整的令牌值
			)
			return emptyTokenPair, errs.ErrUnauthorized
		}
		s.logger.Error("查询刷新令牌失败",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return emptyTokenPair, commonerrors.ErrSystemError
	}

	now := time.Now()

	// 2. 重放检测
	//    已吊销的令牌再次被提交，说明它可能已经泄露（正常客户端轮换后会丢弃旧令牌）。
	if record.Revoked {
		s.logger.Warn("检测到已吊销刷新令牌的重放",
			zap.String("operation", operation),
			zap.String("userID", record.UserID),
			zap.Bool("revokeAllOnReplay", s.policy.RevokeAllOnReplay),
		)
		if s.policy.RevokeAllOnReplay {
			// 吊销失败只记录日志，重放请求本身无论如何都要拒绝
			if _, revokeErr := s.refreshTokenRepo.RevokeAllByUserID(ctx, s.db, record.UserID, now); revokeErr != nil {
				s.logger.Error("重放检测后吊销用户全部会话失败",
					zap.String("operation", operation),
					zap.String("userID", record.UserID),
					zap.Error(revokeErr),
				)
			}
		}
		return emptyTokenPair, errs.ErrUnauthorized
	}

	// 3. 过期检查
	if now.After(record.ExpiresAt) {
		s.logger.Warn("刷新令牌已过期",
			zap.String("operation", operation),
			zap.String("userID", record.UserID),
			zap.Time("expiresAt", record.ExpiresAt),
		)
		return emptyTokenPair, errs.ErrUnauthorized
	}

	// 4. 获取最新的用户信息并检查状态
	user, err := s.userRepo.GetUserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			// 用户已被删除，对应的会话一并作废
			s.logger.Warn("刷新令牌对应的用户不存在",
				zap.String("operation", operation),
				zap.String("userID", record.UserID),
			)
			return emptyTokenPair, errs.ErrUnauthorized
		}
		s.logger.Error("刷新令牌时获取用户信息失败",
			zap.String("operation", operation),
			zap.String("userID", record.UserID),
			zap.Error(err),
		)
		return emptyTokenPair, commonerrors.ErrSystemError
	}
	if user.Status != enums.StatusActive {
		s.logger.Warn("尝试刷新令牌但用户状态异常",
			zap.String("operation", operation),
			zap.String("userID", user.UserID),
			zap.Any("status", user.Status),
		)
		return emptyTokenPair, errs.ErrForbidden
	}

	// 5. 在同一事务内吊销旧令牌并写入新令牌
	newRefreshTokenValue, err := utils.GenerateOpaqueToken(constants.RefreshTokenByteLength)
	if err != nil {
		s.logger.Error("生成新的 Refresh Token 随机串失败",
			zap.String("operation", operation),
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
		return emptyTokenPair, commonerrors.ErrSystemError
	}
	newRecord := &entities.RefreshToken{
		Token:      newRefreshTokenValue,
		UserID:     user.UserID,
		DeviceID:   device.DeviceID,
		DeviceName: device.DeviceName,
		UserAgent:  device.UserAgent,
		IPAddress:  device.IPAddress,
		Platform:   string(platform),
		ExpiresAt:  now.Add(constants.RefreshTokenTTL),
	}

	lostRace := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 条件吊销: WHERE token = ? AND revoked = false
		// 返回 0 行说明另一个并发请求抢先完成了轮换，本次请求输掉竞争。
		rows, revokeErr := s.refreshTokenRepo.RevokeByToken(ctx, tx, refreshToken, now)
		if revokeErr != nil {
			return revokeErr
		}
		if rows == 0 {
			lostRace = true
			return errs.ErrUnauthorized
		}
		return s.refreshTokenRepo.Create(ctx, tx, newRecord)
	})
	if err != nil {
		if lostRace {
			s.logger.Warn("并发轮换竞争失败，刷新令牌已被抢先吊销",
				zap.String("operation", operation),
				zap.String("userID", user.UserID),
			)
			return emptyTokenPair, errs.ErrUnauthorized
		}
		s.logger.Error("轮换刷新令牌事务失败",
			zap.String("operation", operation),
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
		return emptyTokenPair, commonerrors.ErrSystemError
	}

	// 6. 签发新的访问令牌
	newAccessToken, err := s.jwtUtil.GenerateAccessToken(user.UserID, user.UserRole, user.Status, platform)
	if err != nil {
		s.logger.Error("生成新的 Access Token 失败",
			zap.String("operation", operation),
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
		return emptyTokenPair, commonerrors.ErrSystemError
	}

	// 7. 成功轮换，返回新的令牌对
	s.logger.Info("成功轮换令牌",
		zap.String("operation", operation),
		zap.String("userID", user.UserID),
	)
	return vo.TokenPair{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshTokenValue,
	}, nil
}

// Logout 实现接口方法，处理退出登录。
func (s *authTokenService) Logout(ctx context.Context, refreshToken string) error {
	const operation = "AuthTokenService.Logout"

	rows, err := s.refreshTokenRepo.RevokeByToken(ctx, s.db, refreshToken, time.Now())
	if err != nil {
		s.logger.Error("退出登录时吊销刷新令牌失败",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return commonerrors.ErrSystemError
	}
	if rows == 0 {
		// 令牌不存在或早已吊销，退出的目标状态已经达到，视为成功
		s.logger.Info("退出登录的刷新令牌不存在或已吊销",
			zap.String("operation", operation),
		)
		return nil
	}
	s.logger.Info("成功退出登录",
		zap.String("operation", operation),
	)
	return nil
}

// RevokeAll 实现接口方法，吊销用户全部会话。
func (s *authTokenService) RevokeAll(ctx context.Context, userID string) (int64, error) {
	const operation = "AuthTokenService.RevokeAll"

	revoked, err := s.refreshTokenRepo.RevokeAllByUserID(ctx, s.db, userID, time.Now())
	if err != nil {
		s.logger.Error("吊销用户全部会话失败",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Error(err),
		)
		return 0, commonerrors.ErrSystemError
	}
	s.logger.Info("成功吊销用户全部会话",
		zap.String("operation", operation),
		zap.String("userID", userID),
		zap.Int64("revokedCount", revoked),
	)
	return revoked, nil
}

// VerifyAccessToken 实现接口方法，校验访问令牌。
func (s *authTokenService) VerifyAccessToken(ctx context.Context, accessToken string) (*dependencies.CustomClaims, error) {
	const operation = "AuthTokenService.VerifyAccessToken"

	claims, err := s.jwtUtil.ParseAccessToken(accessToken)
	if err != nil {
		// 签名无效、过期、签发者不匹配都归为未认证，不向客户端透出细节
		return nil, errs.ErrUnauthorized
	}

	// 令牌里的状态只是签发时刻的快照，停用账号要在下一次请求就被拦下
	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, errs.ErrUnauthorized
		}
		s.logger.Error("校验访问令牌时查询用户状态失败",
			zap.String("operation", operation),
			zap.String("userID", claims.UserID),
			zap.Error(err),
		)
		return nil, commonerrors.ErrSystemError
	}
	if user.Status != enums.StatusActive {
		s.logger.Warn("持有效令牌的用户已被停用，拒绝访问",
			zap.String("operation", operation),
			zap.String("userID", user.UserID),
			zap.Any("status", user.Status),
		)
		return nil, errs.ErrForbidden
	}
	return claims, nil
}

// CleanupExpired 实现接口方法，删除已过期的刷新令牌。
func (s *authTokenService) CleanupExpired(ctx context.Context) (int64, error) {
	const operation = "AuthTokenService.CleanupExpired"

	deleted, err := s.refreshTokenRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("清理过期刷新令牌失败",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return 0, commonerrors.ErrSystemError
	}
	if deleted > 0 {
		s.logger.Info("清理过期刷新令牌完成",
			zap.String("operation", operation),
			zap.Int64("deletedCount", deleted),
		)
	}
	return deleted, nil
}
