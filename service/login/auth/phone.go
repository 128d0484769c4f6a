package auth

import (
	"context"
	"errors"
	"time"

	// 引入公共模块
	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core" // 引入日志包
	commonEnums "github.com/Xushengqwer/go-common/models/enums"
	"go.uber.org/zap" // 引入 zap 用于日志字段

	"github.com/Xushengqwer/auth_hub/constants"
	"github.com/Xushengqwer/auth_hub/dependencies"
	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/enums"
	"github.com/Xushengqwer/auth_hub/models/vo"
	"github.com/Xushengqwer/auth_hub/repository/mysql"
	"github.com/Xushengqwer/auth_hub/repository/redis"
	"github.com/Xushengqwer/auth_hub/service/identity"
	"github.com/Xushengqwer/auth_hub/service/ratelimit"
	"github.com/Xushengqwer/auth_hub/service/token"
	"github.com/Xushengqwer/auth_hub/utils"
)

// PhoneAuthService 定义了基于手机号和验证码认证的服务接口。
type PhoneAuthService interface {
	// SendCode 生成验证码、写入缓存并通过短信网关下发。
	// - ctx: 请求上下文。
	// - data: 包含手机号和验证码用途的 DTO。
	// - 发送前先经过手机号维度的限流计数，抵御短信轰炸。
	// - 重复发送会覆盖同一 (用途, 手机号) 下的旧验证码并重置有效期。
	// - 返回: errs.ErrRateLimited（发送过于频繁）、commonerrors.ErrServiceBusy
	//   （短信网关不可用）或系统错误。
	SendCode(ctx context.Context, data dto.SendCodeRequest) error

	// CheckCodeStatus 查询指定 (用途, 手机号) 的验证码是否存在及剩余有效期。
	// - 不返回验证码内容，供客户端展示重发倒计时。
	CheckCodeStatus(ctx context.Context, query dto.CodeStatusQuery) (vo.CodeStatus, error)

	// LoginOrRegister 处理用户使用手机号和验证码进行登录或自动注册的逻辑。
	// - ctx: 请求上下文。
	// - data: 包含手机号、验证码和设备信息的 DTO。
	// - platform: 发起请求的客户端平台类型。
	// - 验证码按登录用途原子化消费，一次有效。手机号未注册时自动创建商家角色的新用户。
	// - 返回: 包含用户 ID 的 Userinfo、包含访问和刷新令牌的 TokenPair，以及可能的错误。
	LoginOrRegister(ctx context.Context, data dto.PhoneLoginOrRegisterData, platform commonEnums.Platform) (vo.Userinfo, vo.TokenPair, error)
}

// phoneAuthService 是 PhoneAuthService 接口的实现。
type phoneAuthService struct {
	identityService  identity.UserIdentityService // 用户身份服务
	userRepo         mysql.UserRepository         // 用户仓库
	codeRepo         redis.CodeRepo               // 验证码仓库
	smsClient        dependencies.SMSClient       // 短信网关客户端
	tokenService     token.AuthTokenService       // 令牌服务
	rateLimitService ratelimit.RateLimitService   // 限流服务
	logger           *core.ZapLogger              // 日志记录器
}

func NewPhoneAuthService(
	identityService identity.UserIdentityService,
	userRepo mysql.UserRepository,
	codeRepo redis.CodeRepo,
	smsClient dependencies.SMSClient,
	tokenService token.AuthTokenService,
	rateLimitService ratelimit.RateLimitService,
	logger *core.ZapLogger,
) PhoneAuthService {
	return &phoneAuthService{
		identityService:  identityService,
		userRepo:         userRepo,
		codeRepo:         codeRepo,
		smsClient:        smsClient,
		tokenService:     tokenService,
		rateLimitService: rateLimitService,
		logger:           logger,
	}
}

// SendCode 实现接口方法，发送短信验证码。
func (s *phoneAuthService) SendCode(ctx context.Context, data dto.SendCodeRequest) error {
	const operation = "PhoneAuthService.SendCode"

	// 1. 限流计数
	if err := s.rateLimitService.CheckSendCodeAttempt(ctx, data.Phone); err != nil {
		return err
	}

	// 2. 生成并缓存验证码
	code := utils.GenerateCaptcha()
	if err := s.codeRepo.SetCaptcha(ctx, data.Purpose, data.Phone, code, constants.CaptchaTTL); err != nil {
		s.logger.Error("缓存验证码失败",
			zap.String("operation", operation),
			zap.String("phone", data.Phone),
			zap.String("purpose", string(data.Purpose)),
			zap.Error(err),
		)
		return commonerrors.ErrSystemError
	}

	// 3. 通过短信网关下发
	if err := s.smsClient.SendCode(ctx, data.Phone, code); err != nil {
		s.logger.Error("短信网关发送验证码失败",
			zap.String("operation", operation),
			zap.String("phone", data.Phone),
			zap.Error(err),
		)
		// 下发失败时清掉缓存的验证码，客户端可立即重试
		if delErr := s.codeRepo.DeleteCaptcha(ctx, data.Purpose, data.Phone); delErr != nil {
			s.logger.Warn("回滚未下发的验证码失败",
				zap.String("operation", operation),
				zap.String("phone", data.Phone),
				zap.Error(delErr),
			)
		}
		return commonerrors.ErrServiceBusy
	}

	s.logger.Info("成功发送验证码",
		zap.String("operation", operation),
		zap.String("phone", data.Phone),
		zap.String("purpose", string(data.Purpose)),
		// 不记录验证码内容
	)
	return nil
}

// CheckCodeStatus 实现接口方法，查询验证码状态。
func (s *phoneAuthService) CheckCodeStatus(ctx context.Context, query dto.CodeStatusQuery) (vo.CodeStatus, error) {
	const operation = "PhoneAuthService.CheckCodeStatus"

	exists, ttl, err := s.codeRepo.GetCaptchaStatus(ctx, query.Purpose, query.Phone)
	if err != nil {
		s.logger.Error("查询验证码状态失败",
			zap.String("operation", operation),
			zap.String("phone", query.Phone),
			zap.Error(err),
		)
		return vo.CodeStatus{}, commonerrors.ErrSystemError
	}
	return vo.CodeStatus{
		Exists:     exists,
		TTLSeconds: int64(ttl.Seconds()),
	}, nil
}

// LoginOrRegister 实现接口方法，处理手机号登录或注册。
func (s *phoneAuthService) LoginOrRegister(ctx context.Context, data dto.PhoneLoginOrRegisterData, platform commonEnums.Platform) (vo.Userinfo, vo.TokenPair, error) {
	const operation = "PhoneAuthService.LoginOrRegister"
	emptyUserInfo := vo.Userinfo{}
	emptyTokenPair := vo.TokenPair{}

	// 1. 限流计数
	if err := s.rateLimitService.CheckLoginAttempt(ctx, data.Phone, data.Device.IPAddress); err != nil {
		return emptyUserInfo, emptyTokenPair, err
	}

	// 2. 原子化消费验证码
	//    比对和删除在 Redis 端一步完成，同一个验证码只能成功使用一次。
	if err := s.codeRepo.ConsumeCaptcha(ctx, enums.PurposeLogin, data.Phone, data.Code); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			s.logger.Warn("验证码错误或已过期",
				zap.String("operation", operation),
				zap.String("phone", data.Phone),
			)
			return emptyUserInfo, emptyTokenPair, errs.ErrUnauthorized
		}
		s.logger.Error("消费验证码失败",
			zap.String("operation", operation),
			zap.String("phone", data.Phone),
			zap.Error(err),
		)
		return emptyUserInfo, emptyTokenPair, commonerrors.ErrSystemError
	}

	// 3. 查找手机号对应的用户，不存在则自动注册
	var userID string
	lookup, err := s.identityService.ResolveByCredential(ctx, enums.Phone, data.Phone)
	switch {
	case err == nil:
		userID = lookup.UserID
	case errors.Is(err, commonerrors.ErrRepoNotFound):
		// 手机号渠道注册的用户为商家角色，验证码无秘密值可存
		newUser, createErr := s.identityService.CreateUserWithCredential(ctx, enums.RoleBusiness, enums.Phone, data.Phone, "")
		if createErr != nil {
			s.logger.Error("手机号自动注册失败",
				zap.String("operation", operation),
				zap.String("phone", data.Phone),
				zap.Error(createErr),
			)
			return emptyUserInfo, emptyTokenPair, commonerrors.ErrSystemError
		}
		userID = newUser.UserID
		s.logger.Info("手机号首次登录，已自动注册新用户",
			zap.String("operation", operation),
			zap.String("phone", data.Phone),
			zap.String("userID", userID),
		)
	default:
		s.logger.Error("查找手机号凭证失败",
			zap.String("operation", operation),
			zap.String("phone", data.Phone),
			zap.Error(err),
		)
		return emptyUserInfo, emptyTokenPair, commonerrors.ErrSystemError
	}

	// 4. 获取用户信息并检查状态
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error("登录时获取用户信息失败",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Error(err),
		)
		return emptyUserInfo, emptyTokenPair, commonerrors.ErrSystemError
	}
	if user.Status != enums.StatusActive {
		s.logger.Warn("尝试登录但用户状态异常",
			zap.String("operation", operation),
			zap.String("userID", user.UserID),
			zap.Any("status", user.Status),
		)
		return emptyUserInfo, emptyTokenPair, errs.ErrForbidden
	}

	// 5. 签发令牌对
	tokenPair, err := s.tokenService.GenerateTokenPair(ctx, user, platform, data.Device)
	if err != nil {
		return emptyUserInfo, emptyTokenPair, err
	}

	// 6. 登录成功，清空限流计数并记录登录时间
	if err := s.rateLimitService.ClearLoginAttempts(ctx, data.Phone, data.Device.IPAddress); err != nil {
		s.logger.Warn("登录成功后清空限流计数失败",
			zap.String("operation", operation),
			zap.String("phone", data.Phone),
			zap.Error(err),
		)
	}
	if err := s.userRepo.UpdateLastLoginAt(ctx, user.UserID, time.Now()); err != nil {
		s.logger.Warn("更新最近登录时间失败",
			zap.String("operation", operation),
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
	}

	s.logger.Info("手机号登录成功",
		zap.String("operation", operation),
		zap.String("userID", user.UserID),
		zap.Any("platform", platform),
	)
	return vo.Userinfo{UserID: user.UserID}, tokenPair, nil
}
