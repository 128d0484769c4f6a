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

	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/enums"
	"github.com/Xushengqwer/auth_hub/models/vo"
	"github.com/Xushengqwer/auth_hub/repository/mysql"
	"github.com/Xushengqwer/auth_hub/service/identity"
	"github.com/Xushengqwer/auth_hub/service/ratelimit"
	"github.com/Xushengqwer/auth_hub/service/token"
	"github.com/Xushengqwer/auth_hub/utils" // 引入密码工具
)

// AccountService 定义了基于账号密码认证的服务接口。
type AccountService interface {
	// Register 处理用户使用账号密码进行注册的逻辑。
	// - ctx: 请求上下文。
	// - data: 包含账号、密码和确认密码的注册信息 DTO。
	// - 返回: 包含新用户 ID 的 Userinfo，以及可能发生的业务错误或系统错误。
	// - 注意: 注册成功后不自动登录，不返回令牌。账号注册的用户角色为普通客户。
	Register(ctx context.Context, data dto.AccountRegisterData) (vo.Userinfo, error)

	// Login 处理用户使用账号密码进行登录的逻辑。
	// - ctx: 请求上下文。
	// - data: 包含账号、密码和设备信息的登录 DTO。
	// - platform: 发起请求的客户端平台类型。
	// - 登录尝试先经过限流计数（账号和 IP 两个维度），认证失败和成功都占用配额，
	//   成功后清空计数。失败统一返回 errs.ErrUnauthorized，不区分“账号不存在”
	//   和“密码错误”，避免账号枚举。
	// - 返回: 包含用户 ID 的 Userinfo、包含访问和刷新令牌的 TokenPair，以及可能的错误。
	Login(ctx context.Context, data dto.AccountLoginData, platform commonEnums.Platform) (vo.Userinfo, vo.TokenPair, error)
}

// accountService 是 AccountService 接口的实现。
type accountService struct {
	identityService  identity.UserIdentityService // 用户身份服务，负责凭证解析和用户创建
	userRepo         mysql.UserRepository         // 用户仓库
	tokenService     token.AuthTokenService       // 令牌服务，登录成功后签发令牌对
	rateLimitService ratelimit.RateLimitService   // 限流服务
	logger           *core.ZapLogger              // 日志记录器
}

func NewAccountService(
	identityService identity.UserIdentityService,
	userRepo mysql.UserRepository,
	tokenService token.AuthTokenService,
	rateLimitService ratelimit.RateLimitService,
	logger *core.ZapLogger, // 注入 logger
) AccountService { // 返回接口类型
	return &accountService{ // 返回结构体指针
		identityService:  identityService,
		userRepo:         userRepo,
		tokenService:     tokenService,
		rateLimitService: rateLimitService,
		logger:           logger, // 存储 logger
	}
}

// Register 实现接口方法，处理用户注册。
func (s *accountService) Register(ctx context.Context, data dto.AccountRegisterData) (vo.Userinfo, error) {
	const operation = "AccountService.Register"
	emptyUserInfo := vo.Userinfo{}

	// 1. 基本校验：密码与确认密码是否一致
	if data.Password != data.ConfirmPassword {
		s.logger.Warn("注册时密码与确认密码不一致", zap.String("operation", operation), zap.String("account", data.Account))
		return emptyUserInfo, errs.ErrValidation
	}

	// 2. 哈希密码
	hashedPassword, err := utils.SetPassword(data.Password)
	if err != nil {
		s.logger.Error("密码加密失败",
			zap.String("operation", operation),
			zap.String("account", data.Account),
			zap.Error(err),
		)
		return emptyUserInfo, commonerrors.ErrSystemError
	}

	// 3. 创建用户及首条凭证（事务由身份服务管理）
	//    账号密码渠道注册的用户为普通客户角色。
	user, err := s.identityService.CreateUserWithCredential(ctx, enums.RoleCustomer, enums.AccountPassword, data.Account, hashedPassword)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			s.logger.Warn("尝试注册已存在的账号",
				zap.String("operation", operation),
				zap.String("account", data.Account),
			)
			return emptyUserInfo, errs.ErrConflict
		}
		s.logger.Error("账号注册失败",
			zap.String("operation", operation),
			zap.String("account", data.Account),
			zap.Error(err),
		)
		return emptyUserInfo, commonerrors.ErrSystemError
	}

	// 4. 注册成功
	s.logger.Info("账号注册成功",
		zap.String("operation", operation),
		zap.String("userID", user.UserID),
		zap.String("account", data.Account),
	)
	return vo.Userinfo{UserID: user.UserID}, nil
}

// Login 实现接口方法，处理用户登录。
func (s *accountService) Login(ctx context.Context, data dto.AccountLoginData, platform commonEnums.Platform) (vo.Userinfo, vo.TokenPair, error) {
	const operation = "AccountService.Login"
	emptyUserInfo := vo.Userinfo{}
	emptyTokenPair := vo.TokenPair{}

	// 1. 限流计数
	//    在任何认证逻辑之前计数，失败的尝试同样占用配额。
	if err := s.rateLimitService.CheckLoginAttempt(ctx, data.Account, data.Device.IPAddress); err != nil {
		return emptyUserInfo, emptyTokenPair, err
	}

	// 2. 根据账号查找登录凭证
	lookup, err := s.identityService.ResolveByCredential(ctx, enums.AccountPassword, data.Account)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			s.logger.Warn("尝试登录不存在的账号",
				zap.String("operation", operation),
				zap.String("account", data.Account),
			)
			// 与密码错误返回同一种错误，不暴露账号是否存在
			return emptyUserInfo, emptyTokenPair, errs.ErrUnauthorized
		}
		s.logger.Error("登录时查找账号凭证失败",
			zap.String("operation", operation),
			zap.String("account", data.Account),
			zap.Error(err),
		)
		return emptyUserInfo, emptyTokenPair, commonerrors.ErrSystemError
	}

	// 3. 校验密码
	if err := utils.CheckPassword(lookup.Credential, data.Password); err != nil {
		s.logger.Warn("登录密码错误",
			zap.String("operation", operation),
			zap.String("userID", lookup.UserID),
			zap.String("account", data.Account),
		)
		return emptyUserInfo, emptyTokenPair, errs.ErrUnauthorized
	}

	// 4. 获取用户信息并检查状态
	user, err := s.userRepo.GetUserByID(ctx, lookup.UserID)
	if err != nil {
		s.logger.Error("登录时获取用户信息失败",
			zap.String("operation", operation),
			zap.String("userID", lookup.UserID),
			zap.Error(err),
		)
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			// 凭证存在但用户不存在，数据异常
			return emptyUserInfo, emptyTokenPair, errs.ErrUnauthorized
		}
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
	if err := s.rateLimitService.ClearLoginAttempts(ctx, data.Account, data.Device.IPAddress); err != nil {
		// 清空计数失败只影响后续几次误判，不阻塞登录
		s.logger.Warn("登录成功后清空限流计数失败",
			zap.String("operation", operation),
			zap.String("account", data.Account),
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

	s.logger.Info("账号登录成功",
		zap.String("operation", operation),
		zap.String("userID", user.UserID),
		zap.Any("platform", platform),
	)
	return vo.Userinfo{UserID: user.UserID}, tokenPair, nil
}
