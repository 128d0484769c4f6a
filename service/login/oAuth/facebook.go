package oAuth

import (
	"context"
	"errors"
	"time"

	// 引入公共模块
	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core" // 引入日志包
	commonEnums "github.com/Xushengqwer/go-common/models/enums"
	"go.uber.org/zap" // 引入 zap 用于日志字段

	"github.com/Xushengqwer/auth_hub/dependencies"
	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/enums"
	"github.com/Xushengqwer/auth_hub/models/vo"
	"github.com/Xushengqwer/auth_hub/repository/mysql"
	"github.com/Xushengqwer/auth_hub/service/identity"
	"github.com/Xushengqwer/auth_hub/service/token"
)

// FacebookAuthService 定义了基于 Facebook 联合登录的服务接口。
type FacebookAuthService interface {
	// LoginOrRegister 处理用户使用 Facebook 访问令牌进行登录或自动注册的逻辑。
	// - ctx: 请求上下文。
	// - data: 包含 Facebook 访问令牌和设备信息的 DTO。
	// - platform: 发起请求的客户端平台类型。
	// - 后端调用 Graph API 校验令牌并换取用户的 Facebook ID，
	//   该 ID 未绑定任何用户时自动创建普通客户角色的新用户。
	// - 返回: 包含用户 ID 的 Userinfo、包含访问和刷新令牌的 TokenPair，以及可能的错误。
	LoginOrRegister(ctx context.Context, data dto.FacebookLoginData, platform commonEnums.Platform) (vo.Userinfo, vo.TokenPair, error)

	// Bind 为已登录用户绑定 Facebook 身份。
	// - userID: 当前登录用户的 ID（从访问令牌声明中获取）。
	// - data: 包含 Facebook 访问令牌的 DTO。
	// - 返回: 绑定成功的凭证视图对象；该 Facebook ID 已被占用时返回 errs.ErrConflict。
	Bind(ctx context.Context, userID string, data dto.FacebookBindData) (*vo.CredentialVO, error)
}

// facebookAuthService 是 FacebookAuthService 接口的实现。
type facebookAuthService struct {
	facebookClient  dependencies.FacebookClient  // Graph API 客户端
	identityService identity.UserIdentityService // 用户身份服务
	userRepo        mysql.UserRepository         // 用户仓库
	tokenService    token.AuthTokenService       // 令牌服务
	logger          *core.ZapLogger              // 日志记录器
}

func NewFacebookAuthService(
	facebookClient dependencies.FacebookClient,
	identityService identity.UserIdentityService,
	userRepo mysql.UserRepository,
	tokenService token.AuthTokenService,
	logger *core.ZapLogger,
) FacebookAuthService {
	return &facebookAuthService{
		facebookClient:  facebookClient,
		identityService: identityService,
		userRepo:        userRepo,
		tokenService:    tokenService,
		logger:          logger,
	}
}

// LoginOrRegister 实现接口方法，处理 Facebook 登录或注册。
func (s *facebookAuthService) LoginOrRegister(ctx context.Context, data dto.FacebookLoginData, platform commonEnums.Platform) (vo.Userinfo, vo.TokenPair, error) {
	const operation = "FacebookAuthService.LoginOrRegister"
	emptyUserInfo := vo.Userinfo{}
	emptyTokenPair := vo.TokenPair{}

	// 1. 向 Graph API 校验访问令牌，换取 Facebook ID
	facebookID, name, err := s.facebookClient.ValidateAccessToken(ctx, data.AccessToken)
	if err != nil {
		s.logger.Warn("Facebook 访问令牌校验失败",
			zap.String("operation", operation),
			zap.Error(err),
		)
		// 令牌无效和平台故障对客户端都是认证失败
		return emptyUserInfo, emptyTokenPair, errs.ErrUnauthorized
	}

	// 2. 查找 Facebook ID 对应的用户，不存在则自动注册
	var userID string
	lookup, err := s.identityService.ResolveByCredential(ctx, enums.Facebook, facebookID)
	switch {
	case err == nil:
		userID = lookup.UserID
	case errors.Is(err, commonerrors.ErrRepoNotFound):
		// Facebook 渠道注册的用户为普通客户角色，第三方身份无秘密值可存
		newUser, createErr := s.identityService.CreateUserWithCredential(ctx, enums.RoleCustomer, enums.Facebook, facebookID, "")
		if createErr != nil {
			s.logger.Error("Facebook 自动注册失败",
				zap.String("operation", operation),
				zap.String("facebookID", facebookID),
				zap.Error(createErr),
			)
			return emptyUserInfo, emptyTokenPair, commonerrors.ErrSystemError
		}
		userID = newUser.UserID
		s.logger.Info("Facebook 首次登录，已自动注册新用户",
			zap.String("operation", operation),
			zap.String("facebookID", facebookID),
			zap.String("facebookName", name),
			zap.String("userID", userID),
		)
	default:
		s.logger.Error("查找 Facebook 凭证失败",
			zap.String("operation", operation),
			zap.String("facebookID", facebookID),
			zap.Error(err),
		)
		return emptyUserInfo, emptyTokenPair, commonerrors.ErrSystemError
	}

	// 3. 获取用户信息并检查状态
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

	// 4. 签发令牌对
	tokenPair, err := s.tokenService.GenerateTokenPair(ctx, user, platform, data.Device)
	if err != nil {
		return emptyUserInfo, emptyTokenPair, err
	}

	// 5. 登录成功，记录登录时间
	if err := s.userRepo.UpdateLastLoginAt(ctx, user.UserID, time.Now()); err != nil {
		s.logger.Warn("更新最近登录时间失败",
			zap.String("operation", operation),
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
	}

	s.logger.Info("Facebook 登录成功",
		zap.String("operation", operation),
		zap.String("userID", user.UserID),
		zap.Any("platform", platform),
	)
	return vo.Userinfo{UserID: user.UserID}, tokenPair, nil
}

// Bind 实现接口方法，为已登录用户绑定 Facebook 身份。
func (s *facebookAuthService) Bind(ctx context.Context, userID string, data dto.FacebookBindData) (*vo.CredentialVO, error) {
	const operation = "FacebookAuthService.Bind"

	// 1. 向 Graph API 校验访问令牌
	facebookID, _, err := s.facebookClient.ValidateAccessToken(ctx, data.AccessToken)
	if err != nil {
		s.logger.Warn("绑定时 Facebook 访问令牌校验失败",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Error(err),
		)
		return nil, errs.ErrUnauthorized
	}

	// 2. 标识符已通过平台验证，走受信绑定路径落库
	credentialVO, err := s.identityService.BindVerifiedCredential(ctx, userID, enums.Facebook, facebookID, "")
	if err != nil {
		return nil, err
	}

	s.logger.Info("成功绑定 Facebook 身份",
		zap.String("operation", operation),
		zap.String("userID", userID),
		zap.String("facebookID", facebookID),
	)
	return credentialVO, nil
}
