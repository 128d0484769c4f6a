package initialization

import (
	"github.com/Xushengqwer/auth_hub/repository/mysql"
	"github.com/Xushengqwer/auth_hub/repository/redis"
	"github.com/Xushengqwer/auth_hub/service/admin"
	"github.com/Xushengqwer/auth_hub/service/identity"
	"github.com/Xushengqwer/auth_hub/service/lock"
	"github.com/Xushengqwer/auth_hub/service/login/auth"
	"github.com/Xushengqwer/auth_hub/service/login/oAuth"
	"github.com/Xushengqwer/auth_hub/service/ratelimit"
	"github.com/Xushengqwer/auth_hub/service/token"
)

// AppServices 封装了应用所需的所有服务层实例。
// 设计目的:
//   - 在路由层之前把服务层装配好，控制器只依赖这里暴露的接口。
type AppServices struct {
	Account         auth.AccountService
	Phone           auth.PhoneAuthService
	Facebook        oAuth.FacebookAuthService
	IdentityService identity.UserIdentityService
	TokenService    token.AuthTokenService
	LockService     lock.DistributedLockService
	RateLimit       ratelimit.RateLimitService
	Bootstrap       admin.BootstrapService
	UserManage      admin.UserManageService
}

// SetupServices 初始化所有仓库层和服务层实例。
func SetupServices(deps *AppDependencies) *AppServices {
	// 1. 初始化 MySQL 仓库实例
	userRepo := mysql.NewUserRepository(deps.DB)
	credentialRepo := mysql.NewCredentialRepository(deps.DB)
	refreshTokenRepo := mysql.NewRefreshTokenRepository(deps.DB)

	// 2. 初始化 Redis 仓库实例
	codeRepo := redis.NewCodeRepo(deps.RedisClient)
	lockRepo := redis.NewLockRepo(deps.RedisClient)
	rateLimitRepo := redis.NewRateLimitRepo(deps.RedisClient)

	// 3. 初始化基础设施服务

	// 分布式锁服务，被超级管理员引导流程依赖
	lockService := lock.NewDistributedLockService(
		lockRepo,
		&deps.Config.LockConfig,
		deps.Logger,
	)

	// 限流服务，被登录和验证码发送流程依赖
	rateLimitService := ratelimit.NewRateLimitService(
		rateLimitRepo,
		&deps.Config.RateLimitConfig,
		deps.Logger,
	)

	// 令牌服务，负责令牌对签发、轮换和吊销
	tokenService := token.NewAuthTokenService(
		deps.DB,
		refreshTokenRepo,
		userRepo,
		deps.JwtToken,
		&deps.Config.AuthPolicyConfig,
		deps.Logger,
	)

	// 身份服务，负责用户与凭证的创建、解析和绑定
	identityService := identity.NewUserIdentityService(
		credentialRepo,
		userRepo,
		codeRepo,
		deps.DB,
		deps.Logger,
	)

	// 4. 初始化登录认证服务

	accountService := auth.NewAccountService(
		identityService,
		userRepo,
		tokenService,
		rateLimitService,
		deps.Logger,
	)

	phoneService := auth.NewPhoneAuthService(
		identityService,
		userRepo,
		codeRepo,
		deps.SMSClient,
		tokenService,
		rateLimitService,
		deps.Logger,
	)

	facebookService := oAuth.NewFacebookAuthService(
		deps.FacebookClient,
		identityService,
		userRepo,
		tokenService,
		deps.Logger,
	)

	// 5. 初始化管理端服务

	bootstrapService := admin.NewBootstrapService(
		identityService,
		lockService,
		&deps.Config.BootstrapConfig,
		deps.Logger,
	)

	userManageService := admin.NewUserManageService(
		userRepo,
		refreshTokenRepo,
		tokenService,
		deps.Logger,
	)

	// 6. 封装所有初始化完成的服务实例到 AppServices 结构体中
	return &AppServices{
		Account:         accountService,
		Phone:           phoneService,
		Facebook:        facebookService,
		IdentityService: identityService,
		TokenService:    tokenService,
		LockService:     lockService,
		RateLimit:       rateLimitService,
		Bootstrap:       bootstrapService,
		UserManage:      userManageService,
	}
}
