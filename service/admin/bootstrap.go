package admin

import (
	"context"
	"errors"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/constants"
	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/models/enums"
	"github.com/Xushengqwer/auth_hub/service/identity"
	"github.com/Xushengqwer/auth_hub/service/lock"
	"github.com/Xushengqwer/auth_hub/utils"
)

// BootstrapService 定义了服务启动时初始化工作的接口。
// 设计目的:
// - 超级管理员账号在首次部署时自动创建，省去手工建号的运维步骤。
// - 初始化在分布式锁保护下执行，多实例同时启动只有一个实例真正执行，
//   其余实例等锁失败后跳过，整个流程是幂等的。
type BootstrapService interface {
	// EnsureSuperAdmin 确保超级管理员账号存在。
	// 主要逻辑: 配置了管理员账号时，先抢占引导锁，拿到锁后检查账号是否已存在，
	// 不存在则以管理员角色创建用户及账号密码凭证。
	// 账号已存在、未配置账号、抢锁失败（其他实例正在执行）都静默跳过。
	// 返回:
	//  - error: 仅在创建过程出现系统错误时返回。
	EnsureSuperAdmin(ctx context.Context) error
}

// bootstrapService 是 BootstrapService 接口的实现。
type bootstrapService struct {
	identityService identity.UserIdentityService // identityService: 创建管理员用户及凭证。
	lockService     lock.DistributedLockService  // lockService: 引导过程的互斥保护。
	cfg             *config.BootstrapConfig      // cfg: 超级管理员的账号和初始密码。
	logger          *core.ZapLogger              // logger: 日志记录器。
}

// NewBootstrapService 创建一个新的 bootstrapService 实例。
func NewBootstrapService(
	identityService identity.UserIdentityService,
	lockService lock.DistributedLockService,
	cfg *config.BootstrapConfig,
	logger *core.ZapLogger,
) BootstrapService {
	return &bootstrapService{
		identityService: identityService,
		lockService:     lockService,
		cfg:             cfg,
		logger:          logger,
	}
}

// EnsureSuperAdmin 实现接口方法，幂等地初始化超级管理员。
func (s *bootstrapService) EnsureSuperAdmin(ctx context.Context) error {
	const operation = "BootstrapService.EnsureSuperAdmin"

	// 1. 未配置账号则跳过初始化
	if s.cfg.SuperAdminAccount == "" {
		s.logger.Info("未配置超级管理员账号，跳过初始化",
			zap.String("operation", operation),
		)
		return nil
	}

	// 2. 在引导锁的保护下执行检查和创建
	err := s.lockService.RunExclusive(ctx, constants.SuperAdminBootstrapLockKey, func(ctx context.Context) error {
		// 账号已存在说明引导早已完成
		_, resolveErr := s.identityService.ResolveByCredential(ctx, enums.AccountPassword, s.cfg.SuperAdminAccount)
		if resolveErr == nil {
			s.logger.Info("超级管理员账号已存在，跳过创建",
				zap.String("operation", operation),
				zap.String("account", s.cfg.SuperAdminAccount),
			)
			return nil
		}
		if !errors.Is(resolveErr, commonerrors.ErrRepoNotFound) {
			return resolveErr
		}

		hashedPassword, hashErr := utils.SetPassword(s.cfg.SuperAdminPassword)
		if hashErr != nil {
			return hashErr
		}
		user, createErr := s.identityService.CreateUserWithCredential(ctx, enums.RoleAdmin, enums.AccountPassword, s.cfg.SuperAdminAccount, hashedPassword)
		if createErr != nil {
			// 锁保护下仍可能与更早的部署竞争，冲突视为已完成
			if errors.Is(createErr, commonerrors.ErrSystemError) {
				return createErr
			}
			s.logger.Info("超级管理员账号创建时发现已存在",
				zap.String("operation", operation),
				zap.String("account", s.cfg.SuperAdminAccount),
			)
			return nil
		}
		s.logger.Info("成功创建超级管理员账号",
			zap.String("operation", operation),
			zap.String("account", s.cfg.SuperAdminAccount),
			zap.String("userID", user.UserID),
		)
		return nil
	})
	if err != nil {
		// 其他实例正在执行引导，本实例无需重复
		if errors.Is(err, errs.ErrLockBusy) {
			s.logger.Info("引导锁被其他实例持有，跳过超级管理员初始化",
				zap.String("operation", operation),
			)
			return nil
		}
		s.logger.Error("超级管理员初始化失败",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return err
	}
	return nil
}
