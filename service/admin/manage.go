package admin

import (
	"context"
	"errors"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/auth_hub/models/enums"
	"github.com/Xushengqwer/auth_hub/models/vo"
	"github.com/Xushengqwer/auth_hub/repository/mysql"
	"github.com/Xushengqwer/auth_hub/service/token"
)

// UserManageService 定义了管理员管理用户账号的服务接口。
// 设计目的:
// - 为管理端提供用户状态变更和会话管理能力。
// - 停用账号会同时吊销其全部会话，未过期的访问令牌也会在下一次校验时被拒绝。
type UserManageService interface {
	// UpdateUserStatus 变更指定用户的状态。
	// 主要逻辑: 更新用户状态字段；目标状态为停用时追加吊销该用户的全部刷新令牌，
	// 被停用的用户无法再刷新令牌，也无法重新登录。
	// 返回:
	//  - error: commonerrors.ErrRepoNotFound（用户不存在）或系统错误。
	UpdateUserStatus(ctx context.Context, userID string, status enums.UserStatus) error

	// ForceLogout 吊销指定用户的全部活跃会话。
	// 返回实际吊销的会话数量。
	ForceLogout(ctx context.Context, userID string) (int64, error)

	// ListUserSessions 列出指定用户当前未吊销且未过期的会话。
	ListUserSessions(ctx context.Context, userID string) (*vo.SessionList, error)
}

// userManageService 是 UserManageService 接口的实现。
type userManageService struct {
	userRepo         mysql.UserRepository         // userRepo: 用户仓库。
	refreshTokenRepo mysql.RefreshTokenRepository // refreshTokenRepo: 刷新令牌仓库，用于会话列表查询。
	tokenService     token.AuthTokenService       // tokenService: 令牌服务，用于吊销会话。
	logger           *core.ZapLogger              // logger: 日志记录器。
}

// NewUserManageService 创建一个新的 userManageService 实例。
func NewUserManageService(
	userRepo mysql.UserRepository,
	refreshTokenRepo mysql.RefreshTokenRepository,
	tokenService token.AuthTokenService,
	logger *core.ZapLogger,
) UserManageService {
	return &userManageService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokenService:     tokenService,
		logger:           logger,
	}
}

// UpdateUserStatus 实现接口方法，变更用户状态。
func (s *userManageService) UpdateUserStatus(ctx context.Context, userID string, status enums.UserStatus) error {
	const operation = "UserManageService.UpdateUserStatus"

	if err := s.userRepo.UpdateStatus(ctx, userID, status); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return commonerrors.ErrRepoNotFound
		}
		s.logger.Error("更新用户状态失败",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Any("status", status),
			zap.Error(err),
		)
		return commonerrors.ErrSystemError
	}

	// 停用账号时一并吊销全部会话，防止已登录的客户端继续刷新令牌
	if status == enums.StatusInactive {
		if _, err := s.tokenService.RevokeAll(ctx, userID); err != nil {
			s.logger.Error("停用用户后吊销会话失败",
				zap.String("operation", operation),
				zap.String("userID", userID),
				zap.Error(err),
			)
			return commonerrors.ErrSystemError
		}
	}

	s.logger.Info("成功更新用户状态",
		zap.String("operation", operation),
		zap.String("userID", userID),
		zap.Any("status", status),
	)
	return nil
}

// ForceLogout 实现接口方法，强制下线用户。
func (s *userManageService) ForceLogout(ctx context.Context, userID string) (int64, error) {
	const operation = "UserManageService.ForceLogout"

	// 先确认目标用户存在，给管理端明确的未找到反馈
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return 0, commonerrors.ErrRepoNotFound
		}
		s.logger.Error("强制下线前查询用户失败",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Error(err),
		)
		return 0, commonerrors.ErrSystemError
	}
	return s.tokenService.RevokeAll(ctx, userID)
}

// ListUserSessions 实现接口方法，列出用户活跃会话。
func (s *userManageService) ListUserSessions(ctx context.Context, userID string) (*vo.SessionList, error) {
	const operation = "UserManageService.ListUserSessions"

	records, err := s.refreshTokenRepo.ListActiveByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户活跃会话失败",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Error(err),
		)
		return nil, commonerrors.ErrSystemError
	}

	items := make([]*vo.SessionVO, 0, len(records))
	for _, r := range records {
		items = append(items, &vo.SessionVO{
			SessionID:  r.ID,
			DeviceID:   r.DeviceID,
			DeviceName: r.DeviceName,
			UserAgent:  r.UserAgent,
			IPAddress:  r.IPAddress,
			Platform:   r.Platform,
			CreatedAt:  r.CreatedAt,
			ExpiresAt:  r.ExpiresAt,
		})
	}
	return &vo.SessionList{Items: items}, nil
}
