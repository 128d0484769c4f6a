package mysql

import (
	"context"
	"errors"
	"fmt" // 引入 fmt 包用于错误包装
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/auth_hub/models/entities"
	"github.com/Xushengqwer/auth_hub/models/enums"

	"gorm.io/gorm"
)

// UserRepository 定义了与核心用户（User）数据存储相关的操作接口。
// - 它抽象了数据库交互，提供用户的创建、读取以及状态管理功能。
type UserRepository interface {
	// CreateUser 持久化一个新的核心用户记录。
	// - 使用传入的 db 对象执行操作，使其能够参与外部事务。
	// - 如果数据库操作失败，则返回包装后的错误。
	CreateUser(ctx context.Context, db *gorm.DB, user *entities.User) error

	// GetUserByID 根据用户 ID 检索单个核心用户的完整信息。
	// - 如果未找到匹配的用户，将返回 commonerrors.ErrRepoNotFound。
	// - 其他数据库错误将被包装后返回。
	GetUserByID(ctx context.Context, userID string) (*entities.User, error)

	// UpdateStatus 将指定用户 ID 的状态更新为目标值。
	// - 直接更新 status 字段。
	// - 如果数据库操作失败，则返回包装后的错误。
	UpdateStatus(ctx context.Context, userID string, status enums.UserStatus) error

	// UpdateLastLoginAt 记录用户最近一次成功登录的时间。
	// - 登录路径上的辅助写入，失败不应阻塞登录流程，由调用方决定如何处理错误。
	UpdateLastLoginAt(ctx context.Context, userID string, loginAt time.Time) error
}

// userRepository 是 UserRepository 接口基于 GORM 的实现。
type userRepository struct {
	db *gorm.DB // db 是 GORM 数据库连接实例
}

// NewUserRepository 创建一个新的 userRepository 实例。
// - 依赖注入 GORM 数据库连接。
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateUser 实现接口方法，持久化用户记录。
func (r *userRepository) CreateUser(ctx context.Context, db *gorm.DB, user *entities.User) error {
	// 执行数据库创建操作
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		// 包装创建操作时发生的错误，添加中文上下文信息
		return fmt.Errorf("userRepo.CreateUser: 创建用户失败: %w", err)
	}
	// 操作成功，返回 nil
	return nil
}

// GetUserByID 实现接口方法，根据 ID 获取用户信息。
func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*entities.User, error) {
	var user entities.User
	// 执行数据库查询操作
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error

	if err != nil {
		// 检查是否是 GORM 的“记录未找到”错误
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 根据约定，记录未找到时返回统一的公共错误
			return nil, commonerrors.ErrRepoNotFound
		}
		// 包装其他查询错误，添加中文上下文信息
		return nil, fmt.Errorf("userRepo.GetUserByID: 查询用户失败 (UserID: %s): %w", userID, err)
	}
	// 查询成功，返回找到的用户实体和 nil 错误
	return &user, nil
}

// UpdateStatus 实现接口方法，更新用户状态。
func (r *userRepository) UpdateStatus(ctx context.Context, userID string, status enums.UserStatus) error {
	// 使用 GORM 的 Update 方法更新单个字段 'status'
	result := r.db.WithContext(ctx).Model(&entities.User{}).Where("user_id = ?", userID).Update("status", status)
	if result.Error != nil {
		// 包装更新状态操作时发生的错误，添加中文上下文信息
		return fmt.Errorf("userRepo.UpdateStatus: 更新用户状态失败 (UserID: %s): %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		// 区分“用户未找到”和“成功更新”，状态变更要求目标用户存在
		return commonerrors.ErrRepoNotFound
	}
	// 操作成功，返回 nil
	return nil
}

// UpdateLastLoginAt 实现接口方法，记录最近登录时间。
func (r *userRepository) UpdateLastLoginAt(ctx context.Context, userID string, loginAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&entities.User{}).Where("user_id = ?", userID).Update("last_login_at", loginAt)
	if result.Error != nil {
		return fmt.Errorf("userRepo.UpdateLastLoginAt: 更新最近登录时间失败 (UserID: %s): %w", userID, result.Error)
	}
	// RowsAffected 为 0 不视为错误，登录流程已确认过用户存在
	return nil
}
