package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/auth_hub/models/entities"
	"gorm.io/gorm"
)

// RefreshTokenRepository 定义了刷新令牌（RefreshToken）数据存储的操作接口。
// - 刷新令牌是持久化的不透明随机串，每次轮换产生新行，旧行只做吊销标记。
// - 吊销走条件更新（CAS），并发轮换同一令牌时只有一个请求能成功。
type RefreshTokenRepository interface {
	// Create 持久化一条新的刷新令牌记录。
	// - 使用传入的 db 对象执行操作，使其能够参与外部事务（与旧令牌吊销同事务）。
	Create(ctx context.Context, db *gorm.DB, token *entities.RefreshToken) error

	// GetByToken 按令牌值检索完整记录。
	// - 无论记录是否已吊销或过期都会返回，由服务层判定语义（重放检测依赖这一点）。
	// - 如果令牌不存在，将返回 commonerrors.ErrRepoNotFound。
	GetByToken(ctx context.Context, token string) (*entities.RefreshToken, error)

	// RevokeByToken 以条件更新的方式吊销一条未吊销的令牌。
	// - WHERE 条件同时匹配令牌值和 revoked = false，返回实际更新的行数。
	// - 返回 0 行表示令牌不存在或已被并发请求抢先吊销，由调用方决定如何处理。
	RevokeByToken(ctx context.Context, db *gorm.DB, token string, revokedAt time.Time) (int64, error)

	// RevokeAllByUserID 吊销指定用户名下所有未吊销的令牌。
	// - 单设备会话策略和重放全量吊销策略都走这里。
	// - 返回实际吊销的行数。
	RevokeAllByUserID(ctx context.Context, db *gorm.DB, userID string, revokedAt time.Time) (int64, error)

	// ListActiveByUserID 检索指定用户当前未吊销且未过期的令牌记录。
	// - 按创建时间降序排列，用于会话列表展示。
	ListActiveByUserID(ctx context.Context, userID string) ([]*entities.RefreshToken, error)

	// DeleteExpired 物理删除在指定时间之前过期的令牌记录。
	// - 后台清理任务使用，返回删除的行数。
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// refreshTokenRepository 是 RefreshTokenRepository 接口基于 GORM 的实现。
type refreshTokenRepository struct {
	db *gorm.DB // db 是 GORM 数据库连接实例
}

// NewRefreshTokenRepository 创建一个新的 refreshTokenRepository 实例。
// - 依赖注入 GORM 数据库连接。
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// Create 实现接口方法，持久化刷新令牌。
func (r *refreshTokenRepository) Create(ctx context.Context, db *gorm.DB, token *entities.RefreshToken) error {
	if err := db.WithContext(ctx).Create(token).Error; err != nil {
		// 令牌值上有唯一索引，32 字节随机串碰撞概率可忽略，冲突按普通错误处理
		return fmt.Errorf("refreshTokenRepo.Create: 创建刷新令牌失败 (UserID: %s): %w", token.UserID, err)
	}
	return nil
}

// GetByToken 实现接口方法，按令牌值检索记录。
func (r *refreshTokenRepository) GetByToken(ctx context.Context, token string) (*entities.RefreshToken, error) {
	var record entities.RefreshToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, fmt.Errorf("refreshTokenRepo.GetByToken: 查询刷新令牌失败: %w", err)
	}
	return &record, nil
}

// RevokeByToken 实现接口方法，条件吊销单条令牌。
func (r *refreshTokenRepository) RevokeByToken(ctx context.Context, db *gorm.DB, token string, revokedAt time.Time) (int64, error) {
	// revoked = false 写进 WHERE 条件，让数据库裁决并发下谁先吊销成功
	result := db.WithContext(ctx).
		Model(&entities.RefreshToken{}).
		Where("token = ? AND revoked = ?", token, false).
		Updates(map[string]interface{}{
			"revoked":    true,
			"revoked_at": revokedAt,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("refreshTokenRepo.RevokeByToken: 吊销刷新令牌失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RevokeAllByUserID 实现接口方法，吊销用户全部未吊销令牌。
func (r *refreshTokenRepository) RevokeAllByUserID(ctx context.Context, db *gorm.DB, userID string, revokedAt time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&entities.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Updates(map[string]interface{}{
			"revoked":    true,
			"revoked_at": revokedAt,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("refreshTokenRepo.RevokeAllByUserID: 吊销用户全部刷新令牌失败 (UserID: %s): %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}

// ListActiveByUserID 实现接口方法，列出用户的活跃令牌。
func (r *refreshTokenRepository) ListActiveByUserID(ctx context.Context, userID string) ([]*entities.RefreshToken, error) {
	var records []*entities.RefreshToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND revoked = ? AND expires_at > ?", userID, false, time.Now()).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("refreshTokenRepo.ListActiveByUserID: 查询用户活跃令牌失败 (UserID: %s): %w", userID, err)
	}
	return records, nil
}

// DeleteExpired 实现接口方法，清理过期令牌。
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&entities.RefreshToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("refreshTokenRepo.DeleteExpired: 清理过期刷新令牌失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}
