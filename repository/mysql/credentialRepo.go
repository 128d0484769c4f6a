package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/entities"
	"github.com/Xushengqwer/auth_hub/models/enums"
	"gorm.io/gorm"
)

// CredentialRepository 定义了用户登录凭证（UserCredential）数据存储的操作接口。
// - 凭证是“如何登录”的记录，一个用户可以绑定多条不同类型的凭证。
// - (类型, 标识符) 组合在表上有唯一索引，重复绑定由数据库兜底拦截。
type CredentialRepository interface {
	// CreateCredential 持久化一条新的登录凭证。
	// - 使用传入的 db 对象执行操作，使其能够参与外部事务。
	CreateCredential(ctx context.Context, db *gorm.DB, credential *entities.UserCredential) error

	// GetByTypeAndIdentifier 按 (凭证类型, 标识符) 精确查找一条凭证。
	// - 这是所有登录路径的入口查询，只取认证所需的最小字段。
	// - 如果未找到匹配的凭证，将返回 commonerrors.ErrRepoNotFound。
	GetByTypeAndIdentifier(ctx context.Context, credentialType enums.CredentialType, identifier string) (*dto.CredentialLookup, error)

	// GetByID 根据凭证 ID 检索完整的凭证记录。
	// - 如果未找到匹配的凭证，将返回 commonerrors.ErrRepoNotFound。
	GetByID(ctx context.Context, credentialID uint) (*entities.UserCredential, error)

	// ListByUserID 检索指定用户绑定的全部登录凭证。
	// - 查询结果按创建时间升序排列，用户无凭证时返回空切片。
	ListByUserID(ctx context.Context, userID string) ([]*entities.UserCredential, error)

	// CountByUserID 统计指定用户当前绑定的凭证数量。
	// - 解绑前的保护性检查依赖它，用户至少要保留一条可登录的凭证。
	CountByUserID(ctx context.Context, userID string) (int64, error)

	// UpdateCredential 更新指定凭证的秘密值（如密码哈希）。
	// - 使用传入的 db 对象执行操作，使其能够参与外部事务。
	UpdateCredential(ctx context.Context, db *gorm.DB, credentialID uint, credential string) error

	// DeleteByID 物理删除一条登录凭证。
	// - 使用传入的 db 对象执行操作，使其能够参与外部事务。
	// - 如果目标凭证不存在，将返回 commonerrors.ErrRepoNotFound。
	DeleteByID(ctx context.Context, db *gorm.DB, credentialID uint) error
}

// credentialRepository 是 CredentialRepository 接口基于 GORM 的实现。
type credentialRepository struct {
	db *gorm.DB // db 是 GORM 数据库连接实例
}

// NewCredentialRepository 创建一个新的 credentialRepository 实例。
// - 依赖注入 GORM 数据库连接。
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

// CreateCredential 实现接口方法，持久化凭证记录。
func (r *credentialRepository) CreateCredential(ctx context.Context, db *gorm.DB, credential *entities.UserCredential) error {
	if err := db.WithContext(ctx).Create(credential).Error; err != nil {
		// 唯一索引冲突也会走到这里，由服务层在事务前做业务预检
		return fmt.Errorf("credentialRepo.CreateCredential: 创建凭证失败 (Type: %d, Identifier: %s): %w",
			credential.CredentialType, credential.Identifier, err)
	}
	return nil
}

// GetByTypeAndIdentifier 实现接口方法，按类型和标识符查找凭证。
func (r *credentialRepository) GetByTypeAndIdentifier(ctx context.Context, credentialType enums.CredentialType, identifier string) (*dto.CredentialLookup, error) {
	var lookup dto.CredentialLookup
	// 只选择认证需要的 user_id 和 credential 两列，避免加载整行
	err := r.db.WithContext(ctx).
		Table("user_credentials").
		Select("user_id, credential").
		Where("credential_type = ? AND identifier = ?", credentialType, identifier).
		First(&lookup).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, fmt.Errorf("credentialRepo.GetByTypeAndIdentifier: 查询凭证失败 (Type: %d, Identifier: %s): %w",
			credentialType, identifier, err)
	}
	return &lookup, nil
}

// GetByID 实现接口方法，按主键检索凭证。
func (r *credentialRepository) GetByID(ctx context.Context, credentialID uint) (*entities.UserCredential, error) {
	var credential entities.UserCredential
	err := r.db.WithContext(ctx).Where("credential_id = ?", credentialID).First(&credential).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, fmt.Errorf("credentialRepo.GetByID: 查询凭证失败 (CredentialID: %d): %w", credentialID, err)
	}
	return &credential, nil
}

// ListByUserID 实现接口方法，列出用户的全部凭证。
func (r *credentialRepository) ListByUserID(ctx context.Context, userID string) ([]*entities.UserCredential, error) {
	var credentials []*entities.UserCredential
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&credentials).Error
	if err != nil {
		return nil, fmt.Errorf("credentialRepo.ListByUserID: 查询用户凭证列表失败 (UserID: %s): %w", userID, err)
	}
	return credentials, nil
}

// CountByUserID 实现接口方法，统计用户的凭证数量。
func (r *credentialRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.UserCredential{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("credentialRepo.CountByUserID: 统计用户凭证数量失败 (UserID: %s): %w", userID, err)
	}
	return count, nil
}

// UpdateCredential 实现接口方法，更新凭证的秘密值。
func (r *credentialRepository) UpdateCredential(ctx context.Context, db *gorm.DB, credentialID uint, credential string) error {
	result := db.WithContext(ctx).
		Model(&entities.UserCredential{}).
		Where("credential_id = ?", credentialID).
		Update("credential", credential)
	if result.Error != nil {
		return fmt.Errorf("credentialRepo.UpdateCredential: 更新凭证失败 (CredentialID: %d): %w", credentialID, result.Error)
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

// DeleteByID 实现接口方法，物理删除凭证。
func (r *credentialRepository) DeleteByID(ctx context.Context, db *gorm.DB, credentialID uint) error {
	result := db.WithContext(ctx).Where("credential_id = ?", credentialID).Delete(&entities.UserCredential{})
	if result.Error != nil {
		return fmt.Errorf("credentialRepo.DeleteByID: 删除凭证失败 (CredentialID: %d): %w", credentialID, result.Error)
	}
	if result.RowsAffected == 0 {
		// 解绑一个不存在的凭证视为未找到，让服务层映射成客户端错误
		return commonerrors.ErrRepoNotFound
	}
	return nil
}
