package identity

import (
	"context"
	"errors"

	// 引入公共模块
	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core" // 引入日志包
	"github.com/google/uuid"
	"go.uber.org/zap" // 引入 zap 用于日志字段

	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/entities"
	"github.com/Xushengqwer/auth_hub/models/enums"
	"github.com/Xushengqwer/auth_hub/models/vo"
	"github.com/Xushengqwer/auth_hub/repository/mysql"
	"github.com/Xushengqwer/auth_hub/repository/redis"
	"github.com/Xushengqwer/auth_hub/utils" // 引入密码工具

	"gorm.io/gorm"
)

// UserIdentityService 定义了管理用户登录凭证（账号密码、手机号、Facebook）的服务接口。
// 设计目的:
// - 将“用户是谁”（User 实体）和“用户如何登录”（UserCredential 记录）解耦，
//   一个用户可以绑定多条凭证，登录服务只负责各自渠道的认证，用户与凭证的
//   创建、查找、绑定、解绑统一收口在本服务。
// 使用场景:
// - 各登录服务注册新用户时，原子化地创建用户及其首条凭证。
// - 用户在个人中心绑定新的登录方式、解绑不再使用的登录方式。
type UserIdentityService interface {
	// CreateUserWithCredential 原子化地创建一个新用户及其首条登录凭证。
	// 主要逻辑: 先做唯一性预检，然后在一个事务内写入 User 和 UserCredential 两张表，
	// 任一写入失败则整体回滚，不会出现“有用户没凭证”或“有凭证没用户”的孤儿记录。
	// 参数:
	//  - role: 新用户的角色，由注册渠道决定（账号注册为客户，手机注册为商家）。
	//  - credentialType / identifier: 凭证类型和标识符。
	//  - credential: 凭证秘密值（密码哈希），无秘密值的类型（手机、Facebook）传空串。
	// 返回:
	//  - *entities.User: 创建成功的用户实体。
	//  - error: errs.ErrConflict（标识符已被占用）或 commonerrors.ErrSystemError。
	CreateUserWithCredential(ctx context.Context, role enums.UserRole, credentialType enums.CredentialType, identifier string, credential string) (*entities.User, error)

	// ResolveByCredential 按 (凭证类型, 标识符) 解析出用户 ID 和凭证秘密值。
	// 这是所有登录路径的入口查询。
	// 返回:
	//  - *dto.CredentialLookup: 认证所需的最小字段集。
	//  - error: commonerrors.ErrRepoNotFound（凭证不存在）或系统错误。
	ResolveByCredential(ctx context.Context, credentialType enums.CredentialType, identifier string) (*dto.CredentialLookup, error)

	// BindCredential 为已有用户绑定一条新的登录凭证。
	// 主要逻辑: 按凭证类型做各自的前置校验（账号密码做哈希、手机号消费绑定验证码），
	// 预检标识符未被占用后写入凭证记录。
	// Facebook 凭证必须走 OAuth 绑定流程校验访问令牌，直接提交会被拒绝。
	// 返回:
	//  - *vo.CredentialVO: 绑定成功的凭证视图对象。
	//  - error: errs.ErrConflict（标识符已被占用或用户已绑定同类型凭证）、
	//    errs.ErrValidation（验证码错误或缺少必要字段）或系统错误。
	BindCredential(ctx context.Context, userID string, req *dto.BindCredentialDTO) (*vo.CredentialVO, error)

	// BindVerifiedCredential 为已有用户绑定一条已在外部完成校验的凭证。
	// 供 OAuth 绑定流程内部调用，标识符已通过第三方平台验证，本方法只做唯一性检查和落库。
	BindVerifiedCredential(ctx context.Context, userID string, credentialType enums.CredentialType, identifier string, credential string) (*vo.CredentialVO, error)

	// UnbindCredential 解绑用户指定类型的登录凭证。
	// 主要逻辑: 用户至少要保留一条凭证，解绑最后一条会被拒绝。
	// 返回:
	//  - error: errs.ErrForbidden（仅剩最后一条凭证）、
	//    commonerrors.ErrRepoNotFound（该类型凭证不存在）或系统错误。
	UnbindCredential(ctx context.Context, userID string, credentialType enums.CredentialType) error

	// ListCredentials 列出用户绑定的全部登录凭证。
	// 返回的视图对象不包含凭证秘密值。
	ListCredentials(ctx context.Context, userID string) (*vo.CredentialList, error)
}

// userIdentityService 是 UserIdentityService 接口的实现。
type userIdentityService struct {
	credentialRepo mysql.CredentialRepository // credentialRepo: 凭证数据仓库。
	userRepo       mysql.UserRepository       // userRepo: 用户数据仓库。
	codeRepo       redis.CodeRepo             // codeRepo: 验证码仓库，绑定手机号时消费验证码。
	db             *gorm.DB                   // db: GORM 数据库连接实例，用于开启跨表事务。
	logger         *core.ZapLogger            // logger: 日志记录器。
}

// NewUserIdentityService 创建一个新的 userIdentityService 实例。
// 设计原因:
// - 采用依赖注入方式，提高了代码的可测试性和灵活性。
func NewUserIdentityService(
	credentialRepo mysql.CredentialRepository,
	userRepo mysql.UserRepository,
	codeRepo redis.CodeRepo,
	db *gorm.DB,
	logger *core.ZapLogger,
) UserIdentityService {
	return &userIdentityService{
		credentialRepo: credentialRepo,
		userRepo:       userRepo,
		codeRepo:       codeRepo,
		db:             db,
		logger:         logger,
	}
}

// entityToVO 将数据库实体转换为对外暴露的视图对象。
// - 凭证秘密值在转换时裁剪掉，不会出现在任何响应里。
func entityToVO(credential *entities.UserCredential) *vo.CredentialVO {
	if credential == nil {
		return nil
	}
	return &vo.CredentialVO{
		CredentialID:   credential.CredentialID,
		UserID:         credential.UserID,
		CredentialType: credential.CredentialType,
		Identifier:     credential.Identifier,
		CreatedAt:      credential.CreatedAt,
		UpdatedAt:      credential.UpdatedAt,
	}
}

// CreateUserWithCredential 实现接口方法，事务内创建用户和首条凭证。
func (s *userIdentityService) CreateUserWithCredential(ctx context.Context, role enums.UserRole, credentialType enums.CredentialType, identifier string, credential string) (*entities.User, error) {
	const operation = "UserIdentityService.CreateUserWithCredential"

	// 1. 唯一性预检
	//    表上的唯一索引是最终防线，预检让绝大多数冲突走干净的业务错误路径。
	_, err := s.credentialRepo.GetByTypeAndIdentifier(ctx, credentialType, identifier)
	if err == nil {
		s.logger.Warn("注册时标识符已被占用",
			zap.String("operation", operation),
			zap.Any("credentialType", credentialType),
			zap.String("identifier", identifier),
		)
		return nil, errs.ErrConflict
	}
	if !errors.Is(err, commonerrors.ErrRepoNotFound) {
		s.logger.Error("注册前查询凭证失败",
			zap.String("operation", operation),
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return nil, commonerrors.ErrSystemError
	}

	// 2. 事务内写入用户和凭证
	user := &entities.User{
		UserID:   uuid.New().String(),
		UserRole: role,
		Status:   enums.StatusActive,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := s.userRepo.CreateUser(ctx, tx, user); txErr != nil {
			return txErr
		}
		return s.credentialRepo.CreateCredential(ctx, tx, &entities.UserCredential{
			UserID:         user.UserID,
			CredentialType: credentialType,
			Identifier:     identifier,
			Credential:     credential,
		})
	})
	if err != nil {
		s.logger.Error("创建用户及凭证事务失败",
			zap.String("operation", operation),
			zap.Any("credentialType", credentialType),
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return nil, commonerrors.ErrSystemError
	}

	s.logger.Info("成功创建新用户及首条凭证",
		zap.String("operation", operation),
		zap.String("userID", user.UserID),
		zap.Any("role", role),
		zap.Any("credentialType", credentialType),
	)
	return user, nil
}

// ResolveByCredential 实现接口方法，按凭证解析用户。
func (s *userIdentityService) ResolveByCredential(ctx context.Context, credentialType enums.CredentialType, identifier string) (*dto.CredentialLookup, error) {
	const operation = "UserIdentityService.ResolveByCredential"

	lookup, err := s.credentialRepo.GetByTypeAndIdentifier(ctx, credentialType, identifier)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		s.logger.Error("解析凭证失败",
			zap.String("operation", operation),
			zap.Any("credentialType", credentialType),
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return nil, commonerrors.ErrSystemError
	}
	return lookup, nil
}

// BindCredential 实现接口方法，为用户绑定新凭证。
func (s *userIdentityService) BindCredential(ctx context.Context, userID string, req *dto.BindCredentialDTO) (*vo.CredentialVO, error) {
	const operation = "UserIdentityService.BindCredential"

	// 按类型做前置校验，得出最终落库的凭证秘密值
	var credentialValue string
	switch req.CredentialType {
	case enums.AccountPassword:
		if req.Credential == "" {
			return nil, errs.ErrValidation
		}
		hashed, err := utils.SetPassword(req.Credential)
		if err != nil {
			s.logger.Error("绑定账号密码时哈希密码失败",
				zap.String("operation", operation),
				zap.String("userID", userID),
				zap.Error(err),
			)
			return nil, commonerrors.ErrSystemError
		}
		credentialValue = hashed

	case enums.Phone:
		if req.Code == "" {
			return nil, errs.ErrValidation
		}
		// 绑定手机号必须先通过短信验证码证明手机号归属
		if err := s.codeRepo.ConsumeCaptcha(ctx, enums.PurposePhoneBinding, req.Identifier, req.Code); err != nil {
			if errors.Is(err, commonerrors.ErrRepoNotFound) {
				s.logger.Warn("绑定手机号时验证码校验失败",
					zap.String("operation", operation),
					zap.String("userID", userID),
					zap.String("phone", req.Identifier),
				)
				return nil, errs.ErrValidation
			}
			s.logger.Error("绑定手机号时消费验证码失败",
				zap.String("operation", operation),
				zap.String("userID", userID),
				zap.Error(err),
			)
			return nil, commonerrors.ErrSystemError
		}

	case enums.Facebook:
		// Facebook 标识符必须由 OAuth 绑定流程向平台验证后写入
		s.logger.Warn("拒绝直接绑定 Facebook 凭证",
			zap.String("operation", operation),
			zap.String("userID", userID),
		)
		return nil, errs.ErrValidation

	default:
		return nil, errs.ErrValidation
	}

	return s.BindVerifiedCredential(ctx, userID, req.CredentialType, req.Identifier, credentialValue)
}

// BindVerifiedCredential 实现接口方法，绑定已完成外部校验的凭证。
func (s *userIdentityService) BindVerifiedCredential(ctx context.Context, userID string, credentialType enums.CredentialType, identifier string, credential string) (*vo.CredentialVO, error) {
	const operation = "UserIdentityService.BindVerifiedCredential"

	// 1. 标识符不能已被任何用户占用
	_, err := s.credentialRepo.GetByTypeAndIdentifier(ctx, credentialType, identifier)
	if err == nil {
		s.logger.Warn("绑定凭证时标识符已被占用",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Any("credentialType", credentialType),
			zap.String("identifier", identifier),
		)
		return nil, errs.ErrConflict
	}
	if !errors.Is(err, commonerrors.ErrRepoNotFound) {
		s.logger.Error("绑定凭证前查询标识符失败",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Error(err),
		)
		return nil, commonerrors.ErrSystemError
	}

	// 2. 同一用户同一类型只允许一条凭证
	existing, err := s.credentialRepo.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("绑定凭证前查询用户凭证列表失败",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Error(err),
		)
		return nil, commonerrors.ErrSystemError
	}
	for _, c := range existing {
		if c.CredentialType == credentialType {
			s.logger.Warn("用户已绑定同类型凭证",
				zap.String("operation", operation),
				zap.String("userID", userID),
				zap.Any("credentialType", credentialType),
			)
			return nil, errs.ErrConflict
		}
	}

	// 3. 落库
	record := &entities.UserCredential{
		UserID:         userID,
		CredentialType: credentialType,
		Identifier:     identifier,
		Credential:     credential,
	}
	if err := s.credentialRepo.CreateCredential(ctx, s.db, record); err != nil {
		s.logger.Error("创建凭证记录失败",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Any("credentialType", credentialType),
			zap.Error(err),
		)
		return nil, commonerrors.ErrSystemError
	}

	s.logger.Info("成功为用户绑定新凭证",
		zap.String("operation", operation),
		zap.String("userID", userID),
		zap.Any("credentialType", credentialType),
	)
	return entityToVO(record), nil
}

// UnbindCredential 实现接口方法，解绑指定类型的凭证。
func (s *userIdentityService) UnbindCredential(ctx context.Context, userID string, credentialType enums.CredentialType) error {
	const operation = "UserIdentityService.UnbindCredential"

	credentials, err := s.credentialRepo.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("解绑凭证前查询用户凭证列表失败",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Error(err),
		)
		return commonerrors.ErrSystemError
	}

	var target *entities.UserCredential
	for _, c := range credentials {
		if c.CredentialType == credentialType {
			target = c
			break
		}
	}
	if target == nil {
		s.logger.Warn("解绑的凭证类型不存在",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Any("credentialType", credentialType),
		)
		return commonerrors.ErrRepoNotFound
	}

	// 用户至少保留一条可登录的凭证，否则账号会被永久锁在门外
	if len(credentials) <= 1 {
		s.logger.Warn("拒绝解绑用户最后一条凭证",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Any("credentialType", credentialType),
		)
		return errs.ErrForbidden
	}

	if err := s.credentialRepo.DeleteByID(ctx, s.db, target.CredentialID); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return commonerrors.ErrRepoNotFound
		}
		s.logger.Error("删除凭证记录失败",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Uint("credentialID", target.CredentialID),
			zap.Error(err),
		)
		return commonerrors.ErrSystemError
	}

	s.logger.Info("成功解绑用户凭证",
		zap.String("operation", operation),
		zap.String("userID", userID),
		zap.Any("credentialType", credentialType),
	)
	return nil
}

// ListCredentials 实现接口方法，列出用户全部凭证。
func (s *userIdentityService) ListCredentials(ctx context.Context, userID string) (*vo.CredentialList, error) {
	const operation = "UserIdentityService.ListCredentials"

	credentials, err := s.credentialRepo.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户凭证列表失败",
			zap.String("operation", operation),
			zap.String("userID", userID),
			zap.Error(err),
		)
		return nil, commonerrors.ErrSystemError
	}

	items := make([]*vo.CredentialVO, 0, len(credentials))
	for _, c := range credentials {
		items = append(items, entityToVO(c))
	}
	return &vo.CredentialList{Items: items}, nil
}
