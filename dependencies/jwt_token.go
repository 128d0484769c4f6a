package dependencies

import (
	"errors"
	"fmt"
	"time"

	commonEnums "github.com/Xushengqwer/go-common/models/enums"
	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/constants"
	"github.com/Xushengqwer/auth_hub/models/enums"
	"github.com/google/uuid"

	"github.com/golang-jwt/jwt/v5" // 引入 v5 版本的 JWT 包
)

// JWTTokenInterface 定义 JWT 工具的接口
// - 只负责访问令牌（Access Token）的签发和解析。
// - 刷新令牌是持久化的不透明随机串，由令牌服务管理，不经过本工具。
type JWTTokenInterface interface {
	// GenerateAccessToken 生成访问令牌
	// - 输入: userID 用户ID, role 用户角色, status 用户状态, platform 客户端平台
	// - 输出: 访问令牌字符串和可能的错误
	GenerateAccessToken(userID string, role enums.UserRole, status enums.UserStatus, platform commonEnums.Platform) (string, error)

	// ParseAccessToken 解析并验证访问令牌
	// - 输入: tokenString 待解析的令牌字符串
	// - 输出: 解析后的 CustomClaims 和可能的错误
	ParseAccessToken(tokenString string) (*CustomClaims, error)
}

// CustomClaims 定义 JWT 的声明结构体，包含标准字段和自定义字段
type CustomClaims struct {
	UserID               string             `json:"user_id"`  // 用户ID，唯一标识用户
	Role                 enums.UserRole     `json:"role"`     // 用户角色，如客户、商家或管理员
	Status               enums.UserStatus   `json:"status"`   // 用户状态，如活跃或停用
	Platform             commonEnums.Platform `json:"platform"` // 客户端平台，如 Web 或 App
	jwt.RegisteredClaims                    // 嵌入 JWT v5 的标准声明字段
}

// JWTUtility 实现 JWTTokenInterface 接口的结构体
type JWTUtility struct {
	cfg *config.JWTConfig // JWT 配置，包含密钥、签发者等信息
}

// NewJWTUtility 创建 JWTUtility 实例，通过依赖注入初始化
// - 输入: cfg JWT 配置实例
// - 输出: JWTTokenInterface 接口实例
func NewJWTUtility(cfg *config.JWTConfig) JWTTokenInterface {
	return &JWTUtility{cfg: cfg}
}

// GenerateAccessToken 生成访问令牌
// - 输入: userID 用户ID, role 用户角色, status 用户状态, platform 客户端平台
// - 输出: 访问令牌字符串和可能的错误
func (ju *JWTUtility) GenerateAccessToken(userID string, role enums.UserRole, status enums.UserStatus, platform commonEnums.Platform) (string, error) {
	now := time.Now()

	// 创建自定义声明
	claims := &CustomClaims{
		UserID:   userID,
		Role:     role,
		Status:   status,
		Platform: platform,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ju.cfg.Issuer,                                         // 令牌签发者，从配置中获取
			IssuedAt:  jwt.NewNumericDate(now),                               // 签发时间
			ExpiresAt: jwt.NewNumericDate(now.Add(constants.AccessTokenTTL)), // 过期时间，使用常量定义的 TTL
			ID:        uuid.New().String(),                                   // 唯一 JTI
		},
	}

	// 创建令牌，使用 HS256 签名算法
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// 使用访问令牌的密钥签名
	secret := []byte(ju.cfg.SecretKey)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("签名令牌失败: %v", err)
	}
	return signedToken, nil
}

// ParseAccessToken 解析并验证访问令牌
// - 输入: tokenString 待解析的令牌字符串
// - 输出: 解析后的 CustomClaims 和可能的错误
func (ju *JWTUtility) ParseAccessToken(tokenString string) (*CustomClaims, error) {
	secret := []byte(ju.cfg.SecretKey)

	// 创建解析器，启用 v5 的严格验证选项
	parser := jwt.NewParser(
		jwt.WithExpirationRequired(),  // 强制要求令牌包含过期时间
		jwt.WithIssuer(ju.cfg.Issuer), // 验证签发者是否匹配配置中的值
	)

	// 使用 v5 的 Parser 解析令牌
	token, err := parser.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法是否为 HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("签名算法不匹配: %v", token.Header["alg"])
		}
		return secret, nil
	})

	// 如果解析失败，返回错误
	if err != nil {
		return nil, err
	}

	// 类型断言并验证令牌有效性
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("无效的JWT声明")
	}

	return claims, nil
}
