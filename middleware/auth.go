package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/auth_hub/constants"
	"github.com/Xushengqwer/auth_hub/dependencies"
	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/service/token"
)

// AuthMiddleware 创建一个校验访问令牌的 Gin 中间件。
// - 从 Authorization 头提取 Bearer 令牌，委托令牌服务做签名、时效和用户状态校验。
// - 校验通过后将令牌声明写入请求上下文，供后续处理器和角色守卫使用。
// - 令牌缺失、格式错误、签名无效、已过期都返回 401；用户已被停用返回 403。
func AuthMiddleware(tokenService token.AuthTokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 提取 Bearer 令牌
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "缺少认证令牌")
			c.Abort()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "认证令牌格式错误")
			c.Abort()
			return
		}

		// 2. 校验令牌和用户状态
		claims, err := tokenService.VerifyAccessToken(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, errs.ErrForbidden) {
				response.RespondError(c, http.StatusForbidden, response.ErrCodeClientForbidden, "用户状态异常，禁止访问")
			} else {
				response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "认证令牌无效或已过期")
			}
			c.Abort()
			return
		}

		// 3. 声明写入上下文
		c.Set(constants.ClaimsContextKey, claims)
		c.Next()
	}
}

// ClaimsFromContext 从请求上下文中取出认证中间件写入的令牌声明。
// - 在未经过 AuthMiddleware 的路由上调用会返回 false。
func ClaimsFromContext(c *gin.Context) (*dependencies.CustomClaims, bool) {
	value, exists := c.Get(constants.ClaimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*dependencies.CustomClaims)
	return claims, ok
}
