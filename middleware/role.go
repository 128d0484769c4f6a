package middleware

import (
	"net/http"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/auth_hub/dependencies"
	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/models/enums"
)

// Authorize 判定令牌声明是否满足角色要求。
// - allowedRoles 为空表示只要求已认证，任何角色都放行。
// - 纯函数，角色判定逻辑独立于 HTTP 层，服务内部也可以直接调用。
func Authorize(claims *dependencies.CustomClaims, allowedRoles ...enums.UserRole) error {
	if claims == nil {
		return errs.ErrUnauthorized
	}
	if len(allowedRoles) == 0 {
		return nil
	}
	for _, role := range allowedRoles {
		if claims.Role == role {
			return nil
		}
	}
	return errs.ErrForbidden
}

// RequireRoles 创建一个角色守卫的 Gin 中间件。
// - 必须挂在 AuthMiddleware 之后，依赖上下文中的令牌声明。
// - 角色不满足要求时返回 403。
func RequireRoles(allowedRoles ...enums.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "缺少认证信息")
			c.Abort()
			return
		}
		if err := Authorize(claims, allowedRoles...); err != nil {
			response.RespondError(c, http.StatusForbidden, response.ErrCodeClientForbidden, "权限不足，禁止访问")
			c.Abort()
			return
		}
		c.Next()
	}
}
