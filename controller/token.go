package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/core"
	"github.com/Xushengqwer/go-common/models/enums"
	"github.com/Xushengqwer/go-common/response"
	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/constants"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/vo"
	"github.com/Xushengqwer/auth_hub/service/token"
	"github.com/Xushengqwer/auth_hub/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthTokenController 处理与令牌生命周期相关的 HTTP 请求（刷新、退出登录）。
// 依赖于 token.AuthTokenService 来执行核心业务逻辑。
type AuthTokenController struct {
	tokenService token.AuthTokenService // tokenService: 令牌服务的实例。
	logger       *core.ZapLogger        // logger: 日志记录器。
	cookieConfig config.CookieConfig    // cookieConfig: Web 平台刷新令牌 Cookie 的配置。
}

// NewAuthTokenController 创建一个新的 AuthTokenController 实例。
func NewAuthTokenController(
	tokenService token.AuthTokenService,
	logger *core.ZapLogger,
	cookieCfg config.CookieConfig,
) *AuthTokenController {
	return &AuthTokenController{
		tokenService: tokenService,
		logger:       logger,
		cookieConfig: cookieCfg,
	}
}

// extractRefreshToken 按平台提取刷新令牌。
// - Web 平台从 HttpOnly Cookie 读取，其他平台从请求体读取。
func (ctrl *AuthTokenController) extractRefreshToken(c *gin.Context, platform enums.Platform, bodyToken string) string {
	if platform == enums.PlatformWeb {
		if cookieValue, err := c.Cookie(ctrl.cookieConfig.RefreshTokenName); err == nil && cookieValue != "" {
			return cookieValue
		}
		// Cookie 缺失时回退请求体，兼容刚从其他平台迁移的客户端
	}
	return bodyToken
}

// setRefreshTokenCookie 将新的刷新令牌写入 HttpOnly Cookie。
func (ctrl *AuthTokenController) setRefreshTokenCookie(c *gin.Context, refreshToken string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     ctrl.cookieConfig.RefreshTokenName,
		Value:    refreshToken,
		MaxAge:   maxAge,
		Path:     ctrl.cookieConfig.Path,
		Domain:   ctrl.cookieConfig.Domain,
		Secure:   ctrl.cookieConfig.Secure,
		HttpOnly: ctrl.cookieConfig.HttpOnly,
		SameSite: utils.ParseSameSiteString(ctrl.cookieConfig.SameSite),
	})
}

// RefreshTokenHandler 处理刷新令牌换取新令牌对的请求。
// @Summary 刷新令牌
// @Description 使用刷新令牌换取新的访问令牌和刷新令牌（轮换）。旧的刷新令牌立即失效。
// @Description Web 平台从 HttpOnly Cookie 读取刷新令牌并将新令牌写回 Cookie，其他平台通过请求体传递。
// @Tags 令牌管理
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest false "刷新令牌 (非 Web 平台必填) 及设备信息"
// @Param X-Platform header string true "客户端平台类型" Enums(web, app) default(web)
// @Success 200 {object} docs.SwaggerAPITokenPairResponse "刷新成功，返回新的令牌对"
// @Failure 400 {object} docs.SwaggerAPIErrorResponseString "请求参数无效"
// @Failure 401 {object} docs.SwaggerAPIErrorResponseString "刷新令牌无效、已过期或已被吊销"
// @Failure 403 {object} docs.SwaggerAPIErrorResponseString "用户状态异常"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/token/refresh [post]
func (ctrl *AuthTokenController) RefreshTokenHandler(c *gin.Context) {
	const operation = "AuthTokenController.RefreshTokenHandler"

	// 1. 绑定请求体（Web 平台允许空请求体）。
	var refreshRequest dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&refreshRequest); err != nil && c.Request.ContentLength > 0 {
		ctrl.logger.Warn("刷新令牌请求参数绑定失败",
			zap.String("operation", operation),
			zap.Error(err),
		)
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "输入参数无效")
		return
	}
	fillDeviceInfo(c, &refreshRequest.Device)

	// 2. 获取并验证请求头中的 X-Platform 参数。
	platformStr := c.GetHeader("X-Platform")
	platform, err := enums.PlatformFromString(platformStr)
	if err != nil {
		ctrl.logger.Warn("无效的平台类型",
			zap.String("operation", operation),
			zap.String("platformHeader", platformStr),
			zap.Error(err),
		)
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的平台类型")
		return
	}

	// 3. 按平台提取刷新令牌。
	refreshToken := ctrl.extractRefreshToken(c, platform, refreshRequest.RefreshToken)
	if refreshToken == "" {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "缺少刷新令牌")
		return
	}

	// 4. 调用服务层执行轮换。
	tokenPair, err := ctrl.tokenService.RefreshToken(c.Request.Context(), refreshToken, platform, refreshRequest.Device)
	if err != nil {
		ctrl.logger.Warn("刷新令牌服务返回错误",
			zap.String("operation", operation),
			zap.Any("platform", platform),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	// 5. 根据平台处理令牌响应。
	if platform == enums.PlatformWeb {
		// 新的刷新令牌写回 Cookie，JSON 只携带访问令牌
		ctrl.setRefreshTokenCookie(c, tokenPair.RefreshToken, int(constants.RefreshTokenTTL.Seconds()))
		ctrl.logger.Info("令牌刷新成功 (Web平台，RT已写回Cookie)", zap.String("operation", operation))
		response.RespondSuccess(c, vo.TokenPair{AccessToken: tokenPair.AccessToken}, "刷新成功")
	} else {
		ctrl.logger.Info("令牌刷新成功", zap.String("operation", operation), zap.Any("platform", platform))
		response.RespondSuccess(c, tokenPair, "刷新成功")
	}
}

// LogoutHandler 处理用户退出登录的请求。
// @Summary 退出登录
// @Description 吊销当前会话的刷新令牌。操作是幂等的，令牌不存在或已吊销同样返回成功。
// @Description Web 平台同时清除刷新令牌 Cookie。
// @Tags 令牌管理
// @Accept json
// @Produce json
// @Param body body dto.LogoutRequest false "刷新令牌 (非 Web 平台必填)"
// @Param X-Platform header string true "客户端平台类型" Enums(web, app) default(web)
// @Success 200 {object} docs.SwaggerAPIEmptyResponse "退出成功"
// @Failure 400 {object} docs.SwaggerAPIErrorResponseString "请求参数无效"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/token/logout [post]
func (ctrl *AuthTokenController) LogoutHandler(c *gin.Context) {
	const operation = "AuthTokenController.LogoutHandler"

	// 1. 绑定请求体（Web 平台允许空请求体）。
	var logoutRequest dto.LogoutRequest
	if err := c.ShouldBindJSON(&logoutRequest); err != nil && c.Request.ContentLength > 0 {
		ctrl.logger.Warn("退出登录请求参数绑定失败",
			zap.String("operation", operation),
			zap.Error(err),
		)
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "输入参数无效")
		return
	}

	// 2. 获取并验证请求头中的 X-Platform 参数。
	platformStr := c.GetHeader("X-Platform")
	platform, err := enums.PlatformFromString(platformStr)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的平台类型")
		return
	}

	// 3. 按平台提取刷新令牌。
	refreshToken := ctrl.extractRefreshToken(c, platform, logoutRequest.RefreshToken)

	// 4. 吊销令牌。没有令牌可吊销时直接按成功处理，退出是幂等的。
	if refreshToken != "" {
		if err := ctrl.tokenService.Logout(c.Request.Context(), refreshToken); err != nil {
			ctrl.logger.Error("退出登录服务返回错误",
				zap.String("operation", operation),
				zap.Error(err),
			)
			respondServiceError(c, err)
			return
		}
	}

	// 5. Web 平台清除刷新令牌 Cookie。
	if platform == enums.PlatformWeb {
		ctrl.setRefreshTokenCookie(c, "", -1)
	}

	ctrl.logger.Info("退出登录成功", zap.String("operation", operation), zap.Any("platform", platform))
	response.RespondSuccess(c, vo.Empty{}, "退出成功")
}

// RegisterRoutes 注册与令牌管理相关的路由到指定的 Gin 路由组。
func (ctrl *AuthTokenController) RegisterRoutes(group *gin.RouterGroup) {
	// 刷新令牌
	group.POST("/token/refresh", ctrl.RefreshTokenHandler)

	// 退出登录
	group.POST("/token/logout", ctrl.LogoutHandler)
}
