package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/core"
	"github.com/Xushengqwer/go-common/models/enums"
	"github.com/Xushengqwer/go-common/response"
	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/constants"
	"github.com/Xushengqwer/auth_hub/middleware"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/vo"
	"github.com/Xushengqwer/auth_hub/service/login/oAuth"
	"github.com/Xushengqwer/auth_hub/service/token"
	"github.com/Xushengqwer/auth_hub/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FacebookAuthController 处理与 Facebook 联合登录相关的 HTTP 请求。
// 依赖于 oAuth.FacebookAuthService 来执行核心业务逻辑。
type FacebookAuthController struct {
	facebookAuthService oAuth.FacebookAuthService // facebookAuthService: Facebook 认证服务的实例。
	tokenService        token.AuthTokenService    // tokenService: 令牌服务，用于绑定接口的认证中间件。
	logger              *core.ZapLogger           // logger: 日志记录器。
	cookieConfig        config.CookieConfig       // cookieConfig: Web 平台刷新令牌 Cookie 的配置。
}

// NewFacebookAuthController 创建一个新的 FacebookAuthController 实例。
func NewFacebookAuthController(
	facebookAuthService oAuth.FacebookAuthService,
	tokenService token.AuthTokenService,
	logger *core.ZapLogger,
	cookieCfg config.CookieConfig,
) *FacebookAuthController {
	return &FacebookAuthController{
		facebookAuthService: facebookAuthService,
		tokenService:        tokenService,
		logger:              logger,
		cookieConfig:        cookieCfg,
	}
}

// LoginHandler 处理 Facebook 登录或自动注册的请求。
// @Summary Facebook 登录或注册
// @Description 用户通过 Facebook SDK 获取的访问令牌登录，后端向 Graph API 校验令牌。
// @Description Facebook 身份未绑定任何用户时自动创建新账户。Web 平台的刷新令牌通过 HttpOnly Cookie 下发。
// @Tags Facebook 认证
// @Accept json
// @Produce json
// @Param body body dto.FacebookLoginData true "登录信息 (Facebook 访问令牌、设备信息)"
// @Param X-Platform header string true "客户端平台类型" Enums(web, app) default(web)
// @Success 200 {object} docs.SwaggerAPILoginResponse "登录成功，返回用户信息及访问和刷新令牌"
// @Failure 400 {object} docs.SwaggerAPIErrorResponseString "请求参数无效"
// @Failure 401 {object} docs.SwaggerAPIErrorResponseString "Facebook 访问令牌无效或已过期"
// @Failure 403 {object} docs.SwaggerAPIErrorResponseString "用户状态异常"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/oauth/facebook/login [post]
func (ctrl *FacebookAuthController) LoginHandler(c *gin.Context) {
	const operation = "FacebookAuthController.LoginHandler"

	// 1. 绑定并校验请求体。
	var loginData dto.FacebookLoginData
	if err := c.ShouldBindJSON(&loginData); err != nil {
		ctrl.logger.Warn("Facebook 登录请求参数绑定失败",
			zap.String("operation", operation),
			zap.Error(err),
		)
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "输入参数无效")
		return
	}
	fillDeviceInfo(c, &loginData.Device)

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

	// 3. 调用服务层执行登录或注册逻辑。
	userInfo, tokenPair, err := ctrl.facebookAuthService.LoginOrRegister(c.Request.Context(), loginData, platform)
	if err != nil {
		ctrl.logger.Warn("Facebook 登录服务返回错误",
			zap.String("operation", operation),
			zap.Any("platform", platform),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	// 4. 根据平台处理令牌响应
	if platform == enums.PlatformWeb {
		rtMaxAge := int(constants.RefreshTokenTTL.Seconds())
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     ctrl.cookieConfig.RefreshTokenName,
			Value:    tokenPair.RefreshToken,
			MaxAge:   rtMaxAge,
			Path:     ctrl.cookieConfig.Path,
			Domain:   ctrl.cookieConfig.Domain,
			Secure:   ctrl.cookieConfig.Secure,
			HttpOnly: ctrl.cookieConfig.HttpOnly,
			SameSite: utils.ParseSameSiteString(ctrl.cookieConfig.SameSite),
		})
		responseData := vo.LoginResponse{
			User:  userInfo,
			Token: vo.TokenPair{AccessToken: tokenPair.AccessToken},
		}
		ctrl.logger.Info("Facebook 登录成功 (Web平台，RT已设置到Cookie)", zap.String("operation", operation), zap.String("userID", userInfo.UserID), zap.Any("platform", platform))
		response.RespondSuccess(c, responseData, "登录成功")
	} else {
		responseData := vo.LoginResponse{
			User:  userInfo,
			Token: tokenPair,
		}
		ctrl.logger.Info("Facebook 登录成功", zap.String("operation", operation), zap.String("userID", userInfo.UserID), zap.Any("platform", platform))
		response.RespondSuccess(c, responseData, "登录成功")
	}
}

// BindHandler 处理已登录用户绑定 Facebook 身份的请求。
// @Summary 绑定 Facebook 身份
// @Description 当前登录用户提交 Facebook 访问令牌，后端校验后将该 Facebook 身份绑定到当前账户。
// @Tags Facebook 认证
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer 访问令牌"
// @Param body body dto.FacebookBindData true "绑定信息 (Facebook 访问令牌)"
// @Success 200 {object} docs.SwaggerAPICredentialResponse "绑定成功"
// @Failure 400 {object} docs.SwaggerAPIErrorResponseString "请求参数无效"
// @Failure 401 {object} docs.SwaggerAPIErrorResponseString "未认证或 Facebook 访问令牌无效"
// @Failure 409 {object} docs.SwaggerAPIErrorResponseString "该 Facebook 身份已被占用或已绑定同类型凭证"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/oauth/facebook/bind [post]
func (ctrl *FacebookAuthController) BindHandler(c *gin.Context) {
	const operation = "FacebookAuthController.BindHandler"

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "缺少认证信息")
		return
	}

	var bindData dto.FacebookBindData
	if err := c.ShouldBindJSON(&bindData); err != nil {
		ctrl.logger.Warn("绑定 Facebook 请求参数绑定失败",
			zap.String("operation", operation),
			zap.String("userID", claims.UserID),
			zap.Error(err),
		)
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "输入参数无效")
		return
	}

	credentialVO, err := ctrl.facebookAuthService.Bind(c.Request.Context(), claims.UserID, bindData)
	if err != nil {
		ctrl.logger.Warn("绑定 Facebook 服务返回错误",
			zap.String("operation", operation),
			zap.String("userID", claims.UserID),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	ctrl.logger.Info("绑定 Facebook 成功",
		zap.String("operation", operation),
		zap.String("userID", claims.UserID),
	)
	response.RespondSuccess(c, credentialVO, "绑定成功")
}

// RegisterRoutes 注册与 Facebook 认证相关的路由到指定的 Gin 路由组。
func (ctrl *FacebookAuthController) RegisterRoutes(group *gin.RouterGroup) {
	// Facebook 登录或注册，无需认证
	group.POST("/oauth/facebook/login", ctrl.LoginHandler)

	// 绑定 Facebook 身份，要求已认证
	group.POST("/oauth/facebook/bind", middleware.AuthMiddleware(ctrl.tokenService), ctrl.BindHandler)
}
