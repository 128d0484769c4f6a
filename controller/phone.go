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
	"github.com/Xushengqwer/auth_hub/service/login/auth"
	"github.com/Xushengqwer/auth_hub/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PhoneAuthController 处理与手机号验证码认证相关的 HTTP 请求。
// 依赖于 auth.PhoneAuthService 来执行核心业务逻辑。
type PhoneAuthController struct {
	phoneAuthService auth.PhoneAuthService // phoneAuthService: 手机号认证服务的实例。
	logger           *core.ZapLogger       // logger: 日志记录器。
	cookieConfig     config.CookieConfig   // cookieConfig: Web 平台刷新令牌 Cookie 的配置。
}

// NewPhoneAuthController 创建一个新的 PhoneAuthController 实例。
func NewPhoneAuthController(
	phoneAuthService auth.PhoneAuthService,
	logger *core.ZapLogger,
	cookieCfg config.CookieConfig,
) *PhoneAuthController {
	return &PhoneAuthController{
		phoneAuthService: phoneAuthService,
		logger:           logger,
		cookieConfig:     cookieCfg,
	}
}

// SendCodeHandler 处理发送短信验证码的请求。
// @Summary 发送短信验证码
// @Description 按用途（登录、注册、绑定手机号）向指定手机号下发验证码，同一手机号受发送频率限制。
// @Tags 手机号认证
// @Accept json
// @Produce json
// @Param body body dto.SendCodeRequest true "发送信息 (手机号、验证码用途)"
// @Success 200 {object} docs.SwaggerAPIEmptyResponse "发送成功"
// @Failure 400 {object} docs.SwaggerAPIErrorResponseString "请求参数无效 (如手机号格式错误、用途无效)"
// @Failure 429 {object} docs.SwaggerAPIErrorResponseString "发送过于频繁"
// @Failure 503 {object} docs.SwaggerAPIErrorResponseString "短信网关服务异常"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/phone/send-code [post]
func (ctrl *PhoneAuthController) SendCodeHandler(c *gin.Context) {
	const operation = "PhoneAuthController.SendCodeHandler"

	// 1. 绑定并校验请求体。
	var sendCodeRequest dto.SendCodeRequest
	if err := c.ShouldBindJSON(&sendCodeRequest); err != nil {
		ctrl.logger.Warn("发送验证码请求参数绑定失败",
			zap.String("operation", operation),
			zap.Error(err),
		)
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "输入参数无效")
		return
	}

	// 2. 调用服务层发送验证码。
	if err := ctrl.phoneAuthService.SendCode(c.Request.Context(), sendCodeRequest); err != nil {
		ctrl.logger.Warn("发送验证码服务返回错误",
			zap.String("operation", operation),
			zap.String("phone", sendCodeRequest.Phone), // 注意脱敏
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	// 3. 发送成功。
	ctrl.logger.Info("验证码发送成功",
		zap.String("operation", operation),
		zap.String("phone", sendCodeRequest.Phone), // 注意脱敏
		zap.String("purpose", string(sendCodeRequest.Purpose)),
	)
	response.RespondSuccess(c, vo.Empty{}, "验证码发送成功")
}

// CodeStatusHandler 处理查询验证码状态的请求。
// @Summary 查询验证码状态
// @Description 查询指定手机号和用途下的验证码是否仍然有效及剩余有效秒数，不返回验证码本身。
// @Tags 手机号认证
// @Produce json
// @Param phone query string true "手机号"
// @Param purpose query string true "验证码用途" Enums(login, register, phone_binding)
// @Success 200 {object} docs.SwaggerAPICodeStatusResponse "查询成功"
// @Failure 400 {object} docs.SwaggerAPIErrorResponseString "请求参数无效"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/phone/code-status [get]
func (ctrl *PhoneAuthController) CodeStatusHandler(c *gin.Context) {
	const operation = "PhoneAuthController.CodeStatusHandler"

	// 1. 绑定并校验查询参数。
	var query dto.CodeStatusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		ctrl.logger.Warn("查询验证码状态参数绑定失败",
			zap.String("operation", operation),
			zap.Error(err),
		)
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "输入参数无效")
		return
	}

	// 2. 调用服务层查询状态。
	status, err := ctrl.phoneAuthService.CheckCodeStatus(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, status, "查询成功")
}

// LoginOrRegisterHandler 处理手机号验证码登录或自动注册的请求。
// @Summary 手机号登录或注册
// @Description 用户通过手机号和验证码登录，手机号未注册时自动创建新账户。Web 平台的刷新令牌通过 HttpOnly Cookie 下发。
// @Tags 手机号认证
// @Accept json
// @Produce json
// @Param body body dto.PhoneLoginOrRegisterData true "登录信息 (手机号、验证码、设备信息)"
// @Param X-Platform header string true "客户端平台类型" Enums(web, app) default(web)
// @Success 200 {object} docs.SwaggerAPILoginResponse "登录成功，返回用户信息及访问和刷新令牌"
// @Failure 400 {object} docs.SwaggerAPIErrorResponseString "请求参数无效"
// @Failure 401 {object} docs.SwaggerAPIErrorResponseString "验证码错误或已过期"
// @Failure 403 {object} docs.SwaggerAPIErrorResponseString "用户状态异常"
// @Failure 429 {object} docs.SwaggerAPIErrorResponseString "尝试过于频繁"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/phone/login [post]
func (ctrl *PhoneAuthController) LoginOrRegisterHandler(c *gin.Context) {
	const operation = "PhoneAuthController.LoginOrRegisterHandler"

	// 1. 绑定并校验请求体。
	var loginData dto.PhoneLoginOrRegisterData
	if err := c.ShouldBindJSON(&loginData); err != nil {
		ctrl.logger.Warn("手机号登录请求参数绑定失败",
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
	userInfo, tokenPair, err := ctrl.phoneAuthService.LoginOrRegister(c.Request.Context(), loginData, platform)
	if err != nil {
		ctrl.logger.Warn("手机号登录服务返回错误",
			zap.String("operation", operation),
			zap.String("phone", loginData.Phone), // 注意脱敏
			zap.Any("platform", platform),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	// 4. 根据平台处理令牌响应
	if platform == enums.PlatformWeb {
		// Web 平台: RT 在 HttpOnly Cookie, AT 在 JSON
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
		ctrl.logger.Info("手机号登录成功 (Web平台，RT已设置到Cookie)", zap.String("operation", operation), zap.String("userID", userInfo.UserID), zap.Any("platform", platform))
		response.RespondSuccess(c, responseData, "登录成功")
	} else {
		responseData := vo.LoginResponse{
			User:  userInfo,
			Token: tokenPair,
		}
		ctrl.logger.Info("手机号登录成功", zap.String("operation", operation), zap.String("userID", userInfo.UserID), zap.Any("platform", platform))
		response.RespondSuccess(c, responseData, "登录成功")
	}
}

// RegisterRoutes 注册与手机号认证相关的路由到指定的 Gin 路由组。
func (ctrl *PhoneAuthController) RegisterRoutes(group *gin.RouterGroup) {
	// 发送短信验证码
	group.POST("/phone/send-code", ctrl.SendCodeHandler)

	// 查询验证码状态
	group.GET("/phone/code-status", ctrl.CodeStatusHandler)

	// 手机号登录或注册
	group.POST("/phone/login", ctrl.LoginOrRegisterHandler)
}
