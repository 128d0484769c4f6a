package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/core" // 引入日志包
	"github.com/Xushengqwer/go-common/models/enums"
	"github.com/Xushengqwer/go-common/response"
	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/constants"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/vo"
	"github.com/Xushengqwer/auth_hub/service/login/auth"
	"github.com/Xushengqwer/auth_hub/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap" // 引入 zap 用于日志字段
)

// AccountController 处理与账号密码认证相关的 HTTP 请求。
// 依赖于 auth.AccountService 来执行核心业务逻辑。
type AccountController struct {
	accountService auth.AccountService // accountService: 账号密码认证服务的实例。
	logger         *core.ZapLogger     // logger: 日志记录器。
	cookieConfig   config.CookieConfig // cookieConfig: Web 平台刷新令牌 Cookie 的配置。
}

// NewAccountController 创建一个新的 AccountController 实例。
// 设计目的:
//   - 通过依赖注入传入 accountService 和 logger，增强了代码的可测试性和模块化。
//
// 参数:
//   - accountService: 实现了 auth.AccountService 接口的服务实例。
//   - logger: 日志记录器实例。
//   - cookieCfg: Cookie 配置。
//
// 返回:
//   - *AccountController: 初始化完成的控制器实例。
func NewAccountController(
	accountService auth.AccountService,
	logger *core.ZapLogger, // 注入 logger
	cookieCfg config.CookieConfig,
) *AccountController {
	return &AccountController{
		accountService: accountService,
		logger:         logger,
		cookieConfig:   cookieCfg,
	}
}

// RegisterHandler 处理用户使用账号密码进行注册的请求。
// @Summary 账号密码注册
// @Description 用户通过提供账号、密码和确认密码来创建新账户。注册成功不自动登录。
// @Tags 账号密码认证
// @Accept json
// @Produce json
// @Param body body dto.AccountRegisterData true "注册信息 (账号、密码、确认密码)"
// @Success 200 {object} docs.SwaggerAPIUserinfoResponse "注册成功，返回新用户 ID"
// @Failure 400 {object} docs.SwaggerAPIErrorResponseString "请求参数无效 (如JSON格式错误、必填项缺失、密码不一致)"
// @Failure 409 {object} docs.SwaggerAPIErrorResponseString "账号已存在"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误 (如数据库操作失败、密码加密失败)"
// @Router /api/v1/auth-hub/account/register [post]
func (ctrl *AccountController) RegisterHandler(c *gin.Context) {
	const operation = "AccountController.RegisterHandler" // 操作标识，用于日志

	// 1. 绑定并校验请求体中的 JSON 数据到 DTO 结构体。
	var accountRegisterData dto.AccountRegisterData
	if err := c.ShouldBindJSON(&accountRegisterData); err != nil {
		ctrl.logger.Warn("注册请求参数绑定失败",
			zap.String("operation", operation),
			zap.Error(err), // 记录具体的绑定错误
		)
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "输入参数无效")
		return
	}

	// 2. 调用服务层执行注册逻辑。
	userInfo, err := ctrl.accountService.Register(c.Request.Context(), accountRegisterData)
	if err != nil {
		ctrl.logger.Warn("账号注册服务返回错误",
			zap.String("operation", operation),
			zap.String("account", accountRegisterData.Account), // 注意脱敏
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	// 3. 注册成功，记录日志并返回用户信息。
	ctrl.logger.Info("账号注册成功",
		zap.String("operation", operation),
		zap.String("userID", userInfo.UserID),
		zap.String("account", accountRegisterData.Account), // 注意脱敏
	)
	response.RespondSuccess(c, userInfo, "注册成功")
}

// LoginHandler 处理用户使用账号密码进行登录的请求。
// @Summary 账号密码登录
// @Description 用户通过提供账号和密码来获取认证令牌。Web 平台的刷新令牌通过 HttpOnly Cookie 下发。
// @Tags 账号密码认证
// @Accept json
// @Produce json
// @Param body body dto.AccountLoginData true "登录信息 (账号、密码、设备信息)"
// @Param X-Platform header string true "客户端平台类型" Enums(web, app) default(web)
// @Success 200 {object} docs.SwaggerAPILoginResponse "登录成功，返回用户信息及访问和刷新令牌"
// @Failure 400 {object} docs.SwaggerAPIErrorResponseString "请求参数无效 (如JSON格式错误、平台类型无效)"
// @Failure 401 {object} docs.SwaggerAPIErrorResponseString "账号不存在或密码错误"
// @Failure 403 {object} docs.SwaggerAPIErrorResponseString "用户状态异常"
// @Failure 429 {object} docs.SwaggerAPIErrorResponseString "登录尝试过于频繁"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误 (如数据库操作失败、令牌生成失败)"
// @Router /api/v1/auth-hub/account/login [post]
func (ctrl *AccountController) LoginHandler(c *gin.Context) {
	const operation = "AccountController.LoginHandler"

	// 1. 绑定并校验请求体中的 JSON 数据。
	var accountLoginData dto.AccountLoginData
	if err := c.ShouldBindJSON(&accountLoginData); err != nil {
		ctrl.logger.Warn("登录请求参数绑定失败",
			zap.String("operation", operation),
			zap.Error(err),
		)
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "输入参数无效")
		return
	}
	fillDeviceInfo(c, &accountLoginData.Device)

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

	// 3. 调用服务层执行登录逻辑。
	userInfo, tokenPair, err := ctrl.accountService.Login(c.Request.Context(), accountLoginData, platform)
	if err != nil {
		ctrl.logger.Warn("账号登录服务返回错误",
			zap.String("operation", operation),
			zap.String("account", accountLoginData.Account), // 注意脱敏
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

		// 准备只包含 AccessToken 的 JSON 响应
		responseData := vo.LoginResponse{
			User:  userInfo,
			Token: vo.TokenPair{AccessToken: tokenPair.AccessToken}, // RefreshToken 为空
		}
		ctrl.logger.Info("账号登录成功 (Web平台，RT已设置到Cookie)", zap.String("operation", operation), zap.String("userID", userInfo.UserID), zap.Any("platform", platform))
		response.RespondSuccess(c, responseData, "登录成功")
	} else {
		// 其他平台: AT 和 RT 都在 JSON
		responseData := vo.LoginResponse{
			User:  userInfo,
			Token: tokenPair,
		}
		ctrl.logger.Info("账号登录成功", zap.String("operation", operation), zap.String("userID", userInfo.UserID), zap.Any("platform", platform))
		response.RespondSuccess(c, responseData, "登录成功")
	}
}

// RegisterRoutes 注册与账号密码认证相关的路由到指定的 Gin 路由组。
// 设计目的:
//   - 将此控制器的所有路由集中定义和注册，便于管理。
//
// 参数:
//   - group: Gin 的路由组实例，所有路由将基于此组的路径前缀。
func (ctrl *AccountController) RegisterRoutes(group *gin.RouterGroup) {
	// 注册账号密码注册接口
	// - 方法: POST
	group.POST("/account/register", ctrl.RegisterHandler)

	// 注册账号密码登录接口
	// - 方法: POST
	group.POST("/account/login", ctrl.LoginHandler)
}
