package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/core"
	"github.com/Xushengqwer/go-common/response"
	"github.com/Xushengqwer/auth_hub/middleware"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/vo"
	"github.com/Xushengqwer/auth_hub/service/identity"
	"github.com/Xushengqwer/auth_hub/service/token"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CredentialController 处理当前登录用户管理自身登录凭证的 HTTP 请求。
// 依赖于 identity.UserIdentityService 来执行核心业务逻辑。
// 所有路由都要求已认证，操作对象始终是令牌声明中的当前用户。
type CredentialController struct {
	identityService identity.UserIdentityService // identityService: 用户身份服务的实例。
	tokenService    token.AuthTokenService       // tokenService: 令牌服务，用于认证中间件。
	logger          *core.ZapLogger              // logger: 日志记录器。
}

// NewCredentialController 创建一个新的 CredentialController 实例。
func NewCredentialController(
	identityService identity.UserIdentityService,
	tokenService token.AuthTokenService,
	logger *core.ZapLogger,
) *CredentialController {
	return &CredentialController{
		identityService: identityService,
		tokenService:    tokenService,
		logger:          logger,
	}
}

// ListHandler 处理查询当前用户全部登录凭证的请求。
// @Summary 查询已绑定的登录方式
// @Description 列出当前登录用户绑定的全部登录凭证，不包含凭证秘密值。
// @Tags 凭证管理
// @Produce json
// @Param Authorization header string true "Bearer 访问令牌"
// @Success 200 {object} docs.SwaggerAPICredentialListResponse "查询成功"
// @Failure 401 {object} docs.SwaggerAPIErrorResponseString "未认证或令牌无效"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/credentials [get]
func (ctrl *CredentialController) ListHandler(c *gin.Context) {
	const operation = "CredentialController.ListHandler"

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "缺少认证信息")
		return
	}

	list, err := ctrl.identityService.ListCredentials(c.Request.Context(), claims.UserID)
	if err != nil {
		ctrl.logger.Error("查询凭证列表服务返回错误",
			zap.String("operation", operation),
			zap.String("userID", claims.UserID),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, list, "查询成功")
}

// BindHandler 处理为当前用户绑定新登录凭证的请求。
// @Summary 绑定新的登录方式
// @Description 为当前登录用户绑定账号密码或手机号凭证。绑定手机号需要先获取用途为 phone_binding 的验证码。
// @Description Facebook 身份请使用 OAuth 绑定接口。
// @Tags 凭证管理
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer 访问令牌"
// @Param body body dto.BindCredentialDTO true "绑定信息 (凭证类型、标识符、凭证或验证码)"
// @Success 200 {object} docs.SwaggerAPICredentialResponse "绑定成功"
// @Failure 400 {object} docs.SwaggerAPIErrorResponseString "请求参数无效或验证码错误"
// @Failure 401 {object} docs.SwaggerAPIErrorResponseString "未认证或令牌无效"
// @Failure 409 {object} docs.SwaggerAPIErrorResponseString "标识符已被占用或已绑定同类型凭证"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/credentials/bind [post]
func (ctrl *CredentialController) BindHandler(c *gin.Context) {
	const operation = "CredentialController.BindHandler"

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "缺少认证信息")
		return
	}

	var bindRequest dto.BindCredentialDTO
	if err := c.ShouldBindJSON(&bindRequest); err != nil {
		ctrl.logger.Warn("绑定凭证请求参数绑定失败",
			zap.String("operation", operation),
			zap.String("userID", claims.UserID),
			zap.Error(err),
		)
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "输入参数无效")
		return
	}

	credentialVO, err := ctrl.identityService.BindCredential(c.Request.Context(), claims.UserID, &bindRequest)
	if err != nil {
		ctrl.logger.Warn("绑定凭证服务返回错误",
			zap.String("operation", operation),
			zap.String("userID", claims.UserID),
			zap.Any("credentialType", bindRequest.CredentialType),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	ctrl.logger.Info("绑定凭证成功",
		zap.String("operation", operation),
		zap.String("userID", claims.UserID),
		zap.Any("credentialType", bindRequest.CredentialType),
	)
	response.RespondSuccess(c, credentialVO, "绑定成功")
}

// UnbindHandler 处理解绑当前用户指定类型凭证的请求。
// @Summary 解绑登录方式
// @Description 解绑当前登录用户指定类型的登录凭证。用户至少要保留一条凭证，解绑最后一条会被拒绝。
// @Tags 凭证管理
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer 访问令牌"
// @Param body body dto.UnbindCredentialDTO true "解绑信息 (凭证类型)"
// @Success 200 {object} docs.SwaggerAPIEmptyResponse "解绑成功"
// @Failure 400 {object} docs.SwaggerAPIErrorResponseString "请求参数无效"
// @Failure 401 {object} docs.SwaggerAPIErrorResponseString "未认证或令牌无效"
// @Failure 403 {object} docs.SwaggerAPIErrorResponseString "仅剩最后一条凭证，禁止解绑"
// @Failure 404 {object} docs.SwaggerAPIErrorResponseString "该类型凭证不存在"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/credentials/unbind [post]
func (ctrl *CredentialController) UnbindHandler(c *gin.Context) {
	const operation = "CredentialController.UnbindHandler"

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "缺少认证信息")
		return
	}

	var unbindRequest dto.UnbindCredentialDTO
	if err := c.ShouldBindJSON(&unbindRequest); err != nil {
		ctrl.logger.Warn("解绑凭证请求参数绑定失败",
			zap.String("operation", operation),
			zap.String("userID", claims.UserID),
			zap.Error(err),
		)
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "输入参数无效")
		return
	}

	if err := ctrl.identityService.UnbindCredential(c.Request.Context(), claims.UserID, unbindRequest.CredentialType); err != nil {
		ctrl.logger.Warn("解绑凭证服务返回错误",
			zap.String("operation", operation),
			zap.String("userID", claims.UserID),
			zap.Any("credentialType", unbindRequest.CredentialType),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	ctrl.logger.Info("解绑凭证成功",
		zap.String("operation", operation),
		zap.String("userID", claims.UserID),
		zap.Any("credentialType", unbindRequest.CredentialType),
	)
	response.RespondSuccess(c, vo.Empty{}, "解绑成功")
}

// RegisterRoutes 注册与凭证管理相关的路由到指定的 Gin 路由组。
// - 整组路由挂载认证中间件，只有持有效访问令牌的用户可访问。
func (ctrl *CredentialController) RegisterRoutes(group *gin.RouterGroup) {
	credentialGroup := group.Group("/credentials")
	credentialGroup.Use(middleware.AuthMiddleware(ctrl.tokenService))
	{
		// 查询已绑定的登录方式
		credentialGroup.GET("", ctrl.ListHandler)

		// 绑定新的登录方式
		credentialGroup.POST("/bind", ctrl.BindHandler)

		// 解绑登录方式
		credentialGroup.POST("/unbind", ctrl.UnbindHandler)
	}
}
