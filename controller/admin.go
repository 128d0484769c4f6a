package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/core"
	"github.com/Xushengqwer/go-common/response"
	"github.com/Xushengqwer/auth_hub/middleware"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/enums"
	"github.com/Xushengqwer/auth_hub/models/vo"
	"github.com/Xushengqwer/auth_hub/service/admin"
	"github.com/Xushengqwer/auth_hub/service/token"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserManageController 处理管理员管理用户账号的 HTTP 请求。
// 依赖于 admin.UserManageService 来执行核心业务逻辑。
// 整组路由要求管理员角色。
type UserManageController struct {
	manageService admin.UserManageService // manageService: 用户管理服务的实例。
	tokenService  token.AuthTokenService  // tokenService: 令牌服务，用于认证中间件。
	logger        *core.ZapLogger         // logger: 日志记录器。
}

// NewUserManageController 创建一个新的 UserManageController 实例。
func NewUserManageController(
	manageService admin.UserManageService,
	tokenService token.AuthTokenService,
	logger *core.ZapLogger,
) *UserManageController {
	return &UserManageController{
		manageService: manageService,
		tokenService:  tokenService,
		logger:        logger,
	}
}

// UpdateStatusHandler 处理变更用户状态的请求。
// @Summary 变更用户状态
// @Description 管理员将指定用户设置为活跃、待验证或停用。停用会同时吊销该用户全部会话。
// @Tags 用户管理
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer 访问令牌 (管理员)"
// @Param userID path string true "目标用户 ID"
// @Param body body dto.UpdateUserStatusDTO true "目标状态"
// @Success 200 {object} docs.SwaggerAPIEmptyResponse "变更成功"
// @Failure 400 {object} docs.SwaggerAPIErrorResponseString "请求参数无效"
// @Failure 401 {object} docs.SwaggerAPIErrorResponseString "未认证或令牌无效"
// @Failure 403 {object} docs.SwaggerAPIErrorResponseString "权限不足"
// @Failure 404 {object} docs.SwaggerAPIErrorResponseString "用户不存在"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/admin/users/{userID}/status [put]
func (ctrl *UserManageController) UpdateStatusHandler(c *gin.Context) {
	const operation = "UserManageController.UpdateStatusHandler"

	userID := c.Param("userID")
	if userID == "" {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "缺少用户 ID")
		return
	}

	var statusRequest dto.UpdateUserStatusDTO
	if err := c.ShouldBindJSON(&statusRequest); err != nil {
		ctrl.logger.Warn("变更用户状态请求参数绑定失败",
			zap.String("operation", operation),
			zap.String("targetUserID", userID),
			zap.Error(err),
		)
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "输入参数无效")
		return
	}

	if err := ctrl.manageService.UpdateUserStatus(c.Request.Context(), userID, *statusRequest.Status); err != nil {
		ctrl.logger.Warn("变更用户状态服务返回错误",
			zap.String("operation", operation),
			zap.String("targetUserID", userID),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	ctrl.logger.Info("变更用户状态成功",
		zap.String("operation", operation),
		zap.String("targetUserID", userID),
		zap.Any("status", *statusRequest.Status),
	)
	response.RespondSuccess(c, vo.Empty{}, "变更成功")
}

// ForceLogoutHandler 处理强制下线用户的请求。
// @Summary 强制下线用户
// @Description 管理员吊销指定用户的全部活跃会话，该用户所有客户端都需要重新登录。
// @Tags 用户管理
// @Produce json
// @Param Authorization header string true "Bearer 访问令牌 (管理员)"
// @Param userID path string true "目标用户 ID"
// @Success 200 {object} docs.SwaggerAPIEmptyResponse "操作成功"
// @Failure 401 {object} docs.SwaggerAPIErrorResponseString "未认证或令牌无效"
// @Failure 403 {object} docs.SwaggerAPIErrorResponseString "权限不足"
// @Failure 404 {object} docs.SwaggerAPIErrorResponseString "用户不存在"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/admin/users/{userID}/force-logout [post]
func (ctrl *UserManageController) ForceLogoutHandler(c *gin.Context) {
	const operation = "UserManageController.ForceLogoutHandler"

	userID := c.Param("userID")
	if userID == "" {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "缺少用户 ID")
		return
	}

	revoked, err := ctrl.manageService.ForceLogout(c.Request.Context(), userID)
	if err != nil {
		ctrl.logger.Warn("强制下线服务返回错误",
			zap.String("operation", operation),
			zap.String("targetUserID", userID),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}

	ctrl.logger.Info("强制下线成功",
		zap.String("operation", operation),
		zap.String("targetUserID", userID),
		zap.Int64("revokedCount", revoked),
	)
	response.RespondSuccess(c, vo.Empty{}, "操作成功")
}

// ListSessionsHandler 处理查询用户活跃会话的请求。
// @Summary 查询用户活跃会话
// @Description 管理员查看指定用户当前未吊销且未过期的会话列表，不包含令牌值。
// @Tags 用户管理
// @Produce json
// @Param Authorization header string true "Bearer 访问令牌 (管理员)"
// @Param userID path string true "目标用户 ID"
// @Success 200 {object} docs.SwaggerAPISessionListResponse "查询成功"
// @Failure 401 {object} docs.SwaggerAPIErrorResponseString "未认证或令牌无效"
// @Failure 403 {object} docs.SwaggerAPIErrorResponseString "权限不足"
// @Failure 500 {object} docs.SwaggerAPIErrorResponseString "系统内部错误"
// @Router /api/v1/auth-hub/admin/users/{userID}/sessions [get]
func (ctrl *UserManageController) ListSessionsHandler(c *gin.Context) {
	const operation = "UserManageController.ListSessionsHandler"

	userID := c.Param("userID")
	if userID == "" {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "缺少用户 ID")
		return
	}

	sessions, err := ctrl.manageService.ListUserSessions(c.Request.Context(), userID)
	if err != nil {
		ctrl.logger.Error("查询用户会话服务返回错误",
			zap.String("operation", operation),
			zap.String("targetUserID", userID),
			zap.Error(err),
		)
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, sessions, "查询成功")
}

// RegisterRoutes 注册与用户管理相关的路由到指定的 Gin 路由组。
// - 整组路由挂载认证中间件和管理员角色守卫。
func (ctrl *UserManageController) RegisterRoutes(group *gin.RouterGroup) {
	adminGroup := group.Group("/admin/users")
	adminGroup.Use(middleware.AuthMiddleware(ctrl.tokenService), middleware.RequireRoles(enums.RoleAdmin))
	{
		// 变更用户状态
		adminGroup.PUT("/:userID/status", ctrl.UpdateStatusHandler)

		// 强制下线用户
		adminGroup.POST("/:userID/force-logout", ctrl.ForceLogoutHandler)

		// 查询用户活跃会话
		adminGroup.GET("/:userID/sessions", ctrl.ListSessionsHandler)
	}
}
