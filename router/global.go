package router

import (
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/constants"
	swaggerFiles "github.com/swaggo/files"     // swagger-files 包
	ginSwagger "github.com/swaggo/gin-swagger" // gin-swagger 包

	commonMiddleware "github.com/Xushengqwer/go-common/middleware"

	"github.com/gin-gonic/gin"

	otelgin "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Xushengqwer/auth_hub/controller"
	_ "github.com/Xushengqwer/auth_hub/docs" // 引入 docs 包以注册 Swagger 信息
	"github.com/Xushengqwer/auth_hub/initialization"
)

// SetupRouter 初始化并配置 Gin 引擎，注册所有中间件和路由。
// 设计目的:
//   - 作为应用路由配置的统一入口点。
//   - 应用全局中间件，处理通用逻辑如日志、错误恢复、超时等。
//   - 创建 API 版本分组（/api/v1/auth-hub）。
//   - 实例化所有控制器，并将它们的路由注册到相应的分组下。
//
// 注意: 需要登录态的路由（凭证管理、管理端）由各控制器在注册路由时
// 自行挂载认证中间件和角色守卫，全局层不做认证。
//
// 参数:
//   - logger: Zap 日志记录器实例，用于中间件和控制器。
//   - cfg: 应用的全局配置 (AuthHubConfig)。
//   - appServices: 包含所有已初始化服务实例的结构体。
//
// 返回:
//   - *gin.Engine: 配置完成的 Gin 引擎实例，可以直接运行。
func SetupRouter(
	logger *core.ZapLogger,
	cfg *config.AuthHubConfig,
	appServices *initialization.AppServices,
) *gin.Engine {
	logger.Info("开始设置 Gin 路由...")

	// 1. 创建 Gin 引擎实例
	//    使用 gin.Default() 包含 Logger 和 Recovery 中间件。Recovery 是有用的。
	router := gin.Default()

	// 2. 注册全局中间件，顺序有意义

	// OTel Middleware (最先，处理追踪上下文和 Span)
	router.Use(otelgin.Middleware(constants.ServiceName))

	// Panic Recovery (捕获后续中间件和 handler 的 panic)
	router.Use(commonMiddleware.ErrorHandlingMiddleware(logger))

	// Request Logger (记录访问日志，需要 TraceID)
	if baseLogger := logger.Logger(); baseLogger != nil {
		router.Use(commonMiddleware.RequestLoggerMiddleware(baseLogger))
	} else {
		logger.Warn("无法获取底层的 *zap.Logger，跳过 RequestLoggerMiddleware 注册")
	}

	// Request Timeout (超时控制，配置中的 RequestTimeout 是秒数)
	requestTimeout := time.Duration(cfg.ServerConfig.RequestTimeout) * time.Second
	router.Use(commonMiddleware.RequestTimeoutMiddleware(logger, requestTimeout))

	// 3. 创建 API 版本分组 /api/v1/auth-hub
	v1 := router.Group("api/v1/auth-hub")
	logger.Info("API 路由将注册到 api/v1/auth-hub 分组下")

	// 4. 初始化所有控制器
	accountCtrl := controller.NewAccountController(appServices.Account, logger, cfg.CookieConfig)
	phoneCtrl := controller.NewPhoneAuthController(appServices.Phone, logger, cfg.CookieConfig)
	facebookCtrl := controller.NewFacebookAuthController(appServices.Facebook, appServices.TokenService, logger, cfg.CookieConfig)
	tokenCtrl := controller.NewAuthTokenController(appServices.TokenService, logger, cfg.CookieConfig)
	credentialCtrl := controller.NewCredentialController(appServices.IdentityService, appServices.TokenService, logger)
	userManageCtrl := controller.NewUserManageController(appServices.UserManage, appServices.TokenService, logger)

	// 5. 注册每个控制器的路由到 /api/v1/auth-hub 分组
	accountCtrl.RegisterRoutes(v1)
	phoneCtrl.RegisterRoutes(v1)
	facebookCtrl.RegisterRoutes(v1)
	tokenCtrl.RegisterRoutes(v1)
	credentialCtrl.RegisterRoutes(v1)
	userManageCtrl.RegisterRoutes(v1)

	logger.Info("所有业务路由已成功注册")

	// 6. 配置 Swagger UI 路由
	//    访问路径通常是 /swagger/index.html
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	logger.Info("Swagger UI 路由已注册，访问路径: /swagger/index.html")

	// 7. 返回配置好的 Gin 引擎
	return router
}
