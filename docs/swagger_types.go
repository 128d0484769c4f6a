package docs

// 这个文件定义了专门用于 Swagger 文档注解的类型。
// 由于 swaggo/swag 工具目前不支持直接解析泛型类型（如 response.APIResponse[T]），
// 我们需要为每个在控制器注解中使用的具体泛型实例化类型定义一个非泛型的包装器。

import (
	"github.com/Xushengqwer/go-common/response" // 导入通用响应包
	"github.com/Xushengqwer/auth_hub/models/vo" // 导入 VO 包
)

// --- 成功响应包装类型 ---

// SwaggerAPIUserinfoResponse 包装了 response.APIResponse[vo.Userinfo]
// 用于 AccountController.RegisterHandler
type SwaggerAPIUserinfoResponse struct {
	response.APIResponse[vo.Userinfo]
}

// SwaggerAPILoginResponse 包装了 response.APIResponse[vo.LoginResponse]
// 用于 AccountController.LoginHandler, PhoneAuthController.LoginOrRegisterHandler,
// FacebookAuthController.LoginHandler
type SwaggerAPILoginResponse struct {
	response.APIResponse[vo.LoginResponse]
}

// SwaggerAPIEmptyResponse 包装了 response.APIResponse[vo.Empty] (用于表示成功但无数据返回的情况)
// 用于 PhoneAuthController.SendCodeHandler, AuthTokenController.LogoutHandler,
// CredentialController.UnbindHandler, UserManageController 的各个接口
type SwaggerAPIEmptyResponse struct {
	response.APIResponse[vo.Empty]
}

// SwaggerAPITokenPairResponse 包装了 response.APIResponse[vo.TokenPair]
// 用于 AuthTokenController.RefreshTokenHandler
type SwaggerAPITokenPairResponse struct {
	response.APIResponse[vo.TokenPair]
}

// SwaggerAPICodeStatusResponse 包装了 response.APIResponse[vo.CodeStatus]
// 用于 PhoneAuthController.CodeStatusHandler
type SwaggerAPICodeStatusResponse struct {
	response.APIResponse[vo.CodeStatus]
}

// SwaggerAPICredentialResponse 包装了 response.APIResponse[vo.CredentialVO]
// 用于 CredentialController.BindHandler, FacebookAuthController.BindHandler
type SwaggerAPICredentialResponse struct {
	response.APIResponse[vo.CredentialVO]
}

// SwaggerAPICredentialListResponse 包装了 response.APIResponse[vo.CredentialList]
// 用于 CredentialController.ListHandler
type SwaggerAPICredentialListResponse struct {
	response.APIResponse[vo.CredentialList]
}

// SwaggerAPISessionListResponse 包装了 response.APIResponse[vo.SessionList]
// 用于 UserManageController.ListSessionsHandler
type SwaggerAPISessionListResponse struct {
	response.APIResponse[vo.SessionList]
}

// --- 失败响应包装类型 ---

// SwaggerAPIErrorResponseString 包装了 response.APIResponse[string]
type SwaggerAPIErrorResponseString struct {
	response.APIResponse[string]
}
