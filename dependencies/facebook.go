package dependencies

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Xushengqwer/auth_hub/config"
)

// FacebookClient 定义了与 Facebook Graph API 交互的客户端接口。
// - 主要功能是校验客户端上传的访问令牌，并换取用户的 Facebook ID。
type FacebookClient interface {
	// ValidateAccessToken 校验访问令牌并返回令牌对应的用户信息。
	// - ctx: 用于控制请求的上下文，例如超时或取消。
	// - accessToken: 客户端通过 Facebook SDK 登录后获取的访问令牌。
	// - 返回: facebookID (用户唯一标识), name (用户昵称), 以及可能的错误。
	// - 令牌无效或过期时，Graph API 返回业务错误，会封装成 error 返回。
	ValidateAccessToken(ctx context.Context, accessToken string) (facebookID, name string, err error)
}

// facebookClient 是 FacebookClient 接口的实现。
type facebookClient struct {
	config *config.FacebookConfig // config 存储 Facebook 应用的 AppID 和 Secret
	client *http.Client           // client 是用于发送 HTTP 请求的客户端实例
}

// facebookMeResponse 定义了 Graph API /me 接口响应的结构。
type facebookMeResponse struct {
	ID    string `json:"id"`   // 用户唯一标识
	Name  string `json:"name"` // 用户昵称
	Error *struct {
		Message string `json:"message"` // 错误信息
		Type    string `json:"type"`    // 错误类型，如 OAuthException
		Code    int    `json:"code"`    // 错误码
	} `json:"error"` // 业务错误（成功时不出现）
}

const defaultGraphAPIBaseURL = "https://graph.facebook.com"

// NewFacebookClient 创建一个新的 facebookClient 实例。
// - 依赖注入 Facebook 配置和 HTTP 客户端。
func NewFacebookClient(config *config.FacebookConfig) FacebookClient {
	return &facebookClient{
		config: config,
		client: &http.Client{
			// 设置合理的 HTTP 请求超时时间
			Timeout: 10 * time.Second,
		},
	}
}

// ValidateAccessToken 实现接口方法，调用 Graph API 校验令牌。
func (f *facebookClient) ValidateAccessToken(ctx context.Context, accessToken string) (string, string, error) {
	// 1. 构造请求 URL
	// - 使用 url.Values 安全地编码查询参数。
	baseURL := f.config.GraphAPIBaseURL
	if baseURL == "" {
		baseURL = defaultGraphAPIBaseURL
	}
	params := url.Values{}
	params.Set("fields", "id,name")
	params.Set("access_token", accessToken)
	apiURL := fmt.Sprintf("%s/me?%s", baseURL, params.Encode())

	// 2. 创建 HTTP GET 请求
	// - 使用 http.NewRequestWithContext 传递上下文，允许超时和取消。
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		// 包装创建请求时的错误
		return "", "", fmt.Errorf("facebookClient.ValidateAccessToken: 创建 Graph API 请求失败: %w", err)
	}

	// 3. 发送 HTTP 请求
	resp, err := f.client.Do(req)
	if err != nil {
		// 包装发送请求时的错误 (例如网络问题、超时)
		return "", "", fmt.Errorf("facebookClient.ValidateAccessToken: 请求 Graph API 失败: %w", err)
	}
	// 确保响应体在使用后关闭，防止资源泄露
	defer resp.Body.Close()

	// 4. 读取响应体
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// 包装读取响应体时的错误
		return "", "", fmt.Errorf("facebookClient.ValidateAccessToken: 读取 Graph API 响应体失败: %w", err)
	}

	// 5. 解析 JSON 响应
	// - Graph API 在令牌无效时返回 4xx 状态码，错误详情在 body 的 error 字段中。
	var result facebookMeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		// 包装 JSON 解析错误
		return "", "", fmt.Errorf("facebookClient.ValidateAccessToken: 解析 Graph API 响应失败: %w", err)
	}

	// 6. 检查业务错误
	if result.Error != nil {
		// 返回包含 Facebook 错误码和错误信息的错误
		return "", "", fmt.Errorf("facebookClient.ValidateAccessToken: Graph API 业务错误: code=%d, type=%s, msg=%s",
			result.Error.Code, result.Error.Type, result.Error.Message)
	}
	if result.ID == "" {
		return "", "", fmt.Errorf("facebookClient.ValidateAccessToken: Graph API 响应缺少用户 ID, 状态码: %d", resp.StatusCode)
	}

	// 7. 成功获取，返回 facebookID 和昵称
	return result.ID, result.Name, nil
}
