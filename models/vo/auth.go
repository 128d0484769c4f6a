package vo

// Empty 表示成功但无数据返回的响应体
type Empty struct{}

type Userinfo struct {
	UserID string `json:"userID"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`  // 新认证令牌
	RefreshToken string `json:"refresh_token"` // 新刷新令牌（Web 平台下放入 Cookie，此字段为空）
}

type LoginResponse struct {
	User  Userinfo  `json:"user"`  // 用户信息
	Token TokenPair `json:"token"` // Token 对
}

// CodeStatus 验证码状态查询结果
// - 只反映验证码是否存在及剩余有效期，不回传验证码本身。
type CodeStatus struct {
	Exists     bool  `json:"exists"`     // 验证码是否仍然有效
	TTLSeconds int64 `json:"ttlSeconds"` // 剩余有效秒数，不存在时为 0
}
