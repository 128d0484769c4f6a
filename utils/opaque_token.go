package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateOpaqueToken 生成指定字节长度的不透明随机令牌。
// - 使用 crypto/rand 保证不可预测性，base64url 编码避免出现特殊字符。
// - 用于刷新令牌等需要持久化比对的凭证，不携带任何可解析信息。
func GenerateOpaqueToken(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成随机令牌失败: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
