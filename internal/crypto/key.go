package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrMissingAppKey 缺少应用密钥
	ErrMissingAppKey = errors.New("missing APP_KEY")
)

// ParseAppKey 解析应用密钥配置值
// 优先尝试 Base64 解码，否则按原始字节使用；长度必须不小于 32 字节
func ParseAppKey(keyStr string) ([]byte, error) {
	if keyStr == "" {
		return nil, ErrMissingAppKey
	}

	if decoded, err := base64.StdEncoding.DecodeString(keyStr); err == nil && len(decoded) >= 32 {
		return decoded, nil
	}

	if len(keyStr) < 32 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidAppKey, len(keyStr))
	}

	return []byte(keyStr), nil
}

// GenerateAppKey 生成新的应用密钥（用于初始化部署）
// 返回 Base64 编码的密钥字符串
func GenerateAppKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate app key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(key), nil
}
