package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedToken 令牌字符串格式无效
var ErrMalformedToken = errors.New("malformed token")

// ParseToken 解析令牌的公开表示 "<id>|<secret>"
// 要求恰好一个 "|" 分隔符，左侧为非负整数 ID，右侧为非空密钥
// ID 按十进制整数解析，"007" 等前导零形式归一化为 7，
// 因此 FormatToken 只对规范形式的输入做到逐字节往返
func ParseToken(s string) (uint, string, error) {
	idPart, secret, ok := strings.Cut(s, "|")
	if !ok || secret == "" || strings.Contains(secret, "|") {
		return 0, "", ErrMalformedToken
	}

	id, err := strconv.ParseUint(idPart, 10, 32)
	if err != nil {
		return 0, "", ErrMalformedToken
	}

	return uint(id), secret, nil
}

// FormatToken 生成令牌的公开表示
func FormatToken(id uint, secret string) string {
	return fmt.Sprintf("%d|%s", id, secret)
}
