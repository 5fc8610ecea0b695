package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// credentialSource 凭证来源
type credentialSource int

const (
	sourceBearer credentialSource = iota // Authorization 头
	sourceCookie                         // 会话 Cookie
)

// extractResult 提取结果
// Found / Malformed 会中止后续提取器，只有 Absent 才继续向后尝试，
// 保证"存在但无效"的凭证不会降级到更弱的机制
type extractResult int

const (
	credentialFound extractResult = iota
	credentialAbsent
	credentialMalformed
)

// credential 提取到的原始凭证
type credential struct {
	source credentialSource
	raw    string
}

// extractorFunc 凭证提取策略，按优先级依次尝试
type extractorFunc func(c *gin.Context) (credential, extractResult)

// bearerExtractor 从 Authorization 头提取 Bearer 凭证
func bearerExtractor(c *gin.Context) (credential, extractResult) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return credential{}, credentialAbsent
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return credential{}, credentialMalformed
	}

	return credential{source: sourceBearer, raw: parts[1]}, credentialFound
}

// cookieExtractor 从指定名称的 Cookie 提取凭证
// 空值 Cookie 是客户端选择 Cookie 传输的标记，不算凭证
func cookieExtractor(name string) extractorFunc {
	return func(c *gin.Context) (credential, extractResult) {
		value, err := c.Cookie(name)
		if err != nil || value == "" {
			return credential{}, credentialAbsent
		}

		return credential{source: sourceCookie, raw: value}, credentialFound
	}
}
