package middleware

import (
	"net/http"

	"github.com/Mieluoxxx/Aegis-Auth/internal/config"
	"github.com/Mieluoxxx/Aegis-Auth/internal/session"
	"github.com/Mieluoxxx/Aegis-Auth/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// principalKey Principal 在 gin Context 中的键
const principalKey = "principal"

// Principal 已认证的请求主体
// 每个请求独立解析，不持久化
type Principal struct {
	UserID    uint
	TokenID   uint     // 令牌认证时为所用令牌的 ID，会话认证时为 0
	Abilities []string // 令牌认证时的能力范围，会话认证时为空
	Session   bool     // true 表示来自签名会话 Cookie
}

// CurrentPrincipal 从 gin Context 取出已认证主体
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// AuthGuard 请求认证中间件
// 按优先级依次尝试 Bearer 头和会话 Cookie；Bearer 凭证存在但无效时
// 直接拒绝，不回退到 Cookie。认证失败统一返回 401，不区分失败原因
func AuthGuard(tokenService *token.Service, cookieAuth *session.CookieAuth, cookieMode string, logger zerolog.Logger) gin.HandlerFunc {
	extractors := []extractorFunc{
		bearerExtractor,
		cookieExtractor(cookieAuth.CookieName()),
	}

	return func(c *gin.Context) {
		var cred credential
		result := credentialAbsent

		// 1. 按优先级提取凭证，Found/Malformed 均短路
		for _, extract := range extractors {
			cred, result = extract(c)
			if result != credentialAbsent {
				break
			}
		}

		if result == credentialAbsent {
			unauthorized(c)
			return
		}
		if result == credentialMalformed {
			logger.Debug().Str("path", c.Request.URL.Path).
				Msg("auth rejected: malformed credential")
			unauthorized(c)
			return
		}

		// 2. 认证：Cookie 凭证按部署模式解释
		var principal Principal
		if cred.source == sourceCookie && cookieMode == config.CookieModeSession {
			userID, err := cookieAuth.Resolve(cred.raw)
			if err != nil {
				logger.Debug().Str("path", c.Request.URL.Path).
					Msg("auth rejected: invalid session cookie")
				unauthorized(c)
				return
			}
			principal = Principal{UserID: userID, Session: true}
		} else {
			tok, err := tokenService.VerifyToken(cred.raw)
			if err != nil {
				if token.IsAuthError(err) {
					logger.Debug().Err(err).Str("path", c.Request.URL.Path).
						Msg("auth rejected")
					unauthorized(c)
					return
				}
				// 存储或哈希故障属于运维问题，返回 500
				logger.Error().Err(err).Str("path", c.Request.URL.Path).
					Msg("auth failed on internal error")
				internalError(c)
				return
			}
			principal = Principal{
				UserID:    tok.UserID,
				TokenID:   tok.ID,
				Abilities: tok.Abilities,
			}
		}

		// 3. 将主体存入 Context，供后续处理器使用
		c.Set(principalKey, principal)

		c.Next()
	}
}

// unauthorized 所有认证失败的统一响应，避免成为探测预言机
func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": "You are unauthorized.",
		},
	})
	c.Abort()
}

// internalError 内部错误响应，细节只进日志
func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Internal server error",
		},
	})
	c.Abort()
}
