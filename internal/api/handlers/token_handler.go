package handlers

import (
	"errors"
	"net/http"

	"github.com/Mieluoxxx/Aegis-Auth/internal/api/middleware"
	"github.com/Mieluoxxx/Aegis-Auth/internal/session"
	"github.com/Mieluoxxx/Aegis-Auth/internal/token"
	"github.com/Mieluoxxx/Aegis-Auth/internal/user"
	"github.com/gin-gonic/gin"
)

// TokenHandler 令牌认证 HTTP 处理器
type TokenHandler struct {
	tokens     *token.Service
	users      *user.Service
	cookieAuth *session.CookieAuth
}

// NewTokenHandler 创建 TokenHandler 实例
func NewTokenHandler(tokens *token.Service, users *user.Service, cookieAuth *session.CookieAuth) *TokenHandler {
	return &TokenHandler{tokens: tokens, users: users, cookieAuth: cookieAuth}
}

// SetCookie 客户端选择 Cookie 传输模式
// 先种一个空的 http-only Cookie，登录时令牌会写入同名 Cookie
func (h *TokenHandler) SetCookie(c *gin.Context) {
	http.SetCookie(c.Writer, h.cookieAuth.Cookie(""))
	c.Status(http.StatusOK)
}

// Login 密码登录并铸造令牌
// 明文令牌只在本次响应中出现，之后无法再获取
func (h *TokenHandler) Login(c *gin.Context) {
	var req token.LoginRequest

	// 绑定请求体
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request parameters",
				"details": err.Error(),
			},
		})
		return
	}

	// 校验密码
	u, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		h.handleLoginError(c, err)
		return
	}

	// 铸造令牌，能力范围默认为 ["*"]
	transient, _, err := h.tokens.CreateToken(u.ID, req.Device, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Internal server error",
			},
		})
		return
	}

	// 客户端此前选择了 Cookie 传输时，同时把令牌写入 Cookie
	if _, err := c.Cookie(h.cookieAuth.CookieName()); err == nil {
		http.SetCookie(c.Writer, h.cookieAuth.Cookie(transient))
	}

	c.JSON(http.StatusOK, token.NewTokenResponse(transient))
}

// Logout 登出：吊销当前令牌并指示客户端清除 Cookie
func (h *TokenHandler) Logout(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "You are unauthorized.",
			},
		})
		return
	}

	// 吊销服务端令牌行；令牌在请求期间已被并发删除时视为登出成功
	if principal.TokenID != 0 {
		if err := h.tokens.RevokeToken(principal.TokenID); err != nil &&
			!errors.Is(err, token.ErrTokenNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Internal server error",
				},
			})
			return
		}
	}

	// 清除持有令牌的 Cookie
	if _, err := c.Cookie(h.cookieAuth.CookieName()); err == nil {
		http.SetCookie(c.Writer, h.cookieAuth.ClearCookie())
	}

	c.Status(http.StatusNoContent)
}

// handleLoginError 处理登录错误
func (h *TokenHandler) handleLoginError(c *gin.Context, err error) {
	if errors.Is(err, user.ErrBadCredentials) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "BAD_CREDENTIALS",
				"message": "These credentials do not match our records.",
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Internal server error",
		},
	})
}
