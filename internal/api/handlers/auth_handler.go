package handlers

import (
	"errors"
	"net/http"

	"github.com/Mieluoxxx/Aegis-Auth/internal/api/middleware"
	"github.com/Mieluoxxx/Aegis-Auth/internal/session"
	"github.com/Mieluoxxx/Aegis-Auth/internal/user"
	"github.com/gin-gonic/gin"
)

// AuthHandler 会话 Cookie 认证与用户 HTTP 处理器
type AuthHandler struct {
	users      *user.Service
	cookieAuth *session.CookieAuth
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(users *user.Service, cookieAuth *session.CookieAuth) *AuthHandler {
	return &AuthHandler{users: users, cookieAuth: cookieAuth}
}

// Register 注册用户
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest

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

	u, err := h.users.Register(req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "EMAIL_EXISTS",
					"message": "Could not create user - email already registered",
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
		return
	}

	c.JSON(http.StatusOK, u)
}

// Login 密码登录并签发会话 Cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest

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

	u, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
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
		return
	}

	value, err := h.cookieAuth.Issue(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Internal server error",
			},
		})
		return
	}

	http.SetCookie(c.Writer, h.cookieAuth.Cookie(value))
	c.Status(http.StatusOK)
}

// Logout 清除会话 Cookie
// 签名会话无服务端状态，清除 Cookie 即登出
func (h *AuthHandler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, h.cookieAuth.ClearCookie())
	c.Status(http.StatusOK)
}

// Me 返回当前认证用户的资料
func (h *AuthHandler) Me(c *gin.Context) {
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

	u, err := h.users.GetUser(principal.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			// 主体对应的用户已被删除，按未认证处理
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "You are unauthorized.",
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
		return
	}

	c.JSON(http.StatusOK, u)
}
