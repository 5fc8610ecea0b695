package api

import (
	"fmt"
	"os"
	"strings"

	"github.com/Mieluoxxx/Aegis-Auth/internal/api/handlers"
	"github.com/Mieluoxxx/Aegis-Auth/internal/api/middleware"
	"github.com/Mieluoxxx/Aegis-Auth/internal/config"
	"github.com/Mieluoxxx/Aegis-Auth/internal/crypto"
	"github.com/Mieluoxxx/Aegis-Auth/internal/session"
	"github.com/Mieluoxxx/Aegis-Auth/internal/token"
	"github.com/Mieluoxxx/Aegis-Auth/internal/user"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// 校验 Cookie 部署模式，防止拼错的模式被当作令牌模式处理
	if cfg.Auth.CookieMode != config.CookieModeSession && cfg.Auth.CookieMode != config.CookieModeToken {
		return nil, fmt.Errorf("invalid cookie mode: %q", cfg.Auth.CookieMode)
	}

	// 解析应用密钥
	appKey, err := crypto.ParseAppKey(cfg.Auth.AppKey)
	if err != nil {
		return nil, err
	}

	hasher, err := crypto.NewHasher(appKey)
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// 创建依赖
	tokenService := token.NewService(
		token.NewRepository(db),
		hasher,
		token.ExpiryPolicy{TTL: cfg.Auth.TokenTTL, Refresh: cfg.Auth.TokenRefresh},
		logger,
	)
	userService := user.NewService(user.NewRepository(db), hasher)
	cookieAuth := session.NewCookieAuth(appKey, cfg.Auth.Cookie)

	tokenHandler := handlers.NewTokenHandler(tokenService, userService, cookieAuth)
	authHandler := handlers.NewAuthHandler(userService, cookieAuth)

	// 创建 Gin 引擎
	router := gin.Default()

	// CORS：按配置的来源后缀匹配，允许携带凭证
	router.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	// 健康检查端点
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Aegis-Auth",
		})
	})

	guard := middleware.AuthGuard(tokenService, cookieAuth, cfg.Auth.CookieMode, logger)

	router.POST("/register", authHandler.Register)
	router.GET("/me", guard, authHandler.Me)

	// 令牌认证路由
	tokenGroup := router.Group("/token")
	{
		tokenGroup.GET("/cookie", tokenHandler.SetCookie)
		tokenGroup.POST("/login", tokenHandler.Login)
		tokenGroup.GET("/logout", guard, tokenHandler.Logout)
	}

	// 会话 Cookie 认证路由
	cookieGroup := router.Group("/cookie")
	{
		cookieGroup.POST("/login", authHandler.Login)
		cookieGroup.GET("/logout", authHandler.Logout)
	}

	return router, nil
}

// corsConfig 构造 CORS 策略
func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowCredentials = true
	cfg.AllowOriginFunc = func(origin string) bool {
		for _, suffix := range origins {
			if strings.HasSuffix(origin, suffix) {
				return true
			}
		}
		return false
	}
	return cfg
}
