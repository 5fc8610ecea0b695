package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CookieMode 会话 Cookie 的部署模式
const (
	// CookieModeSession Cookie 中存放签名的会话值（无需查库）
	CookieModeSession = "session"
	// CookieModeToken Cookie 中存放 "<id>|<secret>" 令牌串
	CookieModeToken = "token"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`              // 数据库文件路径
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大生命周期
	AutoMigrate     bool          `mapstructure:"auto_migrate"`      // 是否自动迁移
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	LogLevel    string   `mapstructure:"log_level"`
	CORSOrigins []string `mapstructure:"cors_origins"` // 允许的跨域来源后缀
}

// CookieConfig 会话 Cookie 配置
type CookieConfig struct {
	Name     string        `mapstructure:"name"`
	Domain   string        `mapstructure:"domain"`
	Path     string        `mapstructure:"path"`
	Secure   bool          `mapstructure:"secure"`
	HTTPOnly bool          `mapstructure:"http_only"`
	MaxAge   time.Duration `mapstructure:"max_age"`
}

// AuthConfig 认证配置
// AppKey 在启动时注入各组件，业务逻辑不直接读环境变量
type AuthConfig struct {
	AppKey       string        `mapstructure:"app_key"`       // 服务端主密钥
	TokenTTL     time.Duration `mapstructure:"token_ttl"`     // 令牌有效期，0 表示永不过期
	TokenRefresh bool          `mapstructure:"token_refresh"` // 使用时是否顺延有效期
	CookieMode   string        `mapstructure:"cookie_mode"`   // session / token
	Cookie       CookieConfig  `mapstructure:"cookie"`
}

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// LoadConfig 加载配置（默认值 + 环境变量覆盖）
func LoadConfig() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:        8080,
			LogLevel:    "info",
			CORSOrigins: []string{"localhost"},
		},
		Database: DatabaseConfig{
			Path:            "./data/aegis.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			AutoMigrate:     true,
		},
		Auth: AuthConfig{
			CookieMode: CookieModeSession,
			Cookie: CookieConfig{
				Path:     "/",
				HTTPOnly: true,
				MaxAge:   24 * time.Hour,
			},
		},
	}

	// 环境变量覆盖
	if appKey := os.Getenv("APP_KEY"); appKey != "" {
		config.Auth.AppKey = appKey
	}

	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		config.Database.Path = dbPath
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			config.Server.Port = p
		}
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		config.Auth.TokenTTL = d
	}

	if refresh := os.Getenv("TOKEN_REFRESH"); refresh != "" {
		b, err := strconv.ParseBool(refresh)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_REFRESH: %w", err)
		}
		config.Auth.TokenRefresh = b
	}

	if mode := os.Getenv("COOKIE_MODE"); mode != "" {
		if mode != CookieModeSession && mode != CookieModeToken {
			return nil, fmt.Errorf("invalid COOKIE_MODE: %q", mode)
		}
		config.Auth.CookieMode = mode
	}

	if domain := os.Getenv("APP_DOMAIN"); domain != "" {
		config.Auth.Cookie.Domain = domain
	}

	if secure := os.Getenv("APP_SECURE"); secure != "" {
		b, err := strconv.ParseBool(secure)
		if err != nil {
			return nil, fmt.Errorf("invalid APP_SECURE: %w", err)
		}
		config.Auth.Cookie.Secure = b
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		config.Server.CORSOrigins = strings.Split(origins, ",")
	}

	// Cookie 名称随部署模式变化：会话模式为 auth，令牌模式为 token
	if config.Auth.Cookie.Name == "" {
		if config.Auth.CookieMode == CookieModeToken {
			config.Auth.Cookie.Name = "token"
		} else {
			config.Auth.Cookie.Name = "auth"
		}
	}

	return config, nil
}
