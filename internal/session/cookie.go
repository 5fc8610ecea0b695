package session

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Mieluoxxx/Aegis-Auth/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession 会话值无效（签名错误、过期或内容非法）
var ErrInvalidSession = errors.New("invalid session")

// CookieAuth 签名会话 Cookie
// 会话值直接携带用户 ID，由服务端密钥做完整性保护，不查数据库；
// 轮换签名密钥会同时作废所有已签发的会话
type CookieAuth struct {
	key []byte
	cfg config.CookieConfig
}

// NewCookieAuth 创建 CookieAuth 实例
func NewCookieAuth(appKey []byte, cfg config.CookieConfig) *CookieAuth {
	return &CookieAuth{key: appKey, cfg: cfg}
}

// Issue 为用户签发会话值
// 过期时间与 Cookie 的 max-age 一致，由传输层负责使其失效
func (a *CookieAuth) Issue(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": now.Unix(),
		"exp": now.Add(a.cfg.MaxAge).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
}

// Resolve 校验会话值并取出用户 ID
// 所有失败原因统一折叠为 ErrInvalidSession
func (a *CookieAuth) Resolve(value string) (uint, error) {
	parsed, err := jwt.Parse(value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.key, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidSession
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidSession
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return 0, ErrInvalidSession
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, ErrInvalidSession
	}

	return uint(userID), nil
}

// CookieName 返回配置的 Cookie 名称
func (a *CookieAuth) CookieName() string {
	return a.cfg.Name
}

// Cookie 按配置的安全属性构造会话 Cookie
func (a *CookieAuth) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     a.cfg.Name,
		Value:    value,
		Domain:   a.cfg.Domain,
		Path:     a.cfg.Path,
		Secure:   a.cfg.Secure,
		HttpOnly: a.cfg.HTTPOnly,
		MaxAge:   int(a.cfg.MaxAge / time.Second),
	}
}

// ClearCookie 构造立即过期的 Cookie，指示客户端清除会话
func (a *CookieAuth) ClearCookie() *http.Cookie {
	c := a.Cookie("")
	c.MaxAge = -1
	return c
}
