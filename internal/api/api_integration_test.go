package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Mieluoxxx/Aegis-Auth/internal/api"
	"github.com/Mieluoxxx/Aegis-Auth/internal/config"
	"github.com/Mieluoxxx/Aegis-Auth/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupIntegrationEnv 创建完整的集成测试环境
func setupIntegrationEnv(t *testing.T, cookieMode string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, db.AutoMigrate(database), "failed to migrate test database")

	cookieName := "auth"
	if cookieMode == config.CookieModeToken {
		cookieName = "token"
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			CORSOrigins: []string{"localhost"},
		},
		Auth: config.AuthConfig{
			AppKey:     "0123456789abcdef0123456789abcdef",
			CookieMode: cookieMode,
			Cookie: config.CookieConfig{
				Name:     cookieName,
				Path:     "/",
				HTTPOnly: true,
				MaxAge:   24 * time.Hour,
			},
		},
	}

	router, err := api.SetupRouter(database, cfg)
	require.NoError(t, err, "failed to setup router")

	return router
}

// TestSetupRouter_InvalidCookieMode 测试非法 Cookie 模式在构造期失败
func TestSetupRouter_InvalidCookieMode(t *testing.T) {
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			AppKey:     "0123456789abcdef0123456789abcdef",
			CookieMode: "sesion", // 拼写错误的模式
		},
	}

	_, err = api.SetupRouter(database, cfg)
	require.Error(t, err, "SetupRouter should reject an unknown cookie mode")
	assert.Contains(t, err.Error(), "invalid cookie mode")
}

// registerUser 注册测试用户
func registerUser(t *testing.T, router *gin.Engine, email string) uint {
	body, _ := json.Marshal(gin.H{
		"email":     email,
		"password":  "super-secret",
		"full_name": "Test User",
	})
	req, _ := http.NewRequest("POST", "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	var u struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &u))
	require.NotZero(t, u.ID)

	return u.ID
}

// tokenLogin 令牌登录，返回一次性令牌串
func tokenLogin(t *testing.T, router *gin.Engine, email string) string {
	body, _ := json.Marshal(gin.H{
		"email":    email,
		"password": "super-secret",
		"device":   "integration-test",
	})
	req, _ := http.NewRequest("POST", "/token/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, "token login failed: %s", resp.Body.String())

	var tokenResp struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tokenResp))
	assert.Equal(t, "bearer", tokenResp.Type)

	return tokenResp.Token
}

// cookieLogin 会话登录，返回带 Set-Cookie 的响应
func cookieLogin(t *testing.T, router *gin.Engine, email string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(gin.H{
		"email":    email,
		"password": "super-secret",
	})
	req, _ := http.NewRequest("POST", "/cookie/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, "cookie login failed: %s", resp.Body.String())
	require.NotEmpty(t, resp.Result().Cookies(), "cookie login should set a session cookie")

	return resp
}

// TestIntegration_TokenLifecycle 测试令牌的完整生命周期
// 注册 → 登录铸造令牌 → 携带令牌访问 → 登出 → 令牌失效
func TestIntegration_TokenLifecycle(t *testing.T) {
	router := setupIntegrationEnv(t, config.CookieModeSession)
	userID := registerUser(t, router, "alice@example.com")

	transient := tokenLogin(t, router, "alice@example.com")

	// 令牌格式: "<令牌 ID>|<64 位字母数字密钥>"
	assert.Regexp(t, regexp.MustCompile(`^\d+\|[a-zA-Z0-9]{64}$`), transient)

	// 携带令牌访问 /me
	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+transient)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var me struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &me))
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.NotContains(t, resp.Body.String(), "password")

	// 登出
	req, _ = http.NewRequest("GET", "/token/logout", nil)
	req.Header.Set("Authorization", "Bearer "+transient)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	// 登出后令牌立即失效
	req, _ = http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+transient)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

// TestIntegration_RejectsBadCredentials 测试各类无效凭证均返回 401
func TestIntegration_RejectsBadCredentials(t *testing.T) {
	router := setupIntegrationEnv(t, config.CookieModeSession)
	registerUser(t, router, "alice@example.com")
	transient := tokenLogin(t, router, "alice@example.com")
	tokenID := strings.SplitN(transient, "|", 2)[0]

	// 密钥错误
	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s|wrongsecret", tokenID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// 无凭证
	req, _ = http.NewRequest("GET", "/me", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// 格式错误的 Bearer 不回退到有效的会话 Cookie
	loginResp := cookieLogin(t, router, "alice@example.com")
	req, _ = http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer notanumber|xyz")
	for _, c := range loginResp.Result().Cookies() {
		req.AddCookie(c)
	}
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

// TestIntegration_LoginErrors 测试登录与注册失败路径
func TestIntegration_LoginErrors(t *testing.T) {
	router := setupIntegrationEnv(t, config.CookieModeSession)
	registerUser(t, router, "alice@example.com")

	// 密码错误
	body, _ := json.Marshal(gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
		"device":   "integration-test",
	})
	req, _ := http.NewRequest("POST", "/token/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "These credentials do not match our records.")

	// 重复注册
	body, _ = json.Marshal(gin.H{
		"email":     "alice@example.com",
		"password":  "super-secret",
		"full_name": "Alice Again",
	})
	req, _ = http.NewRequest("POST", "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

// TestIntegration_CookieSessionFlow 测试签名会话 Cookie 全流程
func TestIntegration_CookieSessionFlow(t *testing.T) {
	router := setupIntegrationEnv(t, config.CookieModeSession)
	userID := registerUser(t, router, "bob@example.com")

	loginResp := cookieLogin(t, router, "bob@example.com")

	// 携带会话 Cookie 访问 /me
	req, _ := http.NewRequest("GET", "/me", nil)
	for _, c := range loginResp.Result().Cookies() {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var me struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &me))
	assert.Equal(t, userID, me.ID)

	// 登出清除 Cookie
	req, _ = http.NewRequest("GET", "/cookie/logout", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)

	cleared := resp.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Less(t, cleared[0].MaxAge, 0, "logout should expire the session cookie")
}

// TestIntegration_TokenCookieTransport 测试令牌模式下的 Cookie 传输
// 客户端先通过 /token/cookie 选择 Cookie 传输，登录后令牌写入 Cookie
func TestIntegration_TokenCookieTransport(t *testing.T) {
	router := setupIntegrationEnv(t, config.CookieModeToken)
	userID := registerUser(t, router, "carol@example.com")

	// 1. 选择 Cookie 传输
	req, _ := http.NewRequest("GET", "/token/cookie", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NotEmpty(t, resp.Result().Cookies())

	// 2. 携带空 Cookie 登录，响应同时把令牌写入 Cookie
	body, _ := json.Marshal(gin.H{
		"email":    "carol@example.com",
		"password": "super-secret",
		"device":   "browser",
	})
	req, _ = http.NewRequest("POST", "/token/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "token", Value: ""})
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var tokenCookie *http.Cookie
	for _, c := range resp.Result().Cookies() {
		if c.Name == "token" && c.Value != "" {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie, "login should write the token into the cookie")

	// 3. 仅凭 Cookie 访问 /me
	req, _ = http.NewRequest("GET", "/me", nil)
	req.AddCookie(tokenCookie)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var me struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &me))
	assert.Equal(t, userID, me.ID)

	// 4. 登出后 Cookie 被清除、令牌失效
	req, _ = http.NewRequest("GET", "/token/logout", nil)
	req.AddCookie(tokenCookie)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	req, _ = http.NewRequest("GET", "/me", nil)
	req.AddCookie(tokenCookie)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
