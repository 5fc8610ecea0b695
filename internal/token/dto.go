package token

// TokenResponse 令牌创建响应
// 明文令牌仅在创建时返回这一次，之后无法再获取
type TokenResponse struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// NewTokenResponse 将一次性令牌包装为响应体
func NewTokenResponse(transient string) *TokenResponse {
	return &TokenResponse{Type: "bearer", Token: transient}
}

// LoginRequest 令牌登录请求
// device 是令牌的标签（如设备名）
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Device   string `json:"device" binding:"required,max=100"`
}
