package token

import (
	"time"

	"github.com/Mieluoxxx/Aegis-Auth/internal/models"
)

// ExpiryPolicy 令牌过期策略
// TTL 为 0 表示永不过期；Refresh 为 true 时每次成功校验都会顺延有效期
type ExpiryPolicy struct {
	TTL     time.Duration
	Refresh bool
	Now     func() time.Time // 为空时使用 time.Now，测试可注入
}

func (p ExpiryPolicy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Expired 判断令牌是否已过期
// 过期只在校验时计算，不会删除数据库中的行
func (p ExpiryPolicy) Expired(tok *models.AccessToken) bool {
	if p.TTL <= 0 {
		return false
	}

	base := tok.CreatedAt
	if p.Refresh && tok.LastUsedAt != nil {
		base = *tok.LastUsedAt
	}

	return !p.now().Before(base.Add(p.TTL))
}
