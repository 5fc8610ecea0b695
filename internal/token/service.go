package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mieluoxxx/Aegis-Auth/internal/crypto"
	"github.com/Mieluoxxx/Aegis-Auth/internal/models"
	"github.com/rs/zerolog"
)

var (
	// ErrSecretMismatch 密钥与存储的摘要不匹配
	ErrSecretMismatch = errors.New("token secret mismatch")
	// ErrTokenExpired 令牌已过期
	ErrTokenExpired = errors.New("token expired")
)

// secretLength 明文密钥长度
const secretLength = 64

// secretAlphabet 密钥字符表
const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSecret 生成令牌明文密钥
// 64 个字符，逐字符从 crypto/rand 取样，无取模偏差
func GenerateSecret() (string, error) {
	max := big.NewInt(int64(len(secretAlphabet)))
	buf := make([]byte, secretLength)

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate token secret: %w", err)
		}
		buf[i] = secretAlphabet[n.Int64()]
	}

	return string(buf), nil
}

// Service 访问令牌业务逻辑层
type Service struct {
	repo   *Repository
	hasher *crypto.Hasher
	policy ExpiryPolicy
	logger zerolog.Logger
}

// NewService 创建 Service 实例
func NewService(repo *Repository, hasher *crypto.Hasher, policy ExpiryPolicy, logger zerolog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, policy: policy, logger: logger}
}

// CreateToken 为用户铸造新令牌
// 返回一次性的 "<id>|<secret>" 明文表示和持久化记录（仅含摘要）
// abilities 为空时默认为 ["*"]
func (s *Service) CreateToken(userID uint, name string, abilities []string) (string, *models.AccessToken, error) {
	if len(abilities) == 0 {
		abilities = []string{models.AbilityAll}
	}

	secret, err := GenerateSecret()
	if err != nil {
		return "", nil, err
	}

	tok := &models.AccessToken{
		UserID:       userID,
		Name:         name,
		SecretDigest: s.hasher.MakeDigest(secret),
		Abilities:    abilities,
	}

	if err := s.repo.Create(tok); err != nil {
		return "", nil, err
	}

	return FormatToken(tok.ID, secret), tok, nil
}

// VerifyToken 校验令牌的公开表示
// 解析 → 查找 → 摘要比对 → 过期判断 → 更新最近使用时间
// 任一环节失败即认证失败；touch 失败只记录告警，不影响认证结果
func (s *Service) VerifyToken(raw string) (*models.AccessToken, error) {
	id, secret, err := ParseToken(raw)
	if err != nil {
		return nil, err
	}

	tok, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.CheckDigest(tok.SecretDigest, secret)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSecretMismatch
	}

	if s.policy.Expired(tok) {
		return nil, ErrTokenExpired
	}

	now := s.policy.now()
	if _, err := s.repo.Touch(tok.ID, now); err != nil {
		s.logger.Warn().Err(err).Uint("token_id", tok.ID).
			Msg("failed to update token last_used_at")
	} else {
		tok.LastUsedAt = &now
	}

	return tok, nil
}

// RevokeToken 吊销令牌（登出）
// 令牌已不存在时返回 ErrTokenNotFound，调用方可据此区分重复登出
func (s *Service) RevokeToken(id uint) error {
	rows, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// IsAuthError 判断错误是否属于认证失败类
// 这一类错误在 HTTP 边界统一折叠为 401，避免泄露失败原因
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrTokenNotFound) ||
		errors.Is(err, ErrSecretMismatch) ||
		errors.Is(err, ErrTokenExpired)
}
