package crypto

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrInvalidAppKey 应用密钥长度错误
	ErrInvalidAppKey = errors.New("invalid app key: must be at least 32 bytes")
	// ErrMalformedDigest 摘要格式错误，属于内部错误而不是校验失败
	ErrMalformedDigest = errors.New("malformed digest: cannot parse argon2 parameters")
)

// Argon2id 默认参数
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// Hasher 密钥摘要器
// 使用 Argon2id，以服务端应用密钥作为盐参与计算，
// 因此单独泄露数据库摘要无法离线验证密钥
type Hasher struct {
	appKey []byte
}

// NewHasher 创建 Hasher 实例
func NewHasher(appKey []byte) (*Hasher, error) {
	if len(appKey) < 32 {
		return nil, ErrInvalidAppKey
	}
	return &Hasher{appKey: appKey}, nil
}

// MakeDigest 计算明文的摘要
// 返回自描述格式: $argon2id$v=19$m=65536,t=1,p=4$<base64 hash>
func (h *Hasher) MakeDigest(plaintext string) string {
	hash := argon2.IDKey([]byte(plaintext), h.appKey, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(hash))
}

// CheckDigest 以恒定时间校验明文是否匹配摘要
// 摘要本身无法解析时返回 ErrMalformedDigest，而不是 false
func (h *Hasher) CheckDigest(digest, plaintext string) (bool, error) {
	var version, memory, time, threads int

	parts := strings.Split(digest, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != "argon2id" {
		return false, ErrMalformedDigest
	}
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedDigest
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, ErrMalformedDigest
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedDigest
	}

	// 按摘要中记录的参数重新计算，兼容历史参数
	actual := argon2.IDKey([]byte(plaintext), h.appKey,
		uint32(time), uint32(memory), uint8(threads), uint32(len(expected)))

	return subtle.ConstantTimeCompare(expected, actual) == 1, nil
}
