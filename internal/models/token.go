package models

import (
	"time"

	"gorm.io/gorm"
)

// AbilityAll 通配能力，表示令牌不受权限范围限制
const AbilityAll = "*"

// AccessToken 个人访问令牌
// 数据库中只保存密钥摘要，明文密钥仅在创建时返回一次
type AccessToken struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`
	SecretDigest string         `gorm:"type:text;not null" json:"-"`
	Abilities    []string       `gorm:"type:text;serializer:json" json:"abilities"`
	CreatedAt    time.Time      `json:"created_at"`
	LastUsedAt   *time.Time     `json:"last_used_at,omitempty"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"` // 软删除支持
}

// TableName 指定表名
func (AccessToken) TableName() string {
	return "personal_access_tokens"
}
