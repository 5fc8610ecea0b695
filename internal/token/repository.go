package token

import (
	"errors"
	"time"

	"github.com/Mieluoxxx/Aegis-Auth/internal/models"
	"gorm.io/gorm"
)

// ErrTokenNotFound 令牌不存在
var ErrTokenNotFound = errors.New("token not found")

// Repository 访问令牌数据访问层
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建 Repository 实例
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 持久化访问令牌记录
func (r *Repository) Create(tok *models.AccessToken) error {
	return r.db.Create(tok).Error
}

// FindByID 根据 ID 查找访问令牌
func (r *Repository) FindByID(id uint) (*models.AccessToken, error) {
	var tok models.AccessToken
	err := r.db.First(&tok, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &tok, nil
}

// Delete 删除访问令牌
// 返回受影响的行数，没有匹配行不是错误
func (r *Repository) Delete(id uint) (int64, error) {
	result := r.db.Delete(&models.AccessToken{}, id)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Touch 更新令牌的最近使用时间
// 单行原子更新，并发丢失更新可以接受
func (r *Repository) Touch(id uint, usedAt time.Time) (int64, error) {
	result := r.db.Model(&models.AccessToken{}).
		Where("id = ?", id).
		UpdateColumn("last_used_at", usedAt)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
