package user

import (
	"errors"

	"github.com/Mieluoxxx/Aegis-Auth/internal/crypto"
	"github.com/Mieluoxxx/Aegis-Auth/internal/models"
)

// ErrBadCredentials 邮箱或密码错误
// 用户不存在和密码错误返回同一个错误，避免暴露邮箱是否已注册
var ErrBadCredentials = errors.New("these credentials do not match our records")

// Service 用户业务逻辑层
type Service struct {
	repo   *Repository
	hasher *crypto.Hasher
}

// NewService 创建 Service 实例
func NewService(repo *Repository, hasher *crypto.Hasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Register 注册用户，密码以摘要形式存储
func (s *Service) Register(email, password, fullName string) (*models.User, error) {
	exists, err := s.repo.EmailExists(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	u := &models.User{
		Email:    email,
		Password: s.hasher.MakeDigest(password),
		FullName: fullName,
	}

	if err := s.repo.Create(u); err != nil {
		return nil, err
	}

	return u, nil
}

// Authenticate 校验邮箱和密码
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	u, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.CheckDigest(u.Password, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBadCredentials
	}

	return u, nil
}

// GetUser 根据 ID 获取用户
func (s *Service) GetUser(id uint) (*models.User, error) {
	return s.repo.FindByID(id)
}
