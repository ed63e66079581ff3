package service

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"marketsync_v1_202608/internal/config"
	"marketsync_v1_202608/internal/middleware"
)

// ==================== 对外鉴权 ====================

// ErrInvalidPassword 口令不匹配
var ErrInvalidPassword = errors.New("senha inválida")

// AuthService 单操作员口令登录
// 优先用 bcrypt 哈希校验，未配置哈希时退化为明文比对
type AuthService struct {
	cfg config.AuthConfig
}

func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{cfg: cfg}
}

// Login 校验口令并签发访问令牌
func (s *AuthService) Login(password string) (string, error) {
	if s.cfg.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)); err != nil {
			return "", ErrInvalidPassword
		}
	} else {
		if s.cfg.Password == "" || subtle.ConstantTimeCompare([]byte(s.cfg.Password), []byte(password)) != 1 {
			return "", ErrInvalidPassword
		}
	}

	return middleware.GenerateAccessToken("operator")
}
