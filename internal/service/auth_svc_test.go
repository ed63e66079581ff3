package service

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"marketsync_v1_202608/internal/config"
	"marketsync_v1_202608/internal/middleware"
)

func TestAuthService_Login_PlainPassword(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{Password: "segredo"})

	token, err := svc.Login("segredo")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Fatal("token vazio")
	}

	// 签发的令牌可以被中间件解析
	claims, err := middleware.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Operator != "operator" {
		t.Errorf("operator = %s", claims.Operator)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{Password: "segredo"})

	_, err := svc.Login("errada")
	if !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("error = %v, want ErrInvalidPassword", err)
	}
}

func TestAuthService_Login_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := NewAuthService(config.AuthConfig{PasswordHash: string(hash)})

	if _, err := svc.Login("segredo"); err != nil {
		t.Errorf("Login() error = %v", err)
	}
	if _, err := svc.Login("errada"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("error = %v, want ErrInvalidPassword", err)
	}
}

func TestAuthService_Login_NoPasswordConfigured(t *testing.T) {
	// 未配置任何口令：一律拒绝，避免空口令放行
	svc := NewAuthService(config.AuthConfig{})

	if _, err := svc.Login(""); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("error = %v, want ErrInvalidPassword", err)
	}
	if _, err := svc.Login("qualquer"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("error = %v, want ErrInvalidPassword", err)
	}
}
