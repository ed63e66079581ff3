package service

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// ==================== 令牌会话 ====================

// tokenResponse OAuth 令牌端点的响应体
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// TokenSession 单卖家的令牌会话，实现 net.TokenSource
// Refresh 用 refresh_token 置换新令牌对并更新内存凭证
// 端点返回新 refresh_token 则一并轮换，缺失则沿用旧值
type TokenSession struct {
	platform     string
	tokenURL     string
	clientID     string
	clientSecret string
	cred         *Credential
	client       *resty.Client
}

// NewTokenSession 创建令牌会话
// Mercado Livre / Magalu 的 tokenURL 形如 {auth_base}/oauth/token
// Amazon 的为 LWA 端点 {auth_base}/auth/o2/token
func NewTokenSession(platform, tokenURL, clientID, clientSecret string, cred *Credential, client *resty.Client) *TokenSession {
	return &TokenSession{
		platform:     platform,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		cred:         cred,
		client:       client,
	}
}

// Token 当前访问令牌
func (s *TokenSession) Token() string {
	return s.cred.AccessToken
}

// Refresh 执行一次 refresh_token 置换
func (s *TokenSession) Refresh(ctx context.Context) error {
	var tok tokenResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"client_id":     s.clientID,
			"client_secret": s.clientSecret,
			"refresh_token": s.cred.RefreshToken,
		}).
		SetResult(&tok).
		Post(s.tokenURL)
	if err != nil {
		return fmt.Errorf("requisição de token falhou: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("endpoint de token respondeu %d: %s", resp.StatusCode(), resp.String())
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("endpoint de token não retornou access_token")
	}

	s.cred.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		s.cred.RefreshToken = tok.RefreshToken
	}
	return nil
}
