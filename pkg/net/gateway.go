package net

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// TokenSource 提供当前访问令牌，并负责在 401 时换新
// 实现方持有可变的 (access, refresh) 令牌对，Refresh 只改内存状态
type TokenSource interface {
	Token() string
	Refresh(ctx context.Context) error
}

// StatusError 非 200 响应
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// RefreshError 401 后换 Token 失败，对该卖家是致命的
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// NewAPIClient 创建统一超时配置的 Resty 客户端
// 它是全系统对上游 API 的统一网络出口
func NewAPIClient(timeout time.Duration) *resty.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "MarketSync-Go-App/1.0")
}

// Gateway 鉴权请求执行器
// 统一处理超时、状态码分类，以及 401 -> 刷新 -> 仅重试一次的约定
type Gateway struct {
	client  *resty.Client
	session TokenSource

	// 各平台注入令牌的方式不同：
	// Mercado Livre / Magalu 用 Authorization: Bearer xxx
	// Amazon SP-API 用 x-amz-access-token: xxx
	authHeader string
	authPrefix string
}

// NewBearerGateway Authorization: Bearer 风格
func NewBearerGateway(client *resty.Client, session TokenSource) *Gateway {
	return &Gateway{client: client, session: session, authHeader: "Authorization", authPrefix: "Bearer "}
}

// NewHeaderGateway 自定义头风格 (如 x-amz-access-token)
func NewHeaderGateway(client *resty.Client, session TokenSource, header string) *Gateway {
	return &Gateway{client: client, session: session, authHeader: header}
}

// GetJSON 执行一次鉴权 GET 并把 200 响应解析进 out
// 401 时通过 TokenSource 换新后重试恰好一次；刷新失败返回 RefreshError
// 其余非 200 返回 StatusError，网络异常原样返回
func (g *Gateway) GetJSON(ctx context.Context, url string, query map[string]string, out interface{}) error {
	resp, err := g.do(ctx, url, query, out)
	if err != nil {
		return err
	}

	if resp.StatusCode() == http.StatusOK {
		return nil
	}

	if resp.StatusCode() == http.StatusUnauthorized && g.session != nil {
		if err := g.session.Refresh(ctx); err != nil {
			return &RefreshError{Err: err}
		}
		resp, err = g.do(ctx, url, query, out)
		if err != nil {
			return err
		}
		if resp.StatusCode() == http.StatusOK {
			return nil
		}
	}

	return &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
}

func (g *Gateway) do(ctx context.Context, url string, query map[string]string, out interface{}) (*resty.Response, error) {
	req := g.client.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if g.session != nil {
		req.SetHeader(g.authHeader, g.authPrefix+g.session.Token())
	}
	if out != nil {
		req.SetResult(out)
	}
	return req.Get(url)
}
