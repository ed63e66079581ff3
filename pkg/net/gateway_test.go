package net

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// ==================== 测试辅助 ====================

// fakeSession 可编程的 TokenSource
type fakeSession struct {
	token        string
	refreshCalls int
	refreshErr   error
	nextToken    string
}

func (s *fakeSession) Token() string { return s.token }

func (s *fakeSession) Refresh(ctx context.Context) error {
	s.refreshCalls++
	if s.refreshErr != nil {
		return s.refreshErr
	}
	s.token = s.nextToken
	return nil
}

func testClient() *fakeSession {
	return &fakeSession{token: "old-token", nextToken: "new-token"}
}

// ==================== GetJSON ====================

func TestGateway_GetJSON_OK(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"ok"}`)
	}))
	defer srv.Close()

	session := testClient()
	gw := NewBearerGateway(NewAPIClient(5*time.Second), session)

	var out struct {
		Name string `json:"name"`
	}
	if err := gw.GetJSON(context.Background(), srv.URL, nil, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out.Name != "ok" {
		t.Errorf("name = %s, want ok", out.Name)
	}
	if gotAuth != "Bearer old-token" {
		t.Errorf("Authorization = %s, want Bearer old-token", gotAuth)
	}
	if session.refreshCalls != 0 {
		t.Errorf("refreshCalls = %d, want 0", session.refreshCalls)
	}
}

func TestGateway_GetJSON_RefreshRetryOnce(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "Bearer new-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"refreshed"}`)
	}))
	defer srv.Close()

	session := testClient()
	gw := NewBearerGateway(NewAPIClient(5*time.Second), session)

	var out struct {
		Name string `json:"name"`
	}
	if err := gw.GetJSON(context.Background(), srv.URL, nil, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out.Name != "refreshed" {
		t.Errorf("name = %s, want refreshed", out.Name)
	}
	if session.refreshCalls != 1 {
		t.Errorf("refreshCalls = %d, want 1", session.refreshCalls)
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2", calls)
	}
}

func TestGateway_GetJSON_RetryOnlyOnce(t *testing.T) {
	// 刷新后依旧 401：不允许再刷新第二次
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	session := testClient()
	gw := NewBearerGateway(NewAPIClient(5*time.Second), session)

	err := gw.GetJSON(context.Background(), srv.URL, nil, nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", statusErr.StatusCode)
	}
	if session.refreshCalls != 1 {
		t.Errorf("refreshCalls = %d, want 1", session.refreshCalls)
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2", calls)
	}
}

func TestGateway_GetJSON_RefreshFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	session := testClient()
	session.refreshErr = errors.New("invalid_grant")
	gw := NewBearerGateway(NewAPIClient(5*time.Second), session)

	err := gw.GetJSON(context.Background(), srv.URL, nil, nil)
	var refreshErr *RefreshError
	if !errors.As(err, &refreshErr) {
		t.Fatalf("error = %v, want *RefreshError", err)
	}
	if calls != 1 {
		t.Errorf("upstream calls = %d, want 1 (刷新失败后不应重试)", calls)
	}
}

func TestGateway_GetJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "slow down")
	}))
	defer srv.Close()

	session := testClient()
	gw := NewBearerGateway(NewAPIClient(5*time.Second), session)

	err := gw.GetJSON(context.Background(), srv.URL, nil, nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", statusErr.StatusCode)
	}
	if session.refreshCalls != 0 {
		t.Errorf("refreshCalls = %d, want 0 (非 401 不应刷新)", session.refreshCalls)
	}
}

func TestGateway_GetJSON_CustomHeader(t *testing.T) {
	// Amazon SP-API 风格：令牌走 x-amz-access-token，不带 Bearer 前缀
	var gotToken, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("x-amz-access-token")
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	session := testClient()
	gw := NewHeaderGateway(NewAPIClient(5*time.Second), session, "x-amz-access-token")

	if err := gw.GetJSON(context.Background(), srv.URL, nil, nil); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if gotToken != "old-token" {
		t.Errorf("x-amz-access-token = %s, want old-token", gotToken)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %s, want empty", gotAuth)
	}
}

func TestGateway_GetJSON_QueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_type")
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	gw := NewBearerGateway(NewAPIClient(5*time.Second), testClient())
	if err := gw.GetJSON(context.Background(), srv.URL, map[string]string{"search_type": "scan"}, nil); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if gotQuery != "scan" {
		t.Errorf("search_type = %s, want scan", gotQuery)
	}
}
