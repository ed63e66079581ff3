package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSyncRateLimiter_Check(t *testing.T) {
	limiter := &SyncRateLimiter{}
	key := SellerSyncKey("magalu", "loja_a")

	// 首次允许
	result := limiter.Check(key, time.Minute)
	if !result.Allowed {
		t.Fatal("primeira execução deveria ser permitida")
	}

	// 冷却期内拒绝，并给出重试时间
	result = limiter.Check(key, time.Minute)
	if result.Allowed {
		t.Fatal("dentro do cooldown deveria ser bloqueada")
	}
	if result.RetryAfter <= 0 || result.RetryAfter > time.Minute {
		t.Errorf("RetryAfter = %v", result.RetryAfter)
	}

	// 不同 key 互不影响
	other := limiter.Check(SellerSyncKey("magalu", "loja_b"), time.Minute)
	if !other.Allowed {
		t.Error("keys diferentes não compartilham cooldown")
	}

	// Reset 后重新允许
	limiter.Reset(key)
	if result := limiter.Check(key, time.Minute); !result.Allowed {
		t.Error("após Reset deveria ser permitida")
	}
}

func TestSyncRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/sync/:platform/:seller", SyncRateLimit(time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 200})
	})

	perform := func(path string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("POST", path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// 独立的平台/卖家组合，避免和全局限流器的其他用例互扰
	w := perform("/sync/testplat/seller_rate_1")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform("/sync/testplat/seller_rate_1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "retry_after")

	// 另一个卖家不受影响
	w = perform("/sync/testplat/seller_rate_2")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFormatRetryMessage(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "同步冷却中，请 30 秒后重试"},
		{2 * time.Minute, "同步冷却中，请 2 分钟后重试"},
		{90 * time.Second, "同步冷却中，请 1 分 30 秒后重试"},
	}
	for _, tt := range tests {
		if got := formatRetryMessage(tt.d); got != tt.want {
			t.Errorf("formatRetryMessage(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
