package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 同步限流 ====================

// 采集会对上游 API 发起大量请求，手动触发需要冷却窗口
// 按「平台 × 卖家」维度限流，全量同步用全局键

// SyncRateLimiter 同步任务限流器
type SyncRateLimiter struct {
	locks sync.Map // key -> *lockEntry
}

type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

var globalLimiter = &SyncRateLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *SyncRateLimiter {
	return globalLimiter
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Check 检查是否允许执行，允许时更新最后执行时间
func (r *SyncRateLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)
	if elapsed < interval {
		return CheckResult{Allowed: false, RetryAfter: interval - elapsed}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的限流
func (r *SyncRateLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// SellerSyncKey 生成「平台 × 卖家」限流键
func SellerSyncKey(platform, seller string) string {
	return fmt.Sprintf("sync:%s:%s", platform, seller)
}

// GlobalSyncKey 生成全量同步限流键
func GlobalSyncKey(platform string) string {
	return fmt.Sprintf("sync:%s:*", platform)
}

// ==================== Gin 中间件 ====================

// DefaultSyncInterval 手动同步的默认冷却间隔
const DefaultSyncInterval = 10 * time.Minute

// SyncRateLimit 同步限流中间件
// 路由需要携带 :platform 参数，:seller 可选（缺失时按平台全局限流）
func SyncRateLimit(interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = DefaultSyncInterval
	}

	return func(c *gin.Context) {
		platform := c.Param("platform")
		seller := c.Param("seller")

		key := GlobalSyncKey(platform)
		if seller != "" {
			key = SellerSyncKey(platform, seller)
		}

		result := GetLimiter().Check(key, interval)
		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(result.RetryAfter),
				"data": gin.H{
					"retry_after": int(result.RetryAfter.Seconds()),
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("同步冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remaining := seconds % 60
	if remaining == 0 {
		return fmt.Sprintf("同步冷却中，请 %d 分钟后重试", minutes)
	}
	return fmt.Sprintf("同步冷却中，请 %d 分 %d 秒后重试", minutes, remaining)
}
