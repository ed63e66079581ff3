package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketsync_v1_202608/internal/service"
	"marketsync_v1_202608/internal/syncerr"
)

// SyncController 采集触发控制器
type SyncController struct {
	collectors service.CollectorRegistry
}

// NewSyncController 创建采集控制器
func NewSyncController(collectors service.CollectorRegistry) *SyncController {
	return &SyncController{collectors: collectors}
}

func (c *SyncController) collector(ctx *gin.Context) (service.PlatformCollector, bool) {
	platform := ctx.Param("platform")
	collector, ok := c.collectors[platform]
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "平台不存在: " + platform})
		return nil, false
	}
	return collector, true
}

// SyncSeller 同步单个卖家
// POST /api/sync/:platform/:seller
func (c *SyncController) SyncSeller(ctx *gin.Context) {
	collector, ok := c.collector(ctx)
	if !ok {
		return
	}
	seller := ctx.Param("seller")

	if err := collector.Collect(ctx.Request.Context(), seller); err != nil {
		if syncerr.IsAuth(err) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "采集完成",
		"data":    gin.H{"platform": ctx.Param("platform"), "seller": seller},
	})
}

// SyncPlatform 同步平台下全部卖家，单个卖家失败不中断其余卖家
// POST /api/sync/:platform
func (c *SyncController) SyncPlatform(ctx *gin.Context) {
	collector, ok := c.collector(ctx)
	if !ok {
		return
	}

	results := make(map[string]string)
	for _, seller := range collector.Sellers() {
		if err := collector.Collect(ctx.Request.Context(), seller); err != nil {
			results[seller] = err.Error()
			continue
		}
		results[seller] = "ok"
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "采集完成",
		"data":    results,
	})
}
