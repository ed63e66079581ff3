package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketsync_v1_202608/internal/service"
)

// SellerController 卖家列表查询控制器
type SellerController struct {
	collectors service.CollectorRegistry
}

func NewSellerController(collectors service.CollectorRegistry) *SellerController {
	return &SellerController{collectors: collectors}
}

// List 列出每个平台已配置的卖家
// GET /api/sellers
func (c *SellerController) List(ctx *gin.Context) {
	data := make(map[string][]string, len(c.collectors))
	for platform, collector := range c.collectors {
		data[platform] = collector.Sellers()
	}
	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "success",
		"data":    data,
	})
}
