package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketsync_v1_202608/internal/repository"
)

// RunController 同步历史查询控制器
type RunController struct {
	runs repository.SyncRunRepo
}

func NewRunController(runs repository.SyncRunRepo) *RunController {
	return &RunController{runs: runs}
}

// List 查询最近的同步记录，支持按平台 / 卖家过滤
// GET /api/runs?platform=&seller=&limit=
func (c *RunController) List(ctx *gin.Context) {
	platform := ctx.Query("platform")
	seller := ctx.Query("seller")

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: limit 必须为非负整数"})
			return
		}
		limit = parsed
	}

	runs, err := c.runs.ListRecent(ctx.Request.Context(), platform, seller, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "success",
		"data":    runs,
	})
}
