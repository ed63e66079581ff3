package controller

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketsync_v1_202608/internal/service"
)

// ReportController 日报归档下载控制器
type ReportController struct {
	reports *service.ReportService
	archive service.ArchiveStorage // 可为 nil，此时仅支持下载
}

func NewReportController(reports *service.ReportService, archive service.ArchiveStorage) *ReportController {
	return &ReportController{reports: reports, archive: archive}
}

// Download 生成当天报表的 zip 并返回
// GET /api/reports/:platform/:seller/download
// 带 ?archive=true 时同步上传一份到对象存储
func (c *ReportController) Download(ctx *gin.Context) {
	platform := ctx.Param("platform")
	seller := ctx.Param("seller")

	data, err := c.reports.BuildDailyArchive(ctx.Request.Context(), platform, seller)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "生成报表失败: " + err.Error()})
		return
	}
	if len(data) == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "当天没有可导出的数据"})
		return
	}

	filename := fmt.Sprintf("%s_%s_%s.zip", platform, seller, time.Now().Format("20060102"))

	if ctx.Query("archive") == "true" && c.archive != nil {
		key, uploadErr := c.archive.Upload(ctx.Request.Context(), data, filename)
		if uploadErr != nil {
			log.Printf("[Report] 归档上传失败: %v", uploadErr)
		} else {
			log.Printf("[Report] 归档已上传: %s", key)
		}
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "application/zip", data)
}
