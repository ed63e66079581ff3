package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketsync_v1_202608/internal/controller"
	"marketsync_v1_202608/internal/middleware"
)

// Controllers 路由依赖的全部控制器
type Controllers struct {
	Auth   *controller.AuthController
	Sync   *controller.SyncController
	Seller *controller.SellerController
	Report *controller.ReportController
	Run    *controller.RunController
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls Controllers) {
	// 健康检查，不经过鉴权
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// auth 鉴权组，唯一的公开路由
		auth := api.Group("/auth")
		{
			// POST /api/auth/login
			auth.POST("/login", ctls.Auth.Login)
		}

		// 其余路由全部要求 JWT
		protected := api.Group("")
		protected.Use(middleware.JWTAuth())
		{
			// sync 采集触发组，带卖家级冷却
			sync := protected.Group("/sync")
			sync.Use(middleware.SyncRateLimit(middleware.DefaultSyncInterval))
			{
				// POST /api/sync/:platform
				sync.POST("/:platform", ctls.Sync.SyncPlatform)
				// POST /api/sync/:platform/:seller
				sync.POST("/:platform/:seller", ctls.Sync.SyncSeller)
			}

			// GET /api/sellers
			protected.GET("/sellers", ctls.Seller.List)

			// GET /api/reports/:platform/:seller/download
			protected.GET("/reports/:platform/:seller/download", ctls.Report.Download)

			// GET /api/runs
			protected.GET("/runs", ctls.Run.List)
		}
	}
}
