package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"marketsync_v1_202608/internal/config"
	"marketsync_v1_202608/internal/controller"
	"marketsync_v1_202608/internal/middleware"
	"marketsync_v1_202608/internal/model"
	"marketsync_v1_202608/internal/repository"
	"marketsync_v1_202608/internal/router"
	"marketsync_v1_202608/internal/service"
	"marketsync_v1_202608/internal/task"
	"marketsync_v1_202608/pkg/database"
	"marketsync_v1_202608/pkg/net"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	gin.SetMode(cfg.Server.Mode)
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:      cfg.Auth.JWTSecret,
		AccessTokenTTL: 12 * time.Hour,
		Issuer:         "marketsync",
	})

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(cfg, db)

	// 4. 启动定时任务
	syncTask := initTasks(deps)

	// 5. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers)

	// 6. 启动服务
	startServer(r, cfg.Server.Port, syncTask)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Collectors  service.CollectorRegistry
	Controllers router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Sync   repository.SyncStore
	Run    repository.SyncRunRepo
	Report repository.ReportRepo
}

// Services 服务集合
type Services struct {
	Auth    *service.AuthService
	Quality *service.QualityService
	Meli    *service.MeliService
	Amazon  *service.AmazonService
	Magalu  *service.MagaluService
	Report  *service.ReportService
	Archive service.ArchiveStorage
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.Database.DSN,
		// Catálogo
		&model.Product{}, &model.ProductImage{}, &model.ProductAttribute{}, &model.ProductVariation{},
		// Pedidos e estoque
		&model.Order{}, &model.InventorySnapshot{}, &model.RevenuePeriod{},
		// Qualidade
		&model.ProductQuality{}, &model.InventoryQuality{},
		// Execuções
		&model.SyncRun{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Sync:   repository.NewSyncStore(db),
		Run:    repository.NewSyncRunRepo(db),
		Report: repository.NewReportRepo(db),
	}

	// -------- 基础服务 --------
	client := net.NewAPIClient(30 * time.Second)
	quality := service.NewQualityService()

	meliCreds := service.NewCredentialStore(model.PlatformMercadoLivre, cfg.Meli.TokensJSON)
	amazonCreds := service.NewCredentialStore(model.PlatformAmazon, cfg.Amazon.TokensJSON)
	magaluCreds := service.NewCredentialStore(model.PlatformMagalu, cfg.Magalu.TokensJSON)

	// -------- 业务服务 --------
	services := &Services{
		Auth:    service.NewAuthService(cfg.Auth),
		Quality: quality,
		Meli:    service.NewMeliService(cfg.Meli, meliCreds, repos.Sync, repos.Run, quality, client),
		Amazon:  service.NewAmazonService(cfg.Amazon, amazonCreds, repos.Sync, repos.Run, quality, client),
		Magalu:  service.NewMagaluService(cfg.Magalu, magaluCreds, repos.Sync, repos.Run, quality, client),
		Report:  service.NewReportService(repos.Report),
		Archive: initArchiveStorage(cfg.Storage),
	}

	collectors := service.CollectorRegistry{
		model.PlatformMercadoLivre: services.Meli,
		model.PlatformAmazon:       services.Amazon,
		model.PlatformMagalu:       services.Magalu,
	}

	// -------- Controller 层 --------
	controllers := router.Controllers{
		Auth:   controller.NewAuthController(services.Auth),
		Sync:   controller.NewSyncController(collectors),
		Seller: controller.NewSellerController(collectors),
		Report: controller.NewReportController(services.Report, services.Archive),
		Run:    controller.NewRunController(repos.Run),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Collectors:  collectors,
		Controllers: controllers,
	}
}

// initArchiveStorage 初始化报表归档存储
func initArchiveStorage(cfg config.StorageConfig) service.ArchiveStorage {
	archive, err := service.NewArchiveStorage(cfg)
	if err != nil {
		log.Printf("警告: 归档存储初始化失败: %v", err)
		return nil
	}
	return archive
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) *task.SyncTask {
	syncTask := task.NewSyncTask(deps.Collectors)
	syncTask.Start()

	log.Println("定时任务已启动")
	return syncTask
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, port string, syncTask *task.SyncTask) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 先停定时任务，等待进行中的采集结束
	syncTask.Stop()

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}
