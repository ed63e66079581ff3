package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"marketsync_v1_202608/internal/service"
)

// ==================== 定时采集任务 ====================

// SyncTask 每日定时采集全部平台的全部卖家
// 平台之间、卖家之间串行执行，上游接口对速率敏感
type SyncTask struct {
	collectors service.CollectorRegistry
	cron       *cron.Cron

	// 单个卖家采集的超时
	sellerTimeout time.Duration
}

func NewSyncTask(collectors service.CollectorRegistry) *SyncTask {
	return &SyncTask{
		collectors:    collectors,
		cron:          cron.New(cron.WithSeconds()), // 支持秒级控制
		sellerTimeout: 1 * time.Hour,
	}
}

// Start 启动定时任务
func (t *SyncTask) Start() {
	// 每日凌晨 3 点全量采集
	_, _ = t.cron.AddFunc("0 0 3 * * *", func() {
		log.Println("[SyncTask] 开始每日全量采集...")
		t.RunAll(context.Background())
	})

	t.cron.Start()
	log.Println("[SyncTask] 已启动 (每日3点全量采集)")
}

// Stop 停止任务，等待在执行的采集结束
func (t *SyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[SyncTask] 已停止")
}

// RunAll 顺序采集全部平台的全部卖家，单个卖家失败不影响其余卖家
func (t *SyncTask) RunAll(ctx context.Context) {
	start := time.Now()
	var successCount, failCount int

	for platform, collector := range t.collectors {
		for _, seller := range collector.Sellers() {
			sellerCtx, cancel := context.WithTimeout(ctx, t.sellerTimeout)
			err := collector.Collect(sellerCtx, seller)
			cancel()

			if err != nil {
				failCount++
				log.Printf("[SyncTask] %s/%s 采集失败: %v", platform, seller, err)
				continue
			}
			successCount++
			log.Printf("[SyncTask] %s/%s 采集完成", platform, seller)
		}
	}

	log.Printf("[SyncTask] 全量采集结束: 成功 %d, 失败 %d, 耗时 %v",
		successCount, failCount, time.Since(start).Round(time.Second))
}
