package model

import (
	"time"

	"gorm.io/datatypes"
)

// 同步运行的终态
const (
	SyncRunStatusDone   = "done"
	SyncRunStatusFailed = "failed"
)

// SyncRun 单次「平台 × 卖家」流水线的运行记录
// Messages 保存每个子实体的人类可读结果
// FailedBatches 让被吞掉的批次失败可观测（计数而非仅打印）
type SyncRun struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform string `gorm:"size:20;not null;index:idx_sync_runs_scope" json:"platform"`
	Seller   string `gorm:"size:100;not null;index:idx_sync_runs_scope" json:"seller"`

	Status        string         `gorm:"size:20" json:"status"`
	Messages      datatypes.JSON `json:"messages"`
	ErrorMessage  string         `gorm:"size:500" json:"error_message"`
	FailedBatches int            `gorm:"default:0" json:"failed_batches"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (SyncRun) TableName() string { return "sync_runs" }
