package repository

import (
	"context"

	"gorm.io/gorm"

	"marketsync_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// SyncRunRepo 同步流水记录
type SyncRunRepo interface {
	Create(ctx context.Context, run *model.SyncRun) error
	ListRecent(ctx context.Context, platform, seller string, limit int) ([]model.SyncRun, error)
	Latest(ctx context.Context, platform, seller string) (*model.SyncRun, error)
}

// ==================== 仓储实现 ====================

type syncRunRepo struct {
	db *gorm.DB
}

func NewSyncRunRepo(db *gorm.DB) SyncRunRepo {
	return &syncRunRepo{db: db}
}

func (r *syncRunRepo) Create(ctx context.Context, run *model.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// ListRecent 按开始时间倒序返回流水，platform/seller 为空串则不过滤
func (r *syncRunRepo) ListRecent(ctx context.Context, platform, seller string, limit int) ([]model.SyncRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Model(&model.SyncRun{})
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}
	if seller != "" {
		query = query.Where("seller = ?", seller)
	}

	var runs []model.SyncRun
	err := query.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

func (r *syncRunRepo) Latest(ctx context.Context, platform, seller string) (*model.SyncRun, error) {
	var run model.SyncRun
	err := r.db.WithContext(ctx).
		Where("platform = ? AND seller = ?", platform, seller).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}
