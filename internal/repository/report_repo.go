package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marketsync_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// ReportRepo 导出层读取接口：只取当天同步落库的数据
type ReportRepo interface {
	TodayProducts(ctx context.Context, platform, seller string) ([]model.Product, error)
	TodayImages(ctx context.Context, platform, seller string) ([]model.ProductImage, error)
	TodayAttributes(ctx context.Context, platform, seller string) ([]model.ProductAttribute, error)
	TodayVariations(ctx context.Context, platform, seller string) ([]model.ProductVariation, error)
	TodayOrders(ctx context.Context, platform, seller string) ([]model.Order, error)
	TodayInventory(ctx context.Context, platform, seller string) ([]model.InventorySnapshot, error)
	TodayRevenue(ctx context.Context, platform, seller string) ([]model.RevenuePeriod, error)
	TodayProductQuality(ctx context.Context, platform, seller string) ([]model.ProductQuality, error)
	TodayInventoryQuality(ctx context.Context, platform, seller string) ([]model.InventoryQuality, error)
}

// ==================== 仓储实现 ====================

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepo {
	return &reportRepo{db: db}
}

// todayRange 本地时区的当天 [00:00, 次日 00:00)
func todayRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// listToday 通用的当日数据读取，synced_at 落在当天范围内
func listToday[T any](ctx context.Context, db *gorm.DB, platform, seller string) ([]T, error) {
	start, end := todayRange(time.Now())

	var rows []T
	err := db.WithContext(ctx).
		Where("platform = ? AND seller = ?", platform, seller).
		Where("synced_at >= ? AND synced_at < ?", start, end).
		Find(&rows).Error
	return rows, err
}

func (r *reportRepo) TodayProducts(ctx context.Context, platform, seller string) ([]model.Product, error) {
	return listToday[model.Product](ctx, r.db, platform, seller)
}

func (r *reportRepo) TodayImages(ctx context.Context, platform, seller string) ([]model.ProductImage, error) {
	return listToday[model.ProductImage](ctx, r.db, platform, seller)
}

func (r *reportRepo) TodayAttributes(ctx context.Context, platform, seller string) ([]model.ProductAttribute, error) {
	return listToday[model.ProductAttribute](ctx, r.db, platform, seller)
}

func (r *reportRepo) TodayVariations(ctx context.Context, platform, seller string) ([]model.ProductVariation, error) {
	return listToday[model.ProductVariation](ctx, r.db, platform, seller)
}

func (r *reportRepo) TodayOrders(ctx context.Context, platform, seller string) ([]model.Order, error) {
	return listToday[model.Order](ctx, r.db, platform, seller)
}

func (r *reportRepo) TodayInventory(ctx context.Context, platform, seller string) ([]model.InventorySnapshot, error) {
	return listToday[model.InventorySnapshot](ctx, r.db, platform, seller)
}

func (r *reportRepo) TodayRevenue(ctx context.Context, platform, seller string) ([]model.RevenuePeriod, error) {
	return listToday[model.RevenuePeriod](ctx, r.db, platform, seller)
}

func (r *reportRepo) TodayProductQuality(ctx context.Context, platform, seller string) ([]model.ProductQuality, error) {
	return listToday[model.ProductQuality](ctx, r.db, platform, seller)
}

func (r *reportRepo) TodayInventoryQuality(ctx context.Context, platform, seller string) ([]model.InventoryQuality, error) {
	return listToday[model.InventoryQuality](ctx, r.db, platform, seller)
}
