package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"marketsync_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// SyncStore 同步落库层
// 两种写入策略：
//   - 合并插入：自然键冲突时覆盖全部可变列并刷新 synced_at
//   - 快照替换：同步前先按 (platform, seller) 整体清除，再插入
type SyncStore interface {
	// PurgeSeller 在一个事务里删除该卖家在给定实体表中的全部旧行
	// 删除失败则整个同步对该卖家中止
	PurgeSeller(ctx context.Context, platform, seller string, entities ...interface{}) error

	// 各实体的分块合并插入，返回失败批次数
	UpsertProducts(ctx context.Context, rows []model.Product) int
	UpsertImages(ctx context.Context, rows []model.ProductImage) int
	UpsertAttributes(ctx context.Context, rows []model.ProductAttribute) int
	UpsertVariations(ctx context.Context, rows []model.ProductVariation) int
	UpsertOrders(ctx context.Context, rows []model.Order) int
	UpsertInventory(ctx context.Context, rows []model.InventorySnapshot) int
	UpsertRevenue(ctx context.Context, rows []model.RevenuePeriod) int
	UpsertProductQuality(ctx context.Context, rows []model.ProductQuality) int
	UpsertInventoryQuality(ctx context.Context, rows []model.InventoryQuality) int

	// ListProductSKUs 当期商品的自然键集合，用于过滤孤儿质检行
	ListProductSKUs(ctx context.Context, platform, seller string) (map[string]bool, error)
}

// ==================== 表映射 ====================

var (
	productSpec = UpsertSpec{
		Conflict: []string{"platform", "seller", "sku"},
		Updates: []string{
			"title", "description", "brand", "status", "health",
			"category_id", "category_name",
			"price", "stock_quantity", "initial_qty", "sold_qty",
			"variation_count", "image_count", "image_links",
			"gtin", "permalink", "warranty", "accepts_mercado_pago",
			"asin", "seller_sku", "product_type", "condition_type",
			"main_image_url", "main_image_w", "main_image_h",
			"created_date", "updated_date", "synced_at",
		},
	}
	imageSpec = UpsertSpec{
		Conflict: []string{"platform", "seller", "sku", "image_id"},
		Updates:  []string{"url", "resolution", "synced_at"},
	}
	attributeSpec = UpsertSpec{
		Conflict: []string{"platform", "seller", "sku", "name"},
		Updates:  []string{"value", "synced_at"},
	}
	variationSpec = UpsertSpec{
		Conflict: []string{"platform", "seller", "sku", "variation_id", "attribute_name"},
		Updates:  []string{"attribute_value", "price", "synced_at"},
	}
	orderSpec = UpsertSpec{
		Conflict: []string{"platform", "seller", "order_id"},
		Updates: []string{
			"status", "payment_status", "payment_method",
			"purchase_date", "approved_date",
			"total_amount", "currency",
			"sales_channel", "fulfillment_channel",
			"items_shipped", "items_unshipped", "is_prime", "is_business_order",
			"buyer_city", "shipping_state", "shipping_city", "synced_at",
		},
	}
	inventorySpec = UpsertSpec{
		Conflict: []string{"platform", "seller", "asin"},
		Updates: []string{
			"fnsku", "condition", "product_name",
			"fulfillable", "inbound_receiving",
			"reserved_total", "reserved_customer", "reserved_transship", "reserved_fc_processing",
			"researching_total",
			"unfulfillable_total", "unfulfillable_customer", "unfulfillable_warehouse",
			"unfulfillable_distributor", "unfulfillable_carrier",
			"unfulfillable_defective", "unfulfillable_expired",
			"future_supply_reserved", "future_supply_buyable",
			"total_quantity", "last_updated", "synced_at",
		},
	}
	revenueSpec = UpsertSpec{
		Conflict: []string{"platform", "seller", "period_start", "period_end"},
		Updates: []string{
			"units_sold", "order_items", "orders_count",
			"avg_unit_price", "avg_unit_currency",
			"total_sales", "total_sales_currency", "synced_at",
		},
	}
	productQualitySpec = UpsertSpec{
		Conflict: []string{"platform", "seller", "sku"},
		Updates: []string{
			"product_title", "status",
			"title_check", "image_count_check", "resolution_check",
			"description_check", "brand_check", "warranty_check",
			"attributes_check", "main_image_check", "synced_at",
		},
	}
	inventoryQualitySpec = UpsertSpec{
		Conflict: []string{"platform", "seller", "asin"},
		Updates:  []string{"fulfillable_check", "unfulfillable_check", "synced_at"},
	}
)

// ==================== 仓储实现 ====================

type syncRepo struct {
	db *gorm.DB
}

// NewSyncStore 创建同步落库层
func NewSyncStore(db *gorm.DB) SyncStore {
	return &syncRepo{db: db}
}

func (r *syncRepo) PurgeSeller(ctx context.Context, platform, seller string, entities ...interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entity := range entities {
			if err := tx.Where("platform = ? AND seller = ?", platform, seller).Delete(entity).Error; err != nil {
				return fmt.Errorf("limpeza de dados antigos falhou: %w", err)
			}
		}
		return nil
	})
}

func (r *syncRepo) UpsertProducts(ctx context.Context, rows []model.Product) int {
	rows = dedupeLast(rows, func(p model.Product) string { return p.SKU })
	return upsertInChunks(ctx, r.db, rows, productSpec)
}

func (r *syncRepo) UpsertImages(ctx context.Context, rows []model.ProductImage) int {
	rows = dedupeLast(rows, func(i model.ProductImage) string { return i.SKU + "\x00" + i.ImageID })
	return upsertInChunks(ctx, r.db, rows, imageSpec)
}

func (r *syncRepo) UpsertAttributes(ctx context.Context, rows []model.ProductAttribute) int {
	rows = dedupeLast(rows, func(a model.ProductAttribute) string { return a.SKU + "\x00" + a.Name })
	return upsertInChunks(ctx, r.db, rows, attributeSpec)
}

func (r *syncRepo) UpsertVariations(ctx context.Context, rows []model.ProductVariation) int {
	rows = dedupeLast(rows, func(v model.ProductVariation) string {
		return v.SKU + "\x00" + v.VariationID + "\x00" + v.AttributeName
	})
	return upsertInChunks(ctx, r.db, rows, variationSpec)
}

func (r *syncRepo) UpsertOrders(ctx context.Context, rows []model.Order) int {
	rows = dedupeLast(rows, func(o model.Order) string { return o.OrderID })
	return upsertInChunks(ctx, r.db, rows, orderSpec)
}

func (r *syncRepo) UpsertInventory(ctx context.Context, rows []model.InventorySnapshot) int {
	rows = dedupeLast(rows, func(s model.InventorySnapshot) string { return s.ASIN })
	return upsertInChunks(ctx, r.db, rows, inventorySpec)
}

func (r *syncRepo) UpsertRevenue(ctx context.Context, rows []model.RevenuePeriod) int {
	rows = dedupeLast(rows, func(p model.RevenuePeriod) string { return p.PeriodStart + "\x00" + p.PeriodEnd })
	return upsertInChunks(ctx, r.db, rows, revenueSpec)
}

func (r *syncRepo) UpsertProductQuality(ctx context.Context, rows []model.ProductQuality) int {
	rows = dedupeLast(rows, func(q model.ProductQuality) string { return q.SKU })
	return upsertInChunks(ctx, r.db, rows, productQualitySpec)
}

func (r *syncRepo) UpsertInventoryQuality(ctx context.Context, rows []model.InventoryQuality) int {
	rows = dedupeLast(rows, func(q model.InventoryQuality) string { return q.ASIN })
	return upsertInChunks(ctx, r.db, rows, inventoryQualitySpec)
}

func (r *syncRepo) ListProductSKUs(ctx context.Context, platform, seller string) (map[string]bool, error) {
	var skus []string
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("platform = ? AND seller = ?", platform, seller).
		Pluck("sku", &skus).Error
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(skus))
	for _, sku := range skus {
		set[sku] = true
	}
	return set, nil
}
