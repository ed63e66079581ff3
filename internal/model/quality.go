package model

import "time"

// 诊断通过时的统一标记
const QualityOK = "OK"

// ProductQuality 商品质量诊断行，每次同步基于当期数据重新生成
// 唯一键与 Product 对齐 (platform, seller, sku)
// 每个诊断列要么是 "OK"，要么是带数量的缺陷文案
type ProductQuality struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform string `gorm:"size:20;not null;uniqueIndex:uq_product_quality_nk" json:"platform"`
	Seller   string `gorm:"size:100;not null;uniqueIndex:uq_product_quality_nk;index:idx_pquality_seller" json:"seller"`
	SKU      string `gorm:"size:100;not null;uniqueIndex:uq_product_quality_nk" json:"sku"`

	ProductTitle string `gorm:"size:500" json:"product_title"`
	Status       string `gorm:"size:100" json:"status"`

	TitleCheck       string `gorm:"size:200" json:"title_check"`
	ImageCountCheck  string `gorm:"size:200" json:"image_count_check"`
	ResolutionCheck  string `gorm:"size:200" json:"resolution_check"`
	DescriptionCheck string `gorm:"size:200" json:"description_check"`
	BrandCheck       string `gorm:"size:200" json:"brand_check"`
	WarrantyCheck    string `gorm:"size:200" json:"warranty_check"`
	AttributesCheck  string `gorm:"size:200" json:"attributes_check"`
	MainImageCheck   string `gorm:"size:200" json:"main_image_check"` // Amazon 主图分辨率

	SyncedAt time.Time `gorm:"index" json:"synced_at"`
}

func (ProductQuality) TableName() string { return "product_quality" }

// InventoryQuality 库存质量诊断行 (Amazon FBA)
// 唯一键 (platform, seller, asin)
type InventoryQuality struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform string `gorm:"size:20;not null;uniqueIndex:uq_inventory_quality_nk" json:"platform"`
	Seller   string `gorm:"size:100;not null;uniqueIndex:uq_inventory_quality_nk;index:idx_iquality_seller" json:"seller"`
	ASIN     string `gorm:"size:50;not null;uniqueIndex:uq_inventory_quality_nk" json:"asin"`

	FulfillableCheck   string `gorm:"size:200" json:"fulfillable_check"`
	UnfulfillableCheck string `gorm:"size:200" json:"unfulfillable_check"`

	SyncedAt time.Time `gorm:"index" json:"synced_at"`
}

func (InventoryQuality) TableName() string { return "inventory_quality" }
