package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 平台标识常量
const (
	PlatformMercadoLivre = "mercadolivre"
	PlatformAmazon       = "amazon"
	PlatformMagalu       = "magalu"
)

// Product 归一化后的商品行
// 自然键 (platform, seller, sku)：sku 列承载各平台的自然标识
// (ML item_id / Magalu sku / Amazon ASIN)，平台专属字段允许为零值
type Product struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform string `gorm:"size:20;not null;uniqueIndex:uq_products_nk" json:"platform"`
	Seller   string `gorm:"size:100;not null;uniqueIndex:uq_products_nk;index:idx_products_seller" json:"seller"`
	SKU      string `gorm:"size:100;not null;uniqueIndex:uq_products_nk" json:"sku"`

	Title       string `gorm:"size:500" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Brand       string `gorm:"size:200" json:"brand"`
	Status      string `gorm:"size:100" json:"status"` // 已翻译的展示标签
	Health      string `gorm:"size:50" json:"health"`

	CategoryID   string `gorm:"size:100" json:"category_id"`
	CategoryName string `gorm:"size:200" json:"category_name"`

	Price         decimal.Decimal `gorm:"type:numeric(14,2)" json:"price"`
	StockQuantity int             `gorm:"default:0" json:"stock_quantity"`
	InitialQty    int             `gorm:"default:0" json:"initial_qty"`
	SoldQty       int             `gorm:"default:0" json:"sold_qty"`

	VariationCount int    `gorm:"default:0" json:"variation_count"`
	ImageCount     int    `gorm:"default:0" json:"image_count"`
	ImageLinks     string `gorm:"type:text" json:"image_links"`

	GTIN              string `gorm:"size:100" json:"gtin"`
	Permalink         string `gorm:"size:500" json:"permalink"`
	Warranty          string `gorm:"size:200" json:"warranty"`
	AcceptsMercadoPago bool  `gorm:"default:false" json:"accepts_mercado_pago"`

	// --- Amazon 专属 ---
	ASIN          string `gorm:"size:50;index" json:"asin"`
	SellerSKU     string `gorm:"size:100" json:"seller_sku"`
	ProductType   string `gorm:"size:100" json:"product_type"`
	ConditionType string `gorm:"size:50" json:"condition_type"`
	MainImageURL  string `gorm:"size:500" json:"main_image_url"`
	MainImageW    int    `gorm:"default:0" json:"main_image_w"`
	MainImageH    int    `gorm:"default:0" json:"main_image_h"`

	CreatedDate string `gorm:"size:50" json:"created_date"` // 上游时间戳原样透传
	UpdatedDate string `gorm:"size:50" json:"updated_date"`

	SyncedAt time.Time `gorm:"index" json:"synced_at"`
}

func (Product) TableName() string { return "products" }

// ProductImage 商品图片行，唯一键 (platform, seller, sku, image_id)
type ProductImage struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform string `gorm:"size:20;not null;uniqueIndex:uq_images_nk" json:"platform"`
	Seller   string `gorm:"size:100;not null;uniqueIndex:uq_images_nk;index:idx_images_seller" json:"seller"`
	SKU      string `gorm:"size:100;not null;uniqueIndex:uq_images_nk;index:idx_images_sku" json:"sku"`
	ImageID  string `gorm:"size:100;not null;uniqueIndex:uq_images_nk" json:"image_id"`

	URL        string `gorm:"size:500" json:"url"`
	Resolution string `gorm:"size:50" json:"resolution"` // "800x600" 形式或平台标签

	SyncedAt time.Time `gorm:"index" json:"synced_at"`
}

func (ProductImage) TableName() string { return "product_images" }

// ProductAttribute 商品属性行，唯一键 (platform, seller, sku, name)，value 后写覆盖
type ProductAttribute struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform string `gorm:"size:20;not null;uniqueIndex:uq_attrs_nk" json:"platform"`
	Seller   string `gorm:"size:100;not null;uniqueIndex:uq_attrs_nk;index:idx_attrs_seller" json:"seller"`
	SKU      string `gorm:"size:100;not null;uniqueIndex:uq_attrs_nk;index:idx_attrs_sku" json:"sku"`
	Name     string `gorm:"size:200;not null;uniqueIndex:uq_attrs_nk" json:"name"`

	Value string `gorm:"type:text" json:"value"`

	SyncedAt time.Time `gorm:"index" json:"synced_at"`
}

func (ProductAttribute) TableName() string { return "product_attributes" }

// ProductVariation 商品变体行
// 唯一键 (platform, seller, sku, variation_id, attribute_name)
type ProductVariation struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform    string `gorm:"size:20;not null;uniqueIndex:uq_variations_nk" json:"platform"`
	Seller      string `gorm:"size:100;not null;uniqueIndex:uq_variations_nk;index:idx_variations_seller" json:"seller"`
	SKU         string `gorm:"size:100;not null;uniqueIndex:uq_variations_nk" json:"sku"`
	VariationID string `gorm:"size:100;not null;uniqueIndex:uq_variations_nk" json:"variation_id"`
	AttributeName string `gorm:"size:200;not null;uniqueIndex:uq_variations_nk" json:"attribute_name"`

	AttributeValue string          `gorm:"size:500" json:"attribute_value"`
	Price          decimal.Decimal `gorm:"type:numeric(14,2)" json:"price"`

	SyncedAt time.Time `gorm:"index" json:"synced_at"`
}

func (ProductVariation) TableName() string { return "product_variations" }
