package model

import "time"

// Order 归一化后的订单行
// 唯一键统一为 (platform, seller, order_id)：卖家作用域策略
// 取消/待支付订单的金额与收货字段写入哨兵文案而非置空（沿用上游口径）
type Order struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform string `gorm:"size:20;not null;uniqueIndex:uq_orders_nk" json:"platform"`
	Seller   string `gorm:"size:100;not null;uniqueIndex:uq_orders_nk;index:idx_orders_seller" json:"seller"`
	OrderID  string `gorm:"size:100;not null;uniqueIndex:uq_orders_nk" json:"order_id"`

	Status        string `gorm:"size:100" json:"status"`         // 已翻译
	PaymentStatus string `gorm:"size:100" json:"payment_status"` // 已翻译 (Magalu)
	PaymentMethod string `gorm:"size:200" json:"payment_method"` // 已翻译

	PurchaseDate string `gorm:"size:50" json:"purchase_date"`
	ApprovedDate string `gorm:"size:50" json:"approved_date"`

	// 字符串承载金额，允许 "Pedido cancelado" / "Pendente" 哨兵值
	TotalAmount string `gorm:"size:50" json:"total_amount"`
	Currency    string `gorm:"size:30" json:"currency"`

	SalesChannel       string `gorm:"size:100" json:"sales_channel"`
	FulfillmentChannel string `gorm:"size:50" json:"fulfillment_channel"`

	ItemsShipped   int  `gorm:"default:0" json:"items_shipped"`
	ItemsUnshipped int  `gorm:"default:0" json:"items_unshipped"`
	IsPrime        bool `gorm:"default:false" json:"is_prime"`
	IsBusinessOrder bool `gorm:"default:false" json:"is_business_order"`

	BuyerCity     string `gorm:"size:200" json:"buyer_city"`
	ShippingState string `gorm:"size:100" json:"shipping_state"`
	ShippingCity  string `gorm:"size:200" json:"shipping_city"`

	SyncedAt time.Time `gorm:"index" json:"synced_at"`
}

func (Order) TableName() string { return "orders" }
