package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenuePeriod 按月聚合的营收行 (Amazon orderMetrics)
// 唯一键 (platform, seller, period_start, period_end)
type RevenuePeriod struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform    string `gorm:"size:20;not null;uniqueIndex:uq_revenue_nk" json:"platform"`
	Seller      string `gorm:"size:100;not null;uniqueIndex:uq_revenue_nk;index:idx_revenue_seller" json:"seller"`
	PeriodStart string `gorm:"size:50;not null;uniqueIndex:uq_revenue_nk" json:"period_start"`
	PeriodEnd   string `gorm:"size:50;not null;uniqueIndex:uq_revenue_nk" json:"period_end"`

	UnitsSold    int `gorm:"default:0" json:"units_sold"`
	OrderItems   int `gorm:"default:0" json:"order_items"`
	OrdersCount  int `gorm:"default:0" json:"orders_count"`

	AvgUnitPrice     decimal.Decimal `gorm:"type:numeric(14,2)" json:"avg_unit_price"`
	AvgUnitCurrency  string          `gorm:"size:10" json:"avg_unit_currency"`
	TotalSales       decimal.Decimal `gorm:"type:numeric(14,2)" json:"total_sales"`
	TotalSalesCurrency string        `gorm:"size:10" json:"total_sales_currency"`

	SyncedAt time.Time `gorm:"index" json:"synced_at"`
}

func (RevenuePeriod) TableName() string { return "revenue_periods" }
