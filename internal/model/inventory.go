package model

import "time"

// InventorySnapshot FBA 库存快照行，唯一键 (platform, seller, asin)
// 快照语义：每次同步整表替换，不做合并
type InventorySnapshot struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Platform string `gorm:"size:20;not null;uniqueIndex:uq_inventory_nk" json:"platform"`
	Seller   string `gorm:"size:100;not null;uniqueIndex:uq_inventory_nk;index:idx_inventory_seller" json:"seller"`
	ASIN     string `gorm:"size:50;not null;uniqueIndex:uq_inventory_nk" json:"asin"`

	FNSKU       string `gorm:"size:50" json:"fnsku"`
	Condition   string `gorm:"size:50" json:"condition"`
	ProductName string `gorm:"size:500" json:"product_name"`

	// Fulfillable 上游缺失时为 NULL，与显式的 0 区分开
	Fulfillable      *int `json:"fulfillable"`
	InboundReceiving int  `gorm:"default:0" json:"inbound_receiving"`

	ReservedTotal        int `gorm:"default:0" json:"reserved_total"`
	ReservedCustomer     int `gorm:"default:0" json:"reserved_customer"`
	ReservedTransship    int `gorm:"default:0" json:"reserved_transship"`
	ReservedFCProcessing int `gorm:"default:0" json:"reserved_fc_processing"`

	ResearchingTotal int `gorm:"default:0" json:"researching_total"`

	UnfulfillableTotal       int `gorm:"default:0" json:"unfulfillable_total"`
	UnfulfillableCustomer    int `gorm:"default:0" json:"unfulfillable_customer"`
	UnfulfillableWarehouse   int `gorm:"default:0" json:"unfulfillable_warehouse"`
	UnfulfillableDistributor int `gorm:"default:0" json:"unfulfillable_distributor"`
	UnfulfillableCarrier     int `gorm:"default:0" json:"unfulfillable_carrier"`
	UnfulfillableDefective   int `gorm:"default:0" json:"unfulfillable_defective"`
	UnfulfillableExpired     int `gorm:"default:0" json:"unfulfillable_expired"`

	FutureSupplyReserved int `gorm:"default:0" json:"future_supply_reserved"`
	FutureSupplyBuyable  int `gorm:"default:0" json:"future_supply_buyable"`

	TotalQuantity int    `gorm:"default:0" json:"total_quantity"`
	LastUpdated   string `gorm:"size:50" json:"last_updated"`

	SyncedAt time.Time `gorm:"index" json:"synced_at"`
}

func (InventorySnapshot) TableName() string { return "inventory_snapshots" }
