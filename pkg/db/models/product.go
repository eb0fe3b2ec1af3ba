package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog item sold at the terminal. Stock is never
// written directly; only the sale, refund, and adjustment paths mutate it,
// each paired with a stock ledger entry.
type Product struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string     `gorm:"column:name;not null"`
	SKU               string     `gorm:"column:sku;not null;uniqueIndex"`
	Barcode           *string    `gorm:"column:barcode;uniqueIndex"`
	CostCents         int        `gorm:"column:cost_cents;not null"`
	PriceCents        int        `gorm:"column:price_cents;not null"`
	Stock             int        `gorm:"column:stock;not null;default:0"`
	LowStockThreshold int        `gorm:"column:low_stock_threshold;not null;default:10"`
	Unit              string     `gorm:"column:unit;not null;default:'pcs'"`
	IsActive          bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsLowStock reports whether on-hand quantity has fallen to the reorder point.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}
