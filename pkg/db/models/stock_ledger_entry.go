package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

// StockLedgerEntry records an immutable stock-affecting event for a product.
// Entries are append-only: NewStock = PreviousStock + Quantity holds for every
// row, and NewStock equals the product's on-hand quantity at the instant the
// entry was written (entry and product mutation commit in the same
// transaction).
type StockLedgerEntry struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	Type          enums.StockEventType `gorm:"column:type;type:stock_event_type;not null"`
	Quantity      int                  `gorm:"column:quantity;not null"`
	PreviousStock int                  `gorm:"column:previous_stock;not null"`
	NewStock      int                  `gorm:"column:new_stock;not null"`
	Reference     *string              `gorm:"column:reference"`
	Notes         *string              `gorm:"column:notes"`
	UserID        uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}
