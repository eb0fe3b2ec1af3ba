package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

// Sale represents one checkout transaction. Price fields are frozen at
// creation time; later catalog changes never alter a persisted sale.
type Sale struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber string           `gorm:"column:invoice_number;not null;uniqueIndex"`
	CustomerID    *uuid.UUID       `gorm:"column:customer_id;type:uuid"`
	SubtotalCents int              `gorm:"column:subtotal_cents;not null"`
	DiscountCents int              `gorm:"column:discount_cents;not null;default:0"`
	TaxCents      int              `gorm:"column:tax_cents;not null;default:0"`
	TotalCents    int              `gorm:"column:total_cents;not null"`
	CashierID     uuid.UUID        `gorm:"column:cashier_id;type:uuid;not null"`
	Status        enums.SaleStatus `gorm:"column:status;type:sale_status;not null;default:'completed'"`
	Notes         *string          `gorm:"column:notes"`
	IsHold        bool             `gorm:"column:is_hold;not null;default:false"`
	Items         []SaleLineItem   `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments      []SalePayment    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
