package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

// SalePayment records one tender applied to a sale (cash drawer, card, ...).
type SalePayment struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID      uuid.UUID           `gorm:"column:sale_id;type:uuid;not null"`
	Method      enums.PaymentMethod `gorm:"column:method;type:payment_method;not null"`
	AmountCents int                 `gorm:"column:amount_cents;not null"`
	Details     *string             `gorm:"column:details"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
