package sales

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	"github.com/tillpoint/tillpoint-backend/pkg/pagination"
)

// LineItemInput is one requested product within a sale.
type LineItemInput struct {
	ProductID     uuid.UUID
	Qty           int
	DiscountCents int
}

// PaymentInput is one tender applied to a sale.
type PaymentInput struct {
	Method      enums.PaymentMethod
	AmountCents int
	Details     string
}

// CreateSaleInput captures everything the engine needs to record a sale.
type CreateSaleInput struct {
	Items         []LineItemInput
	CustomerID    *uuid.UUID
	DiscountCents int
	TaxCents      int
	Payments      []PaymentInput
	Notes         string
	IsHold        bool
	CashierID     uuid.UUID
}

// RefundSaleInput identifies a sale to reverse and who is reversing it.
type RefundSaleInput struct {
	SaleID      uuid.UUID
	ActorUserID uuid.UUID
	Reason      string
}

// ListSalesInput narrows sale listings.
type ListSalesInput struct {
	Status    *enums.SaleStatus
	CashierID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Page      pagination.Params
}
