package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/internal/ledger"
	"github.com/tillpoint/tillpoint-backend/internal/products"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
)

const refundReferencePrefix = "REFUND-"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service executes the sale transaction engine.
type Service interface {
	Create(ctx context.Context, input CreateSaleInput) (*models.Sale, error)
	Refund(ctx context.Context, input RefundSaleInput) (*models.Sale, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, input ListSalesInput) ([]models.Sale, string, error)
}

type service struct {
	tx          txRunner
	salesRepo   Repository
	productRepo products.Repository
	ledgerSvc   ledger.Service
	now         func() time.Time
}

// NewService builds the sales service.
func NewService(tx txRunner, salesRepo Repository, productRepo products.Repository, ledgerSvc ledger.Service) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if salesRepo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{
		tx:          tx,
		salesRepo:   salesRepo,
		productRepo: productRepo,
		ledgerSvc:   ledgerSvc,
		now:         time.Now,
	}, nil
}

// Create records a sale. All line decrements, ledger entries, and the sale row
// commit in one transaction; any failure rolls the whole sale back. When two
// sales land in the same millisecond and draw the same invoice suffix, the
// loser of the insert race rolls back and retries with a fresh number.
func (s *service) Create(ctx context.Context, input CreateSaleInput) (*models.Sale, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < invoiceMaxAttempts; attempt++ {
		invoiceNumber, err := nextInvoiceNumber(ctx, s.salesRepo, s.now().UTC())
		if err != nil {
			return nil, err
		}
		sale, err := s.createWithInvoice(ctx, input, invoiceNumber)
		if errors.Is(err, ErrDuplicateInvoice) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return sale, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique invoice number")
}

func (s *service) createWithInvoice(ctx context.Context, input CreateSaleInput, invoiceNumber string) (*models.Sale, error) {
	var created *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		salesRepo := s.salesRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		if input.CustomerID != nil {
			exists, err := salesRepo.CustomerExists(ctx, *input.CustomerID)
			if err != nil {
				return err
			}
			if !exists {
				return pkgerrors.New(pkgerrors.CodeValidation, "customer not found")
			}
		}

		subtotal := 0
		lineItems := make([]models.SaleLineItem, 0, len(input.Items))

		for _, item := range input.Items {
			product, err := productRepo.FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s is inactive", product.SKU))
			}

			lineGross := product.PriceCents * item.Qty
			if item.DiscountCents > lineGross {
				return pkgerrors.New(pkgerrors.CodeValidation, "line discount exceeds line amount")
			}
			lineSubtotal := lineGross - item.DiscountCents
			subtotal += lineSubtotal

			if !input.IsHold {
				change, err := productRepo.DecrementStock(ctx, item.ProductID, item.Qty)
				if err != nil {
					if errors.Is(err, products.ErrInsufficientStock) {
						return pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("insufficient stock for %s", product.Name))
					}
					return err
				}
				if _, err := s.ledgerSvc.Record(ctx, tx, ledger.RecordEntryInput{
					ProductID:     item.ProductID,
					Type:          enums.StockEventTypeSale,
					Quantity:      -item.Qty,
					PreviousStock: change.Previous,
					NewStock:      change.New,
					Reference:     invoiceNumber,
					Notes:         input.Notes,
					UserID:        input.CashierID,
				}); err != nil {
					return err
				}
			}

			lineItems = append(lineItems, models.SaleLineItem{
				ProductID:      product.ID,
				Name:           product.Name,
				SKU:            product.SKU,
				Qty:            item.Qty,
				UnitPriceCents: product.PriceCents,
				DiscountCents:  item.DiscountCents,
				SubtotalCents:  lineSubtotal,
			})
		}

		total := subtotal - input.DiscountCents + input.TaxCents
		if total < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "sale total cannot be negative")
		}

		status := enums.SaleStatusCompleted
		if input.IsHold {
			status = enums.SaleStatusPending
		}

		sale := &models.Sale{
			InvoiceNumber: invoiceNumber,
			CustomerID:    input.CustomerID,
			SubtotalCents: subtotal,
			DiscountCents: input.DiscountCents,
			TaxCents:      input.TaxCents,
			TotalCents:    total,
			CashierID:     input.CashierID,
			Status:        status,
			IsHold:        input.IsHold,
			Items:         lineItems,
		}
		if input.Notes != "" {
			notes := input.Notes
			sale.Notes = &notes
		}
		for _, p := range input.Payments {
			payment := models.SalePayment{
				Method:      p.Method,
				AmountCents: p.AmountCents,
			}
			if p.Details != "" {
				details := p.Details
				payment.Details = &details
			}
			sale.Payments = append(sale.Payments, payment)
		}

		if err := salesRepo.Create(ctx, sale); err != nil {
			return err
		}
		created = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Refund reverses a completed sale: stock returns to the shelf and a return
// entry lands in the ledger for every line, all in one transaction.
func (s *service) Refund(ctx context.Context, input RefundSaleInput) (*models.Sale, error) {
	if input.SaleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting user id required")
	}

	sale, err := s.salesRepo.FindByID(ctx, input.SaleID)
	if err != nil {
		return nil, err
	}
	switch sale.Status {
	case enums.SaleStatusCompleted:
	case enums.SaleStatusRefunded:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "sale already refunded")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot refund a %s sale", sale.Status))
	}

	reference := refundReferencePrefix + sale.InvoiceNumber

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		salesRepo := s.salesRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		// Guarded transition first so a concurrent refund loses cleanly.
		if err := salesRepo.UpdateStatus(ctx, sale.ID, enums.SaleStatusCompleted, enums.SaleStatusRefunded); err != nil {
			return err
		}

		for _, item := range sale.Items {
			change, err := productRepo.IncrementStock(ctx, item.ProductID, item.Qty)
			if err != nil {
				return err
			}
			if _, err := s.ledgerSvc.Record(ctx, tx, ledger.RecordEntryInput{
				ProductID:     item.ProductID,
				Type:          enums.StockEventTypeReturn,
				Quantity:      item.Qty,
				PreviousStock: change.Previous,
				NewStock:      change.New,
				Reference:     reference,
				Notes:         input.Reason,
				UserID:        input.ActorUserID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.salesRepo.FindByID(ctx, sale.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	return s.salesRepo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, input ListSalesInput) ([]models.Sale, string, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sale status %q", *input.Status))
	}
	return s.salesRepo.List(ctx, input)
}

func validateCreateInput(input CreateSaleInput) error {
	if input.CashierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cashier id required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale requires at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.DiscountCents < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item discount cannot be negative")
		}
	}
	if input.DiscountCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
	}
	if input.TaxCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "tax cannot be negative")
	}
	if input.IsHold && len(input.Payments) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "hold sales cannot carry payments")
	}
	return validatePayments(input.Payments)
}

// validatePayments checks each tender line on its own. Payments are recorded
// as captured at the till; a sale may settle with none, and totals are not
// reconciled against the tender here.
func validatePayments(payments []PaymentInput) error {
	for _, p := range payments {
		if !p.Method.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", p.Method))
		}
		if p.AmountCents <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
		}
	}
	return nil
}
