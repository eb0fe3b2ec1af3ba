package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/internal/ledger"
	"github.com/tillpoint/tillpoint-backend/internal/products"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
)

// Direction says which way a manual adjustment moves stock.
type Direction string

const (
	DirectionAdd    Direction = "add"
	DirectionRemove Direction = "remove"
)

// IsValid reports whether the value is a known Direction.
func (d Direction) IsValid() bool {
	return d == DirectionAdd || d == DirectionRemove
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AdjustStockInput captures a manual stock correction.
type AdjustStockInput struct {
	ProductID   uuid.UUID
	Direction   Direction
	Qty         int
	EventType   enums.StockEventType
	Notes       string
	ActorUserID uuid.UUID
}

// AdjustResult reports the adjustment outcome.
type AdjustResult struct {
	Product *models.Product
	Entry   *models.StockLedgerEntry
}

// Service applies manual stock adjustments and serves adjustment history.
type Service interface {
	Adjust(ctx context.Context, input AdjustStockInput) (*AdjustResult, error)
	History(ctx context.Context, filter ledger.ListFilter) ([]models.StockLedgerEntry, string, error)
	LowStock(ctx context.Context) ([]models.Product, error)
}

type service struct {
	tx          txRunner
	productRepo products.Repository
	ledgerSvc   ledger.Service
}

// NewService builds the inventory service.
func NewService(tx txRunner, productRepo products.Repository, ledgerSvc ledger.Service) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{tx: tx, productRepo: productRepo, ledgerSvc: ledgerSvc}, nil
}

// Adjust moves stock up or down and records the matching ledger entry in the
// same transaction. Removals can never push stock below zero.
func (s *service) Adjust(ctx context.Context, input AdjustStockInput) (*AdjustResult, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting user id required")
	}
	if !input.Direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid direction %q", input.Direction))
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	eventType := input.EventType
	if eventType == "" {
		eventType = enums.StockEventTypeAdjustment
	}
	if !eventType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock event type %q", eventType))
	}
	if eventType == enums.StockEventTypeSale || eventType == enums.StockEventTypeReturn {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale and return entries are written by the sales engine")
	}

	result := &AdjustResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)

		var change products.StockChange
		var err error
		quantity := input.Qty
		if input.Direction == DirectionAdd {
			change, err = productRepo.IncrementStock(ctx, input.ProductID, input.Qty)
		} else {
			quantity = -input.Qty
			change, err = productRepo.DecrementStock(ctx, input.ProductID, input.Qty)
			if errors.Is(err, products.ErrInsufficientStock) {
				err = pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
			}
		}
		if err != nil {
			return err
		}

		entry, err := s.ledgerSvc.Record(ctx, tx, ledger.RecordEntryInput{
			ProductID:     input.ProductID,
			Type:          eventType,
			Quantity:      quantity,
			PreviousStock: change.Previous,
			NewStock:      change.New,
			Notes:         input.Notes,
			UserID:        input.ActorUserID,
		})
		if err != nil {
			return err
		}

		product, err := productRepo.FindByID(ctx, input.ProductID)
		if err != nil {
			return err
		}

		result.Product = product
		result.Entry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) History(ctx context.Context, filter ledger.ListFilter) ([]models.StockLedgerEntry, string, error) {
	return s.ledgerSvc.History(ctx, filter)
}

func (s *service) LowStock(ctx context.Context) ([]models.Product, error) {
	return s.productRepo.ListBelowThreshold(ctx)
}
