package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
)

// Service records and reads the append-only stock ledger.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordEntryInput) (*models.StockLedgerEntry, error)
	History(ctx context.Context, filter ListFilter) ([]models.StockLedgerEntry, string, error)
}

// RecordEntryInput captures the immutable data a ledger entry requires.
// Quantity is signed: negative for outbound stock, positive for inbound.
type RecordEntryInput struct {
	ProductID     uuid.UUID
	Type          enums.StockEventType
	Quantity      int
	PreviousStock int
	NewStock      int
	Reference     string
	Notes         string
	UserID        uuid.UUID
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

// Record validates and persists one ledger entry. Callers pass the open
// transaction of the stock mutation so the entry commits atomically with it.
func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordEntryInput) (*models.StockLedgerEntry, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock event type %q", input.Type))
	}
	if input.Quantity == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be zero")
	}
	if input.NewStock != input.PreviousStock+input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock snapshot does not balance")
	}
	if input.NewStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	entry := &models.StockLedgerEntry{
		ProductID:     input.ProductID,
		Type:          input.Type,
		Quantity:      input.Quantity,
		PreviousStock: input.PreviousStock,
		NewStock:      input.NewStock,
		UserID:        input.UserID,
	}
	if input.Reference != "" {
		ref := input.Reference
		entry.Reference = &ref
	}
	if input.Notes != "" {
		notes := input.Notes
		entry.Notes = &notes
	}

	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}
	if err := repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) History(ctx context.Context, filter ListFilter) ([]models.StockLedgerEntry, string, error) {
	if filter.Type != nil && !filter.Type.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock event type %q", *filter.Type))
	}
	return s.repo.List(ctx, filter)
}
