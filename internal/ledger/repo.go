package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/pagination"
)

// ListFilter narrows ledger history queries.
type ListFilter struct {
	ProductID *uuid.UUID
	Type      *enums.StockEventType
	Reference string
	Page      pagination.Params
}

// Repository manages persistence for stock ledger entries. Entries are
// append-only; there is no update or delete surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.StockLedgerEntry) error
	List(ctx context.Context, filter ListFilter) ([]models.StockLedgerEntry, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.StockLedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ledger entry")
	}
	return nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.StockLedgerEntry, string, error) {
	limit := pagination.ClampLimit(filter.Page.Limit)

	q := r.db.WithContext(ctx).Model(&models.StockLedgerEntry{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.Reference != "" {
		q = q.Where("reference = ?", filter.Reference)
	}

	cursor, err := pagination.Decode(filter.Page.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var entries []models.StockLedgerEntry
	if err := q.Order("created_at DESC, id DESC").Limit(pagination.FetchLimit(filter.Page.Limit)).Find(&entries).Error; err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return entries, next, nil
}

