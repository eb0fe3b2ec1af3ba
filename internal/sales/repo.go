package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/pagination"
)

// ErrDuplicateInvoice signals the invoice number unique index rejected the
// insert. Callers regenerate the number and try again.
var ErrDuplicateInvoice = pkgerrors.New(pkgerrors.CodeConflict, "duplicate invoice number")

// Repository manages persistence for sales and their line items/payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sale *models.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)
	CustomerExists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.SaleStatus) error
	List(ctx context.Context, input ListSalesInput) ([]models.Sale, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create persists the sale with its line items and payments in one insert tree.
func (r *repository) Create(ctx context.Context, sale *models.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	for i := range sale.Items {
		if sale.Items[i].ID == uuid.Nil {
			sale.Items[i].ID = uuid.New()
		}
	}
	for i := range sale.Payments {
		if sale.Payments[i].ID == uuid.Nil {
			sale.Payments[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return ErrDuplicateInvoice
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&sale, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find sale")
	}
	return &sale, nil
}

func (r *repository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check invoice number")
	}
	return count > 0, nil
}

func (r *repository) CustomerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check customer")
	}
	return count > 0, nil
}

// UpdateStatus moves a sale between states with a guarded write so two
// concurrent refunds cannot both succeed.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.SaleStatus) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE sales
		SET status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, to, id, from)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update sale status")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "sale is not in the expected state")
	}
	return nil
}

func (r *repository) List(ctx context.Context, input ListSalesInput) ([]models.Sale, string, error) {
	limit := pagination.ClampLimit(input.Page.Limit)

	q := r.db.WithContext(ctx).Model(&models.Sale{}).Preload("Items").Preload("Payments")
	if input.Status != nil {
		q = q.Where("status = ?", *input.Status)
	}
	if input.CashierID != nil {
		q = q.Where("cashier_id = ?", *input.CashierID)
	}
	if input.From != nil {
		q = q.Where("created_at >= ?", *input.From)
	}
	if input.To != nil {
		q = q.Where("created_at <= ?", *input.To)
	}

	cursor, err := pagination.Decode(input.Page.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var out []models.Sale
	if err := q.Order("created_at DESC, id DESC").Limit(pagination.FetchLimit(input.Page.Limit)).Find(&out).Error; err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}

	next := ""
	if len(out) > limit {
		out = out[:limit]
		last := out[len(out)-1]
		next = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return out, next, nil
}
