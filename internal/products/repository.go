package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
)

// ErrInsufficientStock signals a guarded decrement found less stock than requested.
var ErrInsufficientStock = pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")

// StockChange reports the on-hand quantity around a stock mutation.
type StockChange struct {
	Previous int
	New      int
}

// Repository manages persistence for catalog products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (StockChange, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) (StockChange, error)
	ListBelowThreshold(ctx context.Context) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}
	return &product, nil
}

// DecrementStock atomically subtracts qty, refusing to go below zero. The
// WHERE guard makes concurrent oversells lose the race instead of clamping.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (StockChange, error) {
	if qty <= 0 {
		return StockChange{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	res := r.db.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, qty, id, qty)
	if res.Error != nil {
		return StockChange{}, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return StockChange{}, err
		}
		return StockChange{}, ErrInsufficientStock
	}

	return r.readBack(ctx, id, qty)
}

// IncrementStock atomically adds qty back (refunds, received purchases).
func (r *repository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) (StockChange, error) {
	if qty <= 0 {
		return StockChange{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	res := r.db.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, id)
	if res.Error != nil {
		return StockChange{}, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment stock")
	}
	if res.RowsAffected == 0 {
		return StockChange{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	return r.readBack(ctx, id, -qty)
}

func (r *repository) ListBelowThreshold(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := r.db.WithContext(ctx).
		Where("stock <= low_stock_threshold AND is_active = ?", true).
		Order("stock ASC").
		Find(&out).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock products")
	}
	return out, nil
}

// readBack loads the post-update stock inside the same connection/transaction
// so callers get a consistent previous/new pair for ledger entries.
func (r *repository) readBack(ctx context.Context, id uuid.UUID, delta int) (StockChange, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return StockChange{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read back stock")
	}
	return StockChange{
		Previous: product.Stock + delta,
		New:      product.Stock,
	}, nil
}
