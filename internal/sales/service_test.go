package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/internal/ledger"
	"github.com/tillpoint/tillpoint-backend/internal/products"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

type salesTestEnv struct {
	db          *gorm.DB
	svc         Service
	productRepo products.Repository
	ledgerRepo  ledger.Repository
	cashierID   uuid.UUID
}

func setupSalesTestEnv(t *testing.T) *salesTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  barcode TEXT,
  cost_cents INTEGER NOT NULL,
  price_cents INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  low_stock_threshold INTEGER NOT NULL DEFAULT 10,
  unit TEXT NOT NULL DEFAULT 'pcs',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS sales (
  id TEXT PRIMARY KEY,
  invoice_number TEXT NOT NULL UNIQUE,
  customer_id TEXT,
  subtotal_cents INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  tax_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  cashier_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'completed',
  notes TEXT,
  is_hold INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS sale_line_items (
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  subtotal_cents INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS sale_payments (
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL,
  method TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  details TEXT,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS stock_ledger_entries (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  previous_stock INTEGER NOT NULL,
  new_stock INTEGER NOT NULL,
  reference TEXT,
  notes TEXT,
  user_id TEXT NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT,
  email TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}

	salesRepo := NewRepository(db)
	productRepo := products.NewRepository(db)
	ledgerRepo := ledger.NewRepository(db)
	ledgerSvc, err := ledger.NewService(ledgerRepo)
	require.NoError(t, err)

	svc, err := NewService(gormTxRunner{db: db}, salesRepo, productRepo, ledgerSvc)
	require.NoError(t, err)

	return &salesTestEnv{
		db:          db,
		svc:         svc,
		productRepo: productRepo,
		ledgerRepo:  ledgerRepo,
		cashierID:   uuid.New(),
	}
}

func (env *salesTestEnv) newProduct(t *testing.T, name string, priceCents, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:                uuid.New(),
		Name:              name,
		SKU:               fmt.Sprintf("SKU-%s", uuid.NewString()[:8]),
		CostCents:         priceCents / 2,
		PriceCents:        priceCents,
		Stock:             stock,
		LowStockThreshold: 5,
		Unit:              "pcs",
		IsActive:          true,
	}
	require.NoError(t, env.db.Create(product).Error)
	return product
}

func (env *salesTestEnv) ledgerEntries(t *testing.T, productID uuid.UUID) []models.StockLedgerEntry {
	t.Helper()

	entries, _, err := env.ledgerRepo.List(context.Background(), ledger.ListFilter{ProductID: &productID})
	require.NoError(t, err)
	return entries
}

func (env *salesTestEnv) stock(t *testing.T, productID uuid.UUID) int {
	t.Helper()

	product, err := env.productRepo.FindByID(context.Background(), productID)
	require.NoError(t, err)
	return product.Stock
}

func cashPayment(amount int) []PaymentInput {
	return []PaymentInput{{Method: enums.PaymentMethodCash, AmountCents: amount}}
}

func TestCreateSaleDecrementsStockAndWritesLedger(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Espresso Beans", 1500, 10)

	sale, err := env.svc.Create(ctx, CreateSaleInput{
		Items:     []LineItemInput{{ProductID: product.ID, Qty: 3}},
		TaxCents:  450,
		Payments:  cashPayment(4950),
		CashierID: env.cashierID,
	})
	require.NoError(t, err)

	assert.Regexp(t, `^INV-\d{13}-\d{3}$`, sale.InvoiceNumber)
	assert.Equal(t, enums.SaleStatusCompleted, sale.Status)
	assert.Equal(t, 4500, sale.SubtotalCents)
	assert.Equal(t, 4950, sale.TotalCents)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, 1500, sale.Items[0].UnitPriceCents, "price must be snapshotted from the catalog")

	assert.Equal(t, 7, env.stock(t, product.ID))

	entries := env.ledgerEntries(t, product.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, enums.StockEventTypeSale, entries[0].Type)
	assert.Equal(t, -3, entries[0].Quantity)
	assert.Equal(t, 10, entries[0].PreviousStock)
	assert.Equal(t, 7, entries[0].NewStock)
	require.NotNil(t, entries[0].Reference)
	assert.Equal(t, sale.InvoiceNumber, *entries[0].Reference)
	assert.Equal(t, env.cashierID, entries[0].UserID)
}

func TestCreateSaleWithCustomer(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	customer := &models.Customer{ID: uuid.New(), Name: "Walk-in Regular"}
	require.NoError(t, env.db.Create(customer).Error)

	product := env.newProduct(t, "Cold Brew", 500, 6)

	sale, err := env.svc.Create(ctx, CreateSaleInput{
		Items:      []LineItemInput{{ProductID: product.ID, Qty: 1}},
		CustomerID: &customer.ID,
		Payments:   cashPayment(500),
		CashierID:  env.cashierID,
	})
	require.NoError(t, err)
	require.NotNil(t, sale.CustomerID)
	assert.Equal(t, customer.ID, *sale.CustomerID)
}

func TestCreateSaleUnknownCustomerRejected(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Cold Brew", 500, 6)
	ghost := uuid.New()

	_, err := env.svc.Create(ctx, CreateSaleInput{
		Items:      []LineItemInput{{ProductID: product.ID, Qty: 1}},
		CustomerID: &ghost,
		Payments:   cashPayment(500),
		CashierID:  env.cashierID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Equal(t, 6, env.stock(t, product.ID))
}

func TestCreateSaleInsufficientStockLeavesNoTrace(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Filter Paper", 300, 2)

	_, err := env.svc.Create(ctx, CreateSaleInput{
		Items:     []LineItemInput{{ProductID: product.ID, Qty: 5}},
		Payments:  cashPayment(1500),
		CashierID: env.cashierID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	assert.Contains(t, err.Error(), "Filter Paper")

	assert.Equal(t, 2, env.stock(t, product.ID))
	assert.Empty(t, env.ledgerEntries(t, product.ID))

	listed, _, listErr := env.svc.List(ctx, ListSalesInput{})
	require.NoError(t, listErr)
	assert.Empty(t, listed, "failed sale must not persist")
}

func TestCreateSaleMultiLineAllOrNothing(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	plenty := env.newProduct(t, "Cups", 200, 50)
	scarce := env.newProduct(t, "Lids", 100, 1)

	_, err := env.svc.Create(ctx, CreateSaleInput{
		Items: []LineItemInput{
			{ProductID: plenty.ID, Qty: 10},
			{ProductID: scarce.ID, Qty: 4},
		},
		Payments:  cashPayment(2400),
		CashierID: env.cashierID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	assert.Equal(t, 50, env.stock(t, plenty.ID), "first line must roll back with the failed sale")
	assert.Equal(t, 1, env.stock(t, scarce.ID))
	assert.Empty(t, env.ledgerEntries(t, plenty.ID))
}

func TestCreateSaleDiscountsAndTotals(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Syrup", 800, 20)

	sale, err := env.svc.Create(ctx, CreateSaleInput{
		Items:         []LineItemInput{{ProductID: product.ID, Qty: 5, DiscountCents: 500}},
		DiscountCents: 300,
		TaxCents:      200,
		Payments:      cashPayment(3400),
		CashierID:     env.cashierID,
	})
	require.NoError(t, err)

	// 5*800 - 500 = 3500 line subtotal; 3500 - 300 + 200 = 3400 total
	assert.Equal(t, 3500, sale.SubtotalCents)
	assert.Equal(t, 3400, sale.TotalCents)
	assert.Equal(t, 3500, sale.Items[0].SubtotalCents)
}

func TestCreateHoldSaleSkipsStockAndLedger(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Muffin", 350, 6)

	sale, err := env.svc.Create(ctx, CreateSaleInput{
		Items:     []LineItemInput{{ProductID: product.ID, Qty: 4}},
		IsHold:    true,
		CashierID: env.cashierID,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.SaleStatusPending, sale.Status)
	assert.True(t, sale.IsHold)
	assert.Equal(t, 6, env.stock(t, product.ID), "hold sales must not touch stock")
	assert.Empty(t, env.ledgerEntries(t, product.ID))
}

func TestCreateSaleValidation(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Tea", 400, 10)

	cases := []struct {
		name  string
		input CreateSaleInput
	}{
		{"no items", CreateSaleInput{CashierID: env.cashierID, Payments: cashPayment(100)}},
		{"missing cashier", CreateSaleInput{Items: []LineItemInput{{ProductID: product.ID, Qty: 1}}, Payments: cashPayment(400)}},
		{"zero qty", CreateSaleInput{Items: []LineItemInput{{ProductID: product.ID, Qty: 0}}, Payments: cashPayment(400), CashierID: env.cashierID}},
		{"negative tax", CreateSaleInput{Items: []LineItemInput{{ProductID: product.ID, Qty: 1}}, TaxCents: -1, Payments: cashPayment(400), CashierID: env.cashierID}},
		{"hold with payments", CreateSaleInput{Items: []LineItemInput{{ProductID: product.ID, Qty: 1}}, IsHold: true, Payments: cashPayment(400), CashierID: env.cashierID}},
		{"zero payment amount", CreateSaleInput{Items: []LineItemInput{{ProductID: product.ID, Qty: 1}}, Payments: []PaymentInput{{Method: enums.PaymentMethodCash, AmountCents: 0}}, CashierID: env.cashierID}},
		{"bad method", CreateSaleInput{Items: []LineItemInput{{ProductID: product.ID, Qty: 1}}, Payments: []PaymentInput{{Method: "barter", AmountCents: 400}}, CashierID: env.cashierID}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Create(ctx, tc.input)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}

	assert.Equal(t, 10, env.stock(t, product.ID))
}

func TestCreateSaleWithoutPaymentsCompletes(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Drip Filter", 1200, 10)

	sale, err := env.svc.Create(ctx, CreateSaleInput{
		Items:     []LineItemInput{{ProductID: product.ID, Qty: 3}},
		CashierID: env.cashierID,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.SaleStatusCompleted, sale.Status)
	assert.Equal(t, 3600, sale.TotalCents)
	assert.Empty(t, sale.Payments)
	assert.Equal(t, 7, env.stock(t, product.ID))

	entries := env.ledgerEntries(t, product.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, -3, entries[0].Quantity)
}

// collidingInvoiceRepo loses the invoice insert race a set number of times
// before delegating to the real repository.
type collidingInvoiceRepo struct {
	Repository
	collisions *int
}

func (r collidingInvoiceRepo) WithTx(tx *gorm.DB) Repository {
	return collidingInvoiceRepo{Repository: r.Repository.WithTx(tx), collisions: r.collisions}
}

func (r collidingInvoiceRepo) Create(ctx context.Context, sale *models.Sale) error {
	if *r.collisions > 0 {
		*r.collisions--
		return ErrDuplicateInvoice
	}
	return r.Repository.Create(ctx, sale)
}

func TestCreateSaleRetriesOnInvoiceCollision(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Moka Pot", 2500, 4)

	collisions := 1
	salesRepo := collidingInvoiceRepo{Repository: NewRepository(env.db), collisions: &collisions}
	ledgerSvc, err := ledger.NewService(env.ledgerRepo)
	require.NoError(t, err)
	svc, err := NewService(gormTxRunner{db: env.db}, salesRepo, env.productRepo, ledgerSvc)
	require.NoError(t, err)

	sale, err := svc.Create(ctx, CreateSaleInput{
		Items:     []LineItemInput{{ProductID: product.ID, Qty: 1}},
		Payments:  cashPayment(2500),
		CashierID: env.cashierID,
	})
	require.NoError(t, err)
	assert.Zero(t, collisions)

	// only the committed attempt left a trace
	assert.Equal(t, 3, env.stock(t, product.ID))
	require.Len(t, env.ledgerEntries(t, product.ID), 1)

	var count int64
	require.NoError(t, env.db.Model(&models.Sale{}).Where("invoice_number = ?", sale.InvoiceNumber).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRepositoryCreateMapsDuplicateInvoice(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()
	repo := NewRepository(env.db)

	first := models.Sale{
		InvoiceNumber: "INV-1756600000000-001",
		SubtotalCents: 100,
		TotalCents:    100,
		CashierID:     env.cashierID,
		Status:        enums.SaleStatusCompleted,
	}
	require.NoError(t, repo.Create(ctx, &first))

	second := models.Sale{
		InvoiceNumber: first.InvoiceNumber,
		SubtotalCents: 200,
		TotalCents:    200,
		CashierID:     env.cashierID,
		Status:        enums.SaleStatusCompleted,
	}
	err := repo.Create(ctx, &second)
	require.ErrorIs(t, err, ErrDuplicateInvoice)
}

func TestCreateSaleMissingProduct(t *testing.T) {
	env := setupSalesTestEnv(t)

	_, err := env.svc.Create(context.Background(), CreateSaleInput{
		Items:     []LineItemInput{{ProductID: uuid.New(), Qty: 1}},
		Payments:  cashPayment(100),
		CashierID: env.cashierID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRefundRestoresStockAndLedger(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Espresso Beans", 1500, 10)
	sale, err := env.svc.Create(ctx, CreateSaleInput{
		Items:     []LineItemInput{{ProductID: product.ID, Qty: 3}},
		Payments:  cashPayment(4500),
		CashierID: env.cashierID,
	})
	require.NoError(t, err)
	require.Equal(t, 7, env.stock(t, product.ID))

	manager := uuid.New()
	refunded, err := env.svc.Refund(ctx, RefundSaleInput{
		SaleID:      sale.ID,
		ActorUserID: manager,
		Reason:      "customer return",
	})
	require.NoError(t, err)

	assert.Equal(t, enums.SaleStatusRefunded, refunded.Status)
	assert.Equal(t, 10, env.stock(t, product.ID))

	entries := env.ledgerEntries(t, product.ID)
	require.Len(t, entries, 2)

	var returnEntry *models.StockLedgerEntry
	for i := range entries {
		if entries[i].Type == enums.StockEventTypeReturn {
			returnEntry = &entries[i]
		}
	}
	require.NotNil(t, returnEntry)
	assert.Equal(t, 3, returnEntry.Quantity)
	assert.Equal(t, 7, returnEntry.PreviousStock)
	assert.Equal(t, 10, returnEntry.NewStock)
	require.NotNil(t, returnEntry.Reference)
	assert.Equal(t, "REFUND-"+sale.InvoiceNumber, *returnEntry.Reference)
	assert.Equal(t, manager, returnEntry.UserID)
}

func TestRefundTwiceRejected(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Cold Brew", 600, 8)
	sale, err := env.svc.Create(ctx, CreateSaleInput{
		Items:     []LineItemInput{{ProductID: product.ID, Qty: 2}},
		Payments:  cashPayment(1200),
		CashierID: env.cashierID,
	})
	require.NoError(t, err)

	actor := uuid.New()
	_, err = env.svc.Refund(ctx, RefundSaleInput{SaleID: sale.ID, ActorUserID: actor})
	require.NoError(t, err)

	_, err = env.svc.Refund(ctx, RefundSaleInput{SaleID: sale.ID, ActorUserID: actor})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	assert.Equal(t, 8, env.stock(t, product.ID), "second refund must not restock again")
	assert.Len(t, env.ledgerEntries(t, product.ID), 2)
}

func TestRefundPendingSaleRejected(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Bagel", 250, 5)
	sale, err := env.svc.Create(ctx, CreateSaleInput{
		Items:     []LineItemInput{{ProductID: product.ID, Qty: 1}},
		IsHold:    true,
		CashierID: env.cashierID,
	})
	require.NoError(t, err)

	_, err = env.svc.Refund(ctx, RefundSaleInput{SaleID: sale.ID, ActorUserID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestRefundMissingSale(t *testing.T) {
	env := setupSalesTestEnv(t)

	_, err := env.svc.Refund(context.Background(), RefundSaleInput{SaleID: uuid.New(), ActorUserID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListSalesFiltersByStatus(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Scone", 300, 30)

	_, err := env.svc.Create(ctx, CreateSaleInput{
		Items:     []LineItemInput{{ProductID: product.ID, Qty: 1}},
		Payments:  cashPayment(300),
		CashierID: env.cashierID,
	})
	require.NoError(t, err)

	_, err = env.svc.Create(ctx, CreateSaleInput{
		Items:     []LineItemInput{{ProductID: product.ID, Qty: 2}},
		IsHold:    true,
		CashierID: env.cashierID,
	})
	require.NoError(t, err)

	pending := enums.SaleStatusPending
	listed, _, err := env.svc.List(ctx, ListSalesInput{Status: &pending})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].IsHold)

	all, _, err := env.svc.List(ctx, ListSalesInput{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListSalesFiltersByDateRange(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Muffin", 250, 30)
	sale, err := env.svc.Create(ctx, CreateSaleInput{
		Items:     []LineItemInput{{ProductID: product.ID, Qty: 1}},
		Payments:  cashPayment(250),
		CashierID: env.cashierID,
	})
	require.NoError(t, err)

	from := sale.CreatedAt.Add(-time.Minute)
	to := sale.CreatedAt.Add(time.Minute)
	listed, _, err := env.svc.List(ctx, ListSalesInput{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, sale.ID, listed[0].ID)

	past := sale.CreatedAt.Add(-2 * time.Hour)
	pastEnd := sale.CreatedAt.Add(-time.Hour)
	listed, _, err = env.svc.List(ctx, ListSalesInput{From: &past, To: &pastEnd})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestGetSaleLoadsLinesAndPayments(t *testing.T) {
	env := setupSalesTestEnv(t)
	ctx := context.Background()

	product := env.newProduct(t, "Latte", 550, 10)
	sale, err := env.svc.Create(ctx, CreateSaleInput{
		Items:     []LineItemInput{{ProductID: product.ID, Qty: 2}},
		Payments:  []PaymentInput{{Method: enums.PaymentMethodCard, AmountCents: 1100, Details: "visa ****4242"}},
		CashierID: env.cashierID,
	})
	require.NoError(t, err)

	got, err := env.svc.Get(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Len(t, got.Payments, 1)
	assert.Equal(t, enums.PaymentMethodCard, got.Payments[0].Method)
}
