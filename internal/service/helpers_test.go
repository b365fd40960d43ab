package service

import (
	"context"
	"testing"
	"time"

	"go-inventory-po/internal/model"
	"go-inventory-po/internal/repository"
	"go-inventory-po/internal/testutil"
	"go-inventory-po/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db           *gorm.DB
	categoryRepo repository.CategoryRepository
	itemRepo     repository.ItemRepository
	txRepo       repository.TransactionRepository
	poRepo       repository.PurchaseOrderRepository
	vendorRepo   repository.VendorRepository
	inventory    *inventoryService
	categories   CategoryService
	vendors      VendorService
	orders       *purchaseOrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	log := logger.Nop()

	f := &fixture{
		db:           db,
		categoryRepo: repository.NewCategoryRepo(db),
		itemRepo:     repository.NewItemRepo(db),
		txRepo:       repository.NewTransactionRepo(db),
		poRepo:       repository.NewPurchaseOrderRepo(db),
		vendorRepo:   repository.NewVendorRepo(db),
	}
	f.inventory = NewInventoryService(db, f.itemRepo, f.txRepo, f.categoryRepo, f.poRepo, log, nil).(*inventoryService)
	f.categories = NewCategoryService(f.categoryRepo, log)
	f.vendors = NewVendorService(db, f.vendorRepo, f.poRepo, log)
	f.orders = NewPurchaseOrderService(db, f.poRepo, f.vendorRepo, f.itemRepo, log).(*purchaseOrderService)
	return f
}

func (f *fixture) category(t *testing.T, name string) *model.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), &model.CreateCategoryRequest{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) item(t *testing.T, category *model.Category, name string, current, minimum int) *model.InventoryItem {
	t.Helper()
	item, err := f.inventory.CreateItem(context.Background(), &model.CreateItemRequest{
		Name:            name,
		CategoryID:      category.ID,
		CurrentQuantity: current,
		MinimumQuantity: minimum,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) transactions(t *testing.T, item *model.InventoryItem) []model.Transaction {
	t.Helper()
	txns, err := f.txRepo.FindByItem(context.Background(), item.ID)
	require.NoError(t, err)
	return txns
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func strp(s string) *string {
	return &s
}

func intp(i int) *int {
	return &i
}
