package service

import (
	"context"
	"testing"
	"time"

	"go-inventory-po/internal/model"
	pkgerrors "go-inventory-po/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItemRecordsOpeningStock(t *testing.T) {
	f := newFixture(t)
	f.inventory.now = fixedClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	cable := f.category(t, "cable")

	item := f.item(t, cable, "UTP Cat.6", 20, 10)
	assert.Equal(t, "C-2026-0001", item.Code)
	assert.Equal(t, 20, item.CurrentQuantity)

	txns := f.transactions(t, item)
	require.Len(t, txns, 1)
	assert.Equal(t, model.TxIn, txns[0].Type)
	assert.Equal(t, 20, txns[0].Quantity)
	require.NotNil(t, txns[0].Project)
	assert.Equal(t, model.ProjectInitialRegistration, *txns[0].Project)

	second := f.item(t, cable, "UTP Cat.5e", 0, 0)
	assert.Equal(t, "C-2026-0002", second.Code)
	assert.Empty(t, f.transactions(t, second))
}

func TestCreateItemUnknownCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.inventory.CreateItem(context.Background(), &model.CreateItemRequest{
		Name:       "orphan",
		CategoryID: uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateItemValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.inventory.CreateItem(context.Background(), &model.CreateItemRequest{CurrentQuantity: -1})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Contains(t, err.Error(), "'name' is required")
}

func TestUpdateItemQuantityWritesAdjustment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.item(t, f.category(t, "Tools"), "Drill", 20, 5)

	updated, err := f.inventory.UpdateItem(ctx, item.ID, &model.UpdateItemRequest{CurrentQuantity: intp(15), Location: strp("B-2")})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.CurrentQuantity)
	assert.Equal(t, "B-2", *updated.Location)

	txns := f.transactions(t, item)
	require.Len(t, txns, 2)
	adjustment := txns[0]
	assert.Equal(t, model.TxOut, adjustment.Type)
	assert.Equal(t, 5, adjustment.Quantity)
	assert.Equal(t, model.ProjectAdjustment, *adjustment.Project)

	updated, err = f.inventory.UpdateItem(ctx, item.ID, &model.UpdateItemRequest{CurrentQuantity: intp(30)})
	require.NoError(t, err)
	assert.Equal(t, 30, updated.CurrentQuantity)
	txns = f.transactions(t, item)
	require.Len(t, txns, 3)
	assert.Equal(t, model.TxIn, txns[0].Type)
	assert.Equal(t, 15, txns[0].Quantity)

	check, err := f.inventory.VerifyLedger(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.Equal(t, 30, check.LedgerQuantity)
}

func TestUpdateItemWithoutQuantityChangeLeavesLedger(t *testing.T) {
	f := newFixture(t)
	item := f.item(t, f.category(t, "Tools"), "Drill", 20, 5)

	updated, err := f.inventory.UpdateItem(context.Background(), item.ID, &model.UpdateItemRequest{CurrentQuantity: intp(20), Name: strp("Hammer drill")})
	require.NoError(t, err)
	assert.Equal(t, "Hammer drill", updated.Name)
	assert.Len(t, f.transactions(t, item), 1)
}

func TestRecordTransactionKeepsQuantityEqualToLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.item(t, f.category(t, "Lighting"), "LED panel", 0, 3)

	moves := []struct {
		typ model.TransactionType
		qty int
	}{
		{model.TxIn, 10}, {model.TxOut, 3}, {model.TxIn, 7}, {model.TxOut, 14}, {model.TxIn, 2},
	}
	in, out := 0, 0
	for _, m := range moves {
		txn, err := f.inventory.RecordTransaction(ctx, &model.CreateTransactionRequest{ItemID: item.ID, Type: m.typ, Quantity: m.qty})
		require.NoError(t, err)
		if m.typ == model.TxIn {
			in += m.qty
		} else {
			out += m.qty
		}
		assert.Equal(t, in-out, txn.Item.CurrentQuantity)
	}

	stored, err := f.inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentQuantity)

	check, err := f.inventory.VerifyLedger(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.Equal(t, 19, check.LedgerInbound)
	assert.Equal(t, 17, check.LedgerOutbound)
}

func TestRecordTransactionRejectsOverdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.item(t, f.category(t, "Cable"), "Coax", 4, 0)

	_, err := f.inventory.RecordTransaction(ctx, &model.CreateTransactionRequest{ItemID: item.ID, Type: model.TxOut, Quantity: 5})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	stored, err := f.inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.CurrentQuantity)
	assert.Len(t, f.transactions(t, item), 1)

	_, err = f.inventory.RecordTransaction(ctx, &model.CreateTransactionRequest{ItemID: item.ID, Type: model.TxOut, Quantity: 4})
	require.NoError(t, err)
	stored, err = f.inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.CurrentQuantity)
}

func TestRecordTransactionErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inventory.RecordTransaction(ctx, &model.CreateTransactionRequest{ItemID: uuid.New(), Type: model.TxIn, Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.inventory.RecordTransaction(ctx, &model.CreateTransactionRequest{ItemID: uuid.New(), Type: "sideways", Quantity: 0})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListLowStockIsStrictlyBelowMinimum(t *testing.T) {
	f := newFixture(t)
	category := f.category(t, "Telecom")
	below := f.item(t, category, "below", 1, 5)
	f.item(t, category, "equal", 5, 5)
	f.item(t, category, "above", 9, 5)

	items, err := f.inventory.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, below.ID, items[0].ID)
}

func TestDeleteItemRemovesLedgerAndUnlinksOrderLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.item(t, f.category(t, "Cable"), "Coax", 4, 0)
	item.UnitPrice = price(1500)
	require.NoError(t, f.itemRepo.Update(ctx, item.ID, map[string]interface{}{"unit_price": *item.UnitPrice}))

	detail, err := f.orders.Create(ctx, &model.CreatePurchaseOrderRequest{
		Order: model.PurchaseOrderHeader{ProjectName: "Site A", Manager: "Kim", VendorName: "Acme"},
		Items: []model.PurchaseOrderItemRequest{{ItemID: &item.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, f.inventory.DeleteItem(ctx, item.ID))

	_, err = f.inventory.GetItem(ctx, item.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Empty(t, f.transactions(t, item))

	lines, err := f.poRepo.FindItems(ctx, detail.Order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].ItemID)
	assert.Equal(t, "Coax", lines[0].ItemName)

	assert.True(t, pkgerrors.IsCode(f.inventory.DeleteItem(ctx, item.ID), pkgerrors.CodeNotFound))
}

func TestListTransactionsRejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	_, err := f.inventory.ListTransactions(context.Background(), model.TransactionFilter{Type: "sideways"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestItemCodeSequenceWithWildcardInitial(t *testing.T) {
	f := newFixture(t)
	f.inventory.now = fixedClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	cable := f.category(t, "Cable")
	misc := f.category(t, "%misc")
	under := f.category(t, "_spare")

	assert.Equal(t, "C-2026-0001", f.item(t, cable, "UTP", 0, 0).Code)
	assert.Equal(t, "%-2026-0001", f.item(t, misc, "Tape", 0, 0).Code)
	assert.Equal(t, "%-2026-0002", f.item(t, misc, "Ties", 0, 0).Code)
	assert.Equal(t, "_-2026-0001", f.item(t, under, "Fuse", 0, 0).Code)
	assert.Equal(t, "_-2026-0002", f.item(t, under, "Lamp", 0, 0).Code)
	assert.Equal(t, "C-2026-0002", f.item(t, cable, "Coax", 0, 0).Code)
}

func TestItemCodePrefix(t *testing.T) {
	ts := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "C-2026-", itemCodePrefix("cable", ts))
	assert.Equal(t, "케-2026-", itemCodePrefix("케이블", ts))
	assert.Equal(t, "X-2026-", itemCodePrefix("  ", ts))
	assert.Equal(t, "C-2026-0011", nextCode("C-2026-", "C-2026-0010"))
	assert.Equal(t, "PO-202601-0001", nextCode("PO-202601-", ""))
}
