package service

import (
	"context"
	"testing"

	"go-inventory-po/internal/model"
	pkgerrors "go-inventory-po/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryDefaultsAndDuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.category(t, "Cable")
	assert.Equal(t, model.DefaultCategoryColor, c.Color)

	_, err := f.categories.Create(ctx, &model.CreateCategoryRequest{Name: "Cable"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	other := f.category(t, "Tools")
	_, err = f.categories.Update(ctx, other.ID, &model.UpdateCategoryRequest{Name: strp("Cable")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	updated, err := f.categories.Update(ctx, other.ID, &model.UpdateCategoryRequest{Color: strp("#24A148")})
	require.NoError(t, err)
	assert.Equal(t, "#24A148", updated.Color)
	assert.Equal(t, "Tools", updated.Name)
}

func TestCategoryDeleteIsGuardedByItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	used := f.category(t, "Cable")
	f.item(t, used, "Coax", 1, 0)
	empty := f.category(t, "Spare")

	err := f.categories.Delete(ctx, used.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	_, err = f.categories.Get(ctx, used.ID)
	require.NoError(t, err)

	require.NoError(t, f.categories.Delete(ctx, empty.ID))
	_, err = f.categories.Get(ctx, empty.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestVendorDeleteIsGuardedByOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	used, err := f.vendors.Create(ctx, &model.CreateVendorRequest{Name: "Acme", Email: strp("sales@acme.test")})
	require.NoError(t, err)
	unused, err := f.vendors.Create(ctx, &model.CreateVendorRequest{Name: "Globex"})
	require.NoError(t, err)

	_, err = f.vendors.Create(ctx, &model.CreateVendorRequest{Name: "Acme"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = f.orders.Create(ctx, &model.CreatePurchaseOrderRequest{
		Order: model.PurchaseOrderHeader{ProjectName: "Site A", Manager: "Kim", VendorID: &used.ID},
	})
	require.NoError(t, err)

	err = f.vendors.Delete(ctx, used.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	_, err = f.vendors.Get(ctx, used.ID)
	require.NoError(t, err)

	require.NoError(t, f.vendors.Delete(ctx, unused.ID))
	assert.True(t, pkgerrors.IsCode(f.vendors.Delete(ctx, unused.ID), pkgerrors.CodeNotFound))
}

func TestVendorValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.vendors.Create(context.Background(), &model.CreateVendorRequest{Name: "Acme", Email: strp("not-an-email")})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Contains(t, err.Error(), "email")
}
