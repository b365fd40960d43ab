package repository

import (
	"context"
	"errors"

	"go-inventory-po/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table, parents first.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Category{},
		&model.Vendor{},
		&model.InventoryItem{},
		&model.Transaction{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
	)
}

// SeedCategories inserts the default categories into an empty table.
func SeedCategories(ctx context.Context, db *gorm.DB) error {
	repo := NewCategoryRepo(db)
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, c := range model.DefaultCategories {
		category := c
		if err := repo.Create(ctx, &category); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return nil
}
