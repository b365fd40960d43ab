package repository

import (
	"context"

	"go-inventory-po/internal/model"

	"gorm.io/gorm"
)

type DashboardRepository interface {
	CountItems(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	CategoryDistribution(ctx context.Context) ([]model.CategoryDistribution, error)
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

func (r *dashboardRepo) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.InventoryItem{}).Count(&count).Error
	return count, err
}

func (r *dashboardRepo) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("current_quantity < minimum_quantity").
		Count(&count).Error
	return count, err
}

// CategoryDistribution counts items per category, keeping empty categories.
func (r *dashboardRepo) CategoryDistribution(ctx context.Context) ([]model.CategoryDistribution, error) {
	var rows []model.CategoryDistribution
	err := r.db.WithContext(ctx).Model(&model.Category{}).
		Select("categories.id AS category_id, categories.name AS name, categories.color AS color, COUNT(inventory_items.id) AS count").
		Joins("LEFT JOIN inventory_items ON inventory_items.category_id = categories.id").
		Group("categories.id, categories.name, categories.color").
		Order("categories.name ASC").
		Scan(&rows).Error
	return rows, err
}
