package repository

import (
	"context"
	"strings"

	"go-inventory-po/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository interface {
	WithTx(tx *gorm.DB) ItemRepository
	Create(ctx context.Context, item *model.InventoryItem) error
	FindAll(ctx context.Context) ([]model.InventoryItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	FindByCode(ctx context.Context, code string) (*model.InventoryItem, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.InventoryItem, error)
	FindLowStock(ctx context.Context) ([]model.InventoryItem, error)
	LatestCodeWithPrefix(ctx context.Context, prefix string) (string, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) WithTx(tx *gorm.DB) ItemRepository {
	if tx == nil {
		return r
	}
	return &itemRepo{tx}
}

func (r *itemRepo) Create(ctx context.Context, item *model.InventoryItem) error {
	return r.db.WithContext(ctx).Omit("Category").Create(item).Error
}

func (r *itemRepo) FindAll(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).Preload("Category").Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := r.db.WithContext(ctx).Preload("Category").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate locks the item row until the surrounding transaction ends.
func (r *itemRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) FindByCode(ctx context.Context, code string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).Preload("Category").
		Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// FindLowStock returns items strictly below their minimum quantity.
func (r *itemRepo) FindLowStock(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).Preload("Category").
		Where("current_quantity < minimum_quantity").
		Order("current_quantity ASC").
		Find(&items).Error
	return items, err
}

// LatestCodeWithPrefix returns the highest code starting with prefix, or "" when none exists.
func (r *itemRepo) LatestCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("code LIKE ? ESCAPE '\\'", prefixPattern(prefix)).
		Order("code DESC").
		Limit(1).
		Pluck("code", &codes).Error
	if err != nil || len(codes) == 0 {
		return "", err
	}
	return codes[0], nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// prefixPattern turns a literal prefix into a LIKE pattern escaped with '\'.
func prefixPattern(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

func (r *itemRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.InventoryItem{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateQuantity is the only writer of current_quantity; callers run it inside the ledger transaction.
func (r *itemRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("id = ?", id).
		Update("current_quantity", quantity).Error
}

func (r *itemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.InventoryItem{}, "id = ?", id).Error
}
