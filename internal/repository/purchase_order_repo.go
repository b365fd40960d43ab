package repository

import (
	"context"

	"go-inventory-po/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrderRepository interface {
	WithTx(tx *gorm.DB) PurchaseOrderRepository
	Create(ctx context.Context, order *model.PurchaseOrder) error
	FindAll(ctx context.Context, status model.PurchaseOrderStatus) ([]model.PurchaseOrder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*model.PurchaseOrder, error)
	LatestOrderNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error)

	CreateItem(ctx context.Context, line *model.PurchaseOrderItem) error
	FindItems(ctx context.Context, orderID uuid.UUID) ([]model.PurchaseOrderItem, error)
	FindItem(ctx context.Context, orderID, lineID uuid.UUID) (*model.PurchaseOrderItem, error)
	SaveItem(ctx context.Context, line *model.PurchaseOrderItem) error
	DeleteItem(ctx context.Context, orderID, lineID uuid.UUID) error
	UnlinkInventoryItem(ctx context.Context, itemID uuid.UUID) error
	SumItemAmounts(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
}

type purchaseOrderRepo struct {
	db *gorm.DB
}

func NewPurchaseOrderRepo(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db}
}

func (r *purchaseOrderRepo) WithTx(tx *gorm.DB) PurchaseOrderRepository {
	if tx == nil {
		return r
	}
	return &purchaseOrderRepo{tx}
}

func (r *purchaseOrderRepo) Create(ctx context.Context, order *model.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *purchaseOrderRepo) FindAll(ctx context.Context, status model.PurchaseOrderStatus) ([]model.PurchaseOrder, error) {
	query := r.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []model.PurchaseOrder
	err := query.Order("order_date DESC, order_number DESC").Find(&orders).Error
	return orders, err
}

func (r *purchaseOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate locks the order row; line mutations serialize on it.
func (r *purchaseOrderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	if err := r.db.WithContext(ctx).First(&order, "order_number = ?", orderNumber).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepo) LatestOrderNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Where("order_number LIKE ? ESCAPE '\\'", prefixPattern(prefix)).
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}

func (r *purchaseOrderRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes the order and its lines.
func (r *purchaseOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("purchase_order_id = ?", id).Delete(&model.PurchaseOrderItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.PurchaseOrder{}, "id = ?", id).Error
}

func (r *purchaseOrderRepo) CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).Where("vendor_id = ?", vendorID).Count(&count).Error
	return count, err
}

func (r *purchaseOrderRepo) CreateItem(ctx context.Context, line *model.PurchaseOrderItem) error {
	return r.db.WithContext(ctx).Omit("Item").Create(line).Error
}

func (r *purchaseOrderRepo) FindItems(ctx context.Context, orderID uuid.UUID) ([]model.PurchaseOrderItem, error) {
	var lines []model.PurchaseOrderItem
	err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", orderID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *purchaseOrderRepo) FindItem(ctx context.Context, orderID, lineID uuid.UUID) (*model.PurchaseOrderItem, error) {
	var line model.PurchaseOrderItem
	err := r.db.WithContext(ctx).
		First(&line, "id = ? AND purchase_order_id = ?", lineID, orderID).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *purchaseOrderRepo) SaveItem(ctx context.Context, line *model.PurchaseOrderItem) error {
	return r.db.WithContext(ctx).Omit("Item").Save(line).Error
}

func (r *purchaseOrderRepo) DeleteItem(ctx context.Context, orderID, lineID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND purchase_order_id = ?", lineID, orderID).
		Delete(&model.PurchaseOrderItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UnlinkInventoryItem clears the item reference on lines; their snapshot fields stay.
func (r *purchaseOrderRepo) UnlinkInventoryItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.PurchaseOrderItem{}).
		Where("item_id = ?", itemID).
		Update("item_id", nil).Error
}

func (r *purchaseOrderRepo) SumItemAmounts(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.PurchaseOrderItem{}).
		Where("purchase_order_id = ?", orderID).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total, nil
}
