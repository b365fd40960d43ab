package repository

import (
	"context"
	"time"

	"go-inventory-po/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	WithTx(tx *gorm.DB) TransactionRepository
	Create(ctx context.Context, txn *model.Transaction) error
	FindAll(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]model.Transaction, error)
	DeleteByItem(ctx context.Context, itemID uuid.UUID) error
	SumByItem(ctx context.Context, itemID uuid.UUID) (*LedgerSum, error)
	CountByTypeSince(ctx context.Context, txType model.TransactionType, since time.Time) (int64, error)
	SumQuantityByTypeSince(ctx context.Context, txType model.TransactionType, since time.Time) (int64, error)
}

// LedgerSum is the inbound and outbound total of one item's transactions.
type LedgerSum struct {
	Inbound  int64
	Outbound int64
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) WithTx(tx *gorm.DB) TransactionRepository {
	if tx == nil {
		return r
	}
	return &transactionRepo{tx}
}

func (r *transactionRepo) Create(ctx context.Context, txn *model.Transaction) error {
	return r.db.WithContext(ctx).Omit("Item").Create(txn).Error
}

// FindAll lists transactions newest first with their item preloaded.
func (r *transactionRepo) FindAll(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	query := r.db.WithContext(ctx).Preload("Item")
	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var transactions []model.Transaction
	err := query.Order("created_at DESC").Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindByItem(ctx context.Context, itemID uuid.UUID) ([]model.Transaction, error) {
	return r.FindAll(ctx, model.TransactionFilter{ItemID: &itemID})
}

func (r *transactionRepo) DeleteByItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("item_id = ?", itemID).Delete(&model.Transaction{}).Error
}

func (r *transactionRepo) SumByItem(ctx context.Context, itemID uuid.UUID) (*LedgerSum, error) {
	var sum LedgerSum
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select(`
			COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE 0 END), 0) AS inbound,
			COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE 0 END), 0) AS outbound
		`, model.TxIn, model.TxOut).
		Where("item_id = ?", itemID).
		Scan(&sum).Error
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

func (r *transactionRepo) CountByTypeSince(ctx context.Context, txType model.TransactionType, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("type = ? AND created_at >= ?", txType, since).
		Count(&count).Error
	return count, err
}

func (r *transactionRepo) SumQuantityByTypeSince(ctx context.Context, txType model.TransactionType, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("type = ? AND created_at >= ?", txType, since).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}
