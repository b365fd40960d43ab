package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go-inventory-po/internal/model"
	"go-inventory-po/internal/repository"
	pkgerrors "go-inventory-po/pkg/errors"
	"go-inventory-po/pkg/logger"
	"go-inventory-po/pkg/metrics"
	"go-inventory-po/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryService owns items and the stock ledger. An item's current quantity
// only changes together with a transaction row, inside one database transaction.
type InventoryService interface {
	CreateItem(ctx context.Context, req *model.CreateItemRequest) (*model.InventoryItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, req *model.UpdateItemRequest) (*model.InventoryItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	GetItem(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	ListItems(ctx context.Context) ([]model.InventoryItem, error)
	ListLowStock(ctx context.Context) ([]model.InventoryItem, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.InventoryItem, error)
	RecordTransaction(ctx context.Context, req *model.CreateTransactionRequest) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
	ListTransactionsByItem(ctx context.Context, itemID uuid.UUID) ([]model.Transaction, error)
	VerifyLedger(ctx context.Context, itemID uuid.UUID) (*model.LedgerCheck, error)
}

type inventoryService struct {
	db           *gorm.DB
	itemRepo     repository.ItemRepository
	txRepo       repository.TransactionRepository
	categoryRepo repository.CategoryRepository
	poRepo       repository.PurchaseOrderRepository
	log          *logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewInventoryService(
	db *gorm.DB,
	itemRepo repository.ItemRepository,
	txRepo repository.TransactionRepository,
	categoryRepo repository.CategoryRepository,
	poRepo repository.PurchaseOrderRepository,
	log *logger.Logger,
	m *metrics.Metrics,
) InventoryService {
	return &inventoryService{
		db:           db,
		itemRepo:     itemRepo,
		txRepo:       txRepo,
		categoryRepo: categoryRepo,
		poRepo:       poRepo,
		log:          log,
		metrics:      m,
		now:          time.Now,
	}
}

func (s *inventoryService) CreateItem(ctx context.Context, req *model.CreateItemRequest) (*model.InventoryItem, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	item := &model.InventoryItem{
		Name:            strings.TrimSpace(req.Name),
		CategoryID:      req.CategoryID,
		Specification:   req.Specification,
		UnitType:        req.UnitType,
		CurrentQuantity: req.CurrentQuantity,
		MinimumQuantity: req.MinimumQuantity,
		Location:        req.Location,
		UnitPrice:       req.UnitPrice,
		Notes:           req.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.categoryRepo.WithTx(tx).FindByID(ctx, req.CategoryID)
		if err != nil {
			return lookupError(err, "category")
		}

		items := s.itemRepo.WithTx(tx)
		prefix := itemCodePrefix(category.Name, s.now())
		latest, err := items.LatestCodeWithPrefix(ctx, prefix)
		if err != nil {
			return storeError(err, "failed to generate item code")
		}
		item.Code = nextCode(prefix, latest)

		if err := items.Create(ctx, item); err != nil {
			return storeError(err, "failed to create item")
		}

		// Opening stock is recorded as a transaction so the ledger sums to the stored quantity.
		if item.CurrentQuantity > 0 {
			project, note := model.ProjectInitialRegistration, model.NoteInitialRegistration
			opening := &model.Transaction{
				ItemID:   item.ID,
				Type:     model.TxIn,
				Quantity: item.CurrentQuantity,
				Project:  &project,
				Note:     &note,
			}
			if err := s.txRepo.WithTx(tx).Create(ctx, opening); err != nil {
				return storeError(err, "failed to record opening stock")
			}
		}
		item.Category = category
		return nil
	})
	if err != nil {
		return nil, err
	}

	if item.CurrentQuantity > 0 {
		s.metrics.IncStockMovement(string(model.TxIn))
	}
	s.log.InfoFields(ctx, "item created", map[string]any{"item_id": item.ID, "code": item.Code, "quantity": item.CurrentQuantity})
	return item, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, id uuid.UUID, req *model.UpdateItemRequest) (*model.InventoryItem, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	var adjustment *model.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := s.itemRepo.WithTx(tx)
		existing, err := items.FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "item")
		}

		fields := map[string]interface{}{}
		if req.Name != nil {
			fields["name"] = strings.TrimSpace(*req.Name)
		}
		if req.CategoryID != nil && *req.CategoryID != existing.CategoryID {
			if _, err := s.categoryRepo.WithTx(tx).FindByID(ctx, *req.CategoryID); err != nil {
				return lookupError(err, "category")
			}
			fields["category_id"] = *req.CategoryID
		}
		if req.Specification != nil {
			fields["specification"] = *req.Specification
		}
		if req.UnitType != nil {
			fields["unit_type"] = *req.UnitType
		}
		if req.MinimumQuantity != nil {
			fields["minimum_quantity"] = *req.MinimumQuantity
		}
		if req.Location != nil {
			fields["location"] = *req.Location
		}
		if req.UnitPrice != nil {
			fields["unit_price"] = *req.UnitPrice
		}
		if req.Notes != nil {
			fields["notes"] = *req.Notes
		}

		// A direct quantity edit is written to the ledger before it is applied.
		if req.CurrentQuantity != nil && *req.CurrentQuantity != existing.CurrentQuantity {
			diff := *req.CurrentQuantity - existing.CurrentQuantity
			project, note := model.ProjectAdjustment, model.NoteAdjustment
			adjustment = &model.Transaction{
				ItemID:   existing.ID,
				Type:     model.TxIn,
				Quantity: diff,
				Project:  &project,
				Note:     &note,
			}
			if diff < 0 {
				adjustment.Type = model.TxOut
				adjustment.Quantity = -diff
			}
			if err := s.txRepo.WithTx(tx).Create(ctx, adjustment); err != nil {
				return storeError(err, "failed to record quantity adjustment")
			}
			fields["current_quantity"] = *req.CurrentQuantity
		}

		if len(fields) == 0 {
			return nil
		}
		return storeError(items.Update(ctx, id, fields), "failed to update item")
	})
	if err != nil {
		return nil, err
	}

	if adjustment != nil {
		s.metrics.IncStockMovement(string(adjustment.Type))
		s.log.InfoFields(ctx, "item quantity adjusted", map[string]any{
			"item_id":  id,
			"type":     adjustment.Type,
			"quantity": adjustment.Quantity,
		})
	}
	return s.GetItem(ctx, id)
}

// DeleteItem removes the item with its ledger. Purchase order lines keep their
// snapshot of the item and lose the link.
func (s *inventoryService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := s.itemRepo.WithTx(tx)
		if _, err := items.FindByIDForUpdate(ctx, id); err != nil {
			return lookupError(err, "item")
		}
		if err := s.txRepo.WithTx(tx).DeleteByItem(ctx, id); err != nil {
			return storeError(err, "failed to delete item transactions")
		}
		if err := s.poRepo.WithTx(tx).UnlinkInventoryItem(ctx, id); err != nil {
			return storeError(err, "failed to unlink purchase order lines")
		}
		return storeError(items.Delete(ctx, id), "failed to delete item")
	})
	if err != nil {
		return err
	}
	s.log.InfoFields(ctx, "item deleted", map[string]any{"item_id": id})
	return nil
}

func (s *inventoryService) GetItem(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "item")
	}
	return item, nil
}

func (s *inventoryService) ListItems(ctx context.Context) ([]model.InventoryItem, error) {
	items, err := s.itemRepo.FindAll(ctx)
	return items, storeError(err, "failed to list items")
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]model.InventoryItem, error) {
	items, err := s.itemRepo.FindLowStock(ctx)
	return items, storeError(err, "failed to list low stock items")
}

func (s *inventoryService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.InventoryItem, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return nil, lookupError(err, "category")
	}
	items, err := s.itemRepo.FindByCategory(ctx, categoryID)
	return items, storeError(err, "failed to list items")
}

// RecordTransaction appends one movement to the ledger and applies it to the
// item under a row lock. Outbound movements larger than the stock are rejected.
func (s *inventoryService) RecordTransaction(ctx context.Context, req *model.CreateTransactionRequest) (*model.Transaction, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	txn := &model.Transaction{
		ItemID:   req.ItemID,
		Type:     req.Type,
		Quantity: req.Quantity,
		Project:  req.Project,
		Note:     req.Note,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := s.itemRepo.WithTx(tx)
		item, err := items.FindByIDForUpdate(ctx, req.ItemID)
		if err != nil {
			return lookupError(err, "item")
		}

		newQuantity := item.CurrentQuantity + txn.Delta()
		if newQuantity < 0 {
			return pkgerrors.Newf(pkgerrors.CodeConflict,
				"insufficient stock for %s: available %d, requested %d", item.Name, item.CurrentQuantity, txn.Quantity).
				WithDetails(map[string]int{"available": item.CurrentQuantity, "requested": txn.Quantity})
		}

		if err := s.txRepo.WithTx(tx).Create(ctx, txn); err != nil {
			return storeError(err, "failed to record transaction")
		}
		if err := items.UpdateQuantity(ctx, item.ID, newQuantity); err != nil {
			return storeError(err, "failed to update item quantity")
		}
		item.CurrentQuantity = newQuantity
		txn.Item = item
		return nil
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			s.metrics.IncStockRejected("insufficient_stock")
		}
		return nil, err
	}

	s.metrics.IncStockMovement(string(txn.Type))
	s.log.InfoFields(ctx, "stock movement recorded", map[string]any{
		"item_id":  txn.ItemID,
		"type":     txn.Type,
		"quantity": txn.Quantity,
		"balance":  txn.Item.CurrentQuantity,
	})
	return txn, nil
}

func (s *inventoryService) ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	if filter.Type != "" && filter.Type != model.TxIn && filter.Type != model.TxOut {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown transaction type %q", filter.Type)
	}
	txns, err := s.txRepo.FindAll(ctx, filter)
	return txns, storeError(err, "failed to list transactions")
}

func (s *inventoryService) ListTransactionsByItem(ctx context.Context, itemID uuid.UUID) ([]model.Transaction, error) {
	if _, err := s.itemRepo.FindByID(ctx, itemID); err != nil {
		return nil, lookupError(err, "item")
	}
	txns, err := s.txRepo.FindByItem(ctx, itemID)
	return txns, storeError(err, "failed to list transactions")
}

// VerifyLedger recomputes the item quantity from its transactions.
func (s *inventoryService) VerifyLedger(ctx context.Context, itemID uuid.UUID) (*model.LedgerCheck, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, lookupError(err, "item")
	}
	sum, err := s.txRepo.SumByItem(ctx, itemID)
	if err != nil {
		return nil, storeError(err, "failed to sum ledger")
	}

	check := &model.LedgerCheck{
		ItemID:          item.ID,
		CurrentQuantity: item.CurrentQuantity,
		LedgerInbound:   int(sum.Inbound),
		LedgerOutbound:  int(sum.Outbound),
		LedgerQuantity:  int(sum.Inbound - sum.Outbound),
	}
	check.Consistent = check.LedgerQuantity == check.CurrentQuantity
	if !check.Consistent {
		s.log.ErrorFields(ctx, "ledger drift detected", errors.New("quantity does not match ledger"), map[string]any{
			"item_id":  item.ID,
			"stored":   check.CurrentQuantity,
			"computed": check.LedgerQuantity,
		})
	}
	return check, nil
}

// itemCodePrefix builds "<initial>-<year>-" from the category name.
func itemCodePrefix(categoryName string, now time.Time) string {
	initial := "X"
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(categoryName)); r != utf8.RuneError {
		initial = string(unicode.ToUpper(r))
	}
	return initial + "-" + now.Format("2006") + "-"
}
