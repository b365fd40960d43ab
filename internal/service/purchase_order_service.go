package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-inventory-po/internal/model"
	"go-inventory-po/internal/repository"
	pkgerrors "go-inventory-po/pkg/errors"
	"go-inventory-po/pkg/logger"
	"go-inventory-po/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseOrderService keeps every order's total equal to the sum of its line
// amounts. Line mutations lock the order row and recompute in the same transaction.
type PurchaseOrderService interface {
	Create(ctx context.Context, req *model.CreatePurchaseOrderRequest) (*model.PurchaseOrderDetail, error)
	Get(ctx context.Context, id uuid.UUID) (*model.PurchaseOrderDetail, error)
	List(ctx context.Context, status model.PurchaseOrderStatus) ([]model.PurchaseOrder, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdatePurchaseOrderRequest) (*model.PurchaseOrderDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddLine(ctx context.Context, orderID uuid.UUID, req *model.PurchaseOrderItemRequest) (*model.PurchaseOrderItem, error)
	UpdateLine(ctx context.Context, orderID, lineID uuid.UUID, req *model.UpdatePurchaseOrderItemRequest) (*model.PurchaseOrderItem, error)
	DeleteLine(ctx context.Context, orderID, lineID uuid.UUID) error
}

type purchaseOrderService struct {
	db         *gorm.DB
	repo       repository.PurchaseOrderRepository
	vendorRepo repository.VendorRepository
	itemRepo   repository.ItemRepository
	log        *logger.Logger
	now        func() time.Time
}

func NewPurchaseOrderService(
	db *gorm.DB,
	repo repository.PurchaseOrderRepository,
	vendorRepo repository.VendorRepository,
	itemRepo repository.ItemRepository,
	log *logger.Logger,
) PurchaseOrderService {
	return &purchaseOrderService{
		db:         db,
		repo:       repo,
		vendorRepo: vendorRepo,
		itemRepo:   itemRepo,
		log:        log,
		now:        time.Now,
	}
}

func (s *purchaseOrderService) Create(ctx context.Context, req *model.CreatePurchaseOrderRequest) (*model.PurchaseOrderDetail, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	header := req.Order

	status := header.Status
	if status == "" {
		status = model.POStatusDraft
	}
	if status != model.POStatusDraft && status != model.POStatusPending {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "a new purchase order cannot start as %s", status).
			WithDetails(map[string]string{"to": string(status)})
	}

	now := s.now()
	order := &model.PurchaseOrder{
		OrderDate:            now,
		Status:               status,
		ProjectName:          strings.TrimSpace(header.ProjectName),
		Manager:              strings.TrimSpace(header.Manager),
		ContactNumber:        header.ContactNumber,
		VendorID:             header.VendorID,
		VendorName:           strings.TrimSpace(header.VendorName),
		VendorContact:        header.VendorContact,
		VendorEmail:          header.VendorEmail,
		ExpectedDeliveryDate: header.ExpectedDeliveryDate,
		Notes:                header.Notes,
		TotalAmount:          decimal.Zero,
	}
	if header.OrderDate != nil {
		order.OrderDate = *header.OrderDate
	}

	var detail *model.PurchaseOrderDetail
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.VendorID != nil {
			vendor, err := s.vendorRepo.WithTx(tx).FindByID(ctx, *order.VendorID)
			if err != nil {
				return lookupError(err, "vendor")
			}
			fillVendor(order, vendor)
		} else {
			vendor, err := s.vendorByName(ctx, tx, order.VendorName)
			if err != nil {
				return err
			}
			if vendor != nil {
				order.VendorID = &vendor.ID
				fillVendor(order, vendor)
			}
		}

		orders := s.repo.WithTx(tx)
		prefix := "PO-" + now.Format("200601") + "-"
		latest, err := orders.LatestOrderNumberWithPrefix(ctx, prefix)
		if err != nil {
			return storeError(err, "failed to generate order number")
		}
		order.OrderNumber = nextCode(prefix, latest)

		if err := orders.Create(ctx, order); err != nil {
			return storeError(err, "failed to create purchase order")
		}
		for i := range req.Items {
			line, err := s.newLine(ctx, tx, order.ID, &req.Items[i])
			if err != nil {
				return err
			}
			if err := orders.CreateItem(ctx, line); err != nil {
				return storeError(err, "failed to create purchase order line")
			}
		}
		if err := s.recomputeTotal(ctx, tx, order.ID); err != nil {
			return err
		}

		detail, err = s.load(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoFields(ctx, "purchase order created", map[string]any{
		"order_id":     detail.Order.ID,
		"order_number": detail.Order.OrderNumber,
		"lines":        len(detail.Items),
		"total":        detail.Order.TotalAmount.String(),
	})
	return detail, nil
}

func (s *purchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*model.PurchaseOrderDetail, error) {
	return s.load(ctx, s.db, id)
}

func (s *purchaseOrderService) List(ctx context.Context, status model.PurchaseOrderStatus) ([]model.PurchaseOrder, error) {
	if status != "" && !status.Valid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown purchase order status %q", status)
	}
	orders, err := s.repo.FindAll(ctx, status)
	return orders, storeError(err, "failed to list purchase orders")
}

// Update applies header changes, moves the status along the allowed transitions
// and, when lines are given, syncs them with the stored ones.
func (s *purchaseOrderService) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePurchaseOrderRequest) (*model.PurchaseOrderDetail, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	header := req.Order

	var (
		detail     *model.PurchaseOrderDetail
		fromStatus model.PurchaseOrderStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.repo.WithTx(tx)
		order, err := orders.FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "purchase order")
		}
		fromStatus = order.Status

		fields := map[string]interface{}{}
		if header.Status != nil && *header.Status != order.Status {
			if !model.CanTransition(order.Status, *header.Status) {
				return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move purchase order from %s to %s", order.Status, *header.Status).
					WithDetails(map[string]string{"from": string(order.Status), "to": string(*header.Status)})
			}
			fields["status"] = *header.Status
		}
		if err := s.relinkVendor(ctx, tx, order, header, fields); err != nil {
			return err
		}
		if header.OrderDate != nil {
			fields["order_date"] = *header.OrderDate
		}
		if header.ProjectName != nil {
			fields["project_name"] = strings.TrimSpace(*header.ProjectName)
		}
		if header.Manager != nil {
			fields["manager"] = strings.TrimSpace(*header.Manager)
		}
		if header.ContactNumber != nil {
			fields["contact_number"] = *header.ContactNumber
		}
		if header.VendorName != nil {
			fields["vendor_name"] = strings.TrimSpace(*header.VendorName)
		}
		if header.VendorContact != nil {
			fields["vendor_contact"] = *header.VendorContact
		}
		if header.VendorEmail != nil {
			fields["vendor_email"] = *header.VendorEmail
		}
		if header.ExpectedDeliveryDate != nil {
			fields["expected_delivery_date"] = *header.ExpectedDeliveryDate
		}
		if header.Notes != nil {
			fields["notes"] = *header.Notes
		}

		if req.Items != nil {
			if order.Status.LinesFrozen() {
				return frozenLinesError(order.Status)
			}
			if header.Status != nil && header.Status.LinesFrozen() {
				return frozenLinesError(*header.Status)
			}
			if err := s.syncLines(ctx, tx, order.ID, *req.Items); err != nil {
				return err
			}
			if err := s.recomputeTotal(ctx, tx, order.ID); err != nil {
				return err
			}
		}

		if len(fields) > 0 {
			if err := orders.Update(ctx, order.ID, fields); err != nil {
				return storeError(err, "failed to update purchase order")
			}
		}

		detail, err = s.load(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if detail.Order.Status != fromStatus {
		s.log.InfoFields(ctx, "purchase order status changed", map[string]any{
			"order_id": id,
			"from":     fromStatus,
			"to":       detail.Order.Status,
		})
	}
	return detail, nil
}

func (s *purchaseOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.repo.WithTx(tx)
		if _, err := orders.FindByIDForUpdate(ctx, id); err != nil {
			return lookupError(err, "purchase order")
		}
		return storeError(orders.Delete(ctx, id), "failed to delete purchase order")
	})
	if err != nil {
		return err
	}
	s.log.InfoFields(ctx, "purchase order deleted", map[string]any{"order_id": id})
	return nil
}

func (s *purchaseOrderService) AddLine(ctx context.Context, orderID uuid.UUID, req *model.PurchaseOrderItemRequest) (*model.PurchaseOrderItem, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	var line *model.PurchaseOrderItem
	err := s.withUnfrozenOrder(ctx, orderID, func(tx *gorm.DB) error {
		var err error
		line, err = s.newLine(ctx, tx, orderID, req)
		if err != nil {
			return err
		}
		return storeError(s.repo.WithTx(tx).CreateItem(ctx, line), "failed to create purchase order line")
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *purchaseOrderService) UpdateLine(ctx context.Context, orderID, lineID uuid.UUID, req *model.UpdatePurchaseOrderItemRequest) (*model.PurchaseOrderItem, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	var line *model.PurchaseOrderItem
	err := s.withUnfrozenOrder(ctx, orderID, func(tx *gorm.DB) error {
		orders := s.repo.WithTx(tx)
		var err error
		line, err = orders.FindItem(ctx, orderID, lineID)
		if err != nil {
			return lookupError(err, "purchase order line")
		}

		if req.ItemID != nil {
			item, err := s.itemRepo.WithTx(tx).FindByID(ctx, *req.ItemID)
			if err != nil {
				return lookupError(err, "inventory item")
			}
			line.ItemID = &item.ID
			if req.UnitPrice == nil && line.UnitPrice == nil {
				line.UnitPrice = item.UnitPrice
			}
		}
		if req.ItemName != nil {
			line.ItemName = strings.TrimSpace(*req.ItemName)
		}
		if req.Specification != nil {
			line.Specification = req.Specification
		}
		if req.UnitType != nil {
			line.UnitType = req.UnitType
		}
		if req.Quantity != nil {
			line.Quantity = *req.Quantity
		}
		if req.UnitPrice != nil {
			line.UnitPrice = req.UnitPrice
		}
		if req.Notes != nil {
			line.Notes = req.Notes
		}
		line.ComputeAmount()
		return storeError(orders.SaveItem(ctx, line), "failed to update purchase order line")
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *purchaseOrderService) DeleteLine(ctx context.Context, orderID, lineID uuid.UUID) error {
	return s.withUnfrozenOrder(ctx, orderID, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).DeleteItem(ctx, orderID, lineID); err != nil {
			return lookupError(err, "purchase order line")
		}
		return nil
	})
}

// withUnfrozenOrder runs fn with the order row locked, then recomputes the total.
func (s *purchaseOrderService) withUnfrozenOrder(ctx context.Context, orderID uuid.UUID, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.WithTx(tx).FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return lookupError(err, "purchase order")
		}
		if order.Status.LinesFrozen() {
			return frozenLinesError(order.Status)
		}
		if err := fn(tx); err != nil {
			return err
		}
		return s.recomputeTotal(ctx, tx, orderID)
	})
}

func (s *purchaseOrderService) syncLines(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reqs []model.PurchaseOrderItemRequest) error {
	orders := s.repo.WithTx(tx)
	existing, err := orders.FindItems(ctx, orderID)
	if err != nil {
		return storeError(err, "failed to load purchase order lines")
	}
	stale := make(map[uuid.UUID]model.PurchaseOrderItem, len(existing))
	for _, line := range existing {
		stale[line.ID] = line
	}

	for i := range reqs {
		req := &reqs[i]
		line, err := s.newLine(ctx, tx, orderID, req)
		if err != nil {
			return err
		}
		if req.ID == nil {
			if err := orders.CreateItem(ctx, line); err != nil {
				return storeError(err, "failed to create purchase order line")
			}
			continue
		}

		current, ok := stale[*req.ID]
		if !ok {
			return pkgerrors.Newf(pkgerrors.CodeNotFound, "purchase order line %s not found", *req.ID)
		}
		delete(stale, *req.ID)
		line.ID = current.ID
		line.CreatedAt = current.CreatedAt
		if err := orders.SaveItem(ctx, line); err != nil {
			return storeError(err, "failed to update purchase order line")
		}
	}

	for id := range stale {
		if err := orders.DeleteItem(ctx, orderID, id); err != nil {
			return storeError(err, "failed to delete purchase order line")
		}
	}
	return nil
}

// newLine builds a line from the request. A line linked to an inventory item
// takes the item's name, specification, unit and price where the request omits them.
func (s *purchaseOrderService) newLine(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, req *model.PurchaseOrderItemRequest) (*model.PurchaseOrderItem, error) {
	line := &model.PurchaseOrderItem{
		PurchaseOrderID: orderID,
		ItemID:          req.ItemID,
		ItemName:        strings.TrimSpace(req.ItemName),
		Specification:   req.Specification,
		UnitType:        req.UnitType,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		Notes:           req.Notes,
	}
	if req.ItemID != nil {
		item, err := s.itemRepo.WithTx(tx).FindByID(ctx, *req.ItemID)
		if err != nil {
			return nil, lookupError(err, "inventory item")
		}
		if line.ItemName == "" {
			line.ItemName = item.Name
		}
		if line.Specification == nil {
			line.Specification = item.Specification
		}
		if line.UnitType == nil {
			line.UnitType = item.UnitType
		}
		if line.UnitPrice == nil {
			line.UnitPrice = item.UnitPrice
		}
	}
	line.ComputeAmount()
	return line, nil
}

func (s *purchaseOrderService) recomputeTotal(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	orders := s.repo.WithTx(tx)
	total, err := orders.SumItemAmounts(ctx, orderID)
	if err != nil {
		return storeError(err, "failed to sum purchase order lines")
	}
	return storeError(
		orders.Update(ctx, orderID, map[string]interface{}{"total_amount": total}),
		"failed to update purchase order total",
	)
}

func (s *purchaseOrderService) load(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.PurchaseOrderDetail, error) {
	order, err := s.repo.WithTx(db).FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "purchase order")
	}
	items := order.Items
	if items == nil {
		items = []model.PurchaseOrderItem{}
	}
	order.Items = nil
	return &model.PurchaseOrderDetail{Order: *order, Items: items}, nil
}

// relinkVendor links the order to the vendor given by vendorId, else by a
// vendorName that matches a registered vendor. A new link replaces the whole
// vendor snapshot, nil fields included. Explicit header fields applied after
// it still win.
func (s *purchaseOrderService) relinkVendor(ctx context.Context, tx *gorm.DB, order *model.PurchaseOrder, header model.UpdatePurchaseOrderHeader, fields map[string]interface{}) error {
	var vendor *model.Vendor
	switch {
	case header.VendorID != nil:
		if order.VendorID != nil && *order.VendorID == *header.VendorID {
			return nil
		}
		found, err := s.vendorRepo.WithTx(tx).FindByID(ctx, *header.VendorID)
		if err != nil {
			return lookupError(err, "vendor")
		}
		vendor = found
	case header.VendorName != nil:
		found, err := s.vendorByName(ctx, tx, *header.VendorName)
		if err != nil {
			return err
		}
		if found == nil {
			if order.VendorID != nil {
				fields["vendor_id"] = nil
				fields["vendor_contact"] = nil
				fields["vendor_email"] = nil
			}
			return nil
		}
		if order.VendorID != nil && *order.VendorID == found.ID {
			return nil
		}
		vendor = found
	default:
		return nil
	}

	fields["vendor_id"] = vendor.ID
	fields["vendor_name"] = vendor.Name
	fields["vendor_contact"] = vendor.ContactName
	fields["vendor_email"] = vendor.Email
	return nil
}

// vendorByName returns the registered vendor with that name, or nil.
func (s *purchaseOrderService) vendorByName(ctx context.Context, tx *gorm.DB, name string) (*model.Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	vendor, err := s.vendorRepo.WithTx(tx).FindByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(err, "failed to look up vendor")
	}
	return vendor, nil
}

func fillVendor(order *model.PurchaseOrder, vendor *model.Vendor) {
	if order.VendorName == "" {
		order.VendorName = vendor.Name
	}
	if order.VendorContact == nil {
		order.VendorContact = vendor.ContactName
	}
	if order.VendorEmail == nil {
		order.VendorEmail = vendor.Email
	}
}

func frozenLinesError(status model.PurchaseOrderStatus) error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "lines of a %s purchase order cannot change", status).
		WithDetails(map[string]string{"status": string(status)})
}
