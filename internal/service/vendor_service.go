package service

import (
	"context"
	"errors"
	"strings"

	"go-inventory-po/internal/model"
	"go-inventory-po/internal/repository"
	pkgerrors "go-inventory-po/pkg/errors"
	"go-inventory-po/pkg/logger"
	"go-inventory-po/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendorService interface {
	Create(ctx context.Context, req *model.CreateVendorRequest) (*model.Vendor, error)
	List(ctx context.Context) ([]model.Vendor, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateVendorRequest) (*model.Vendor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type vendorService struct {
	db     *gorm.DB
	repo   repository.VendorRepository
	poRepo repository.PurchaseOrderRepository
	log    *logger.Logger
}

func NewVendorService(db *gorm.DB, repo repository.VendorRepository, poRepo repository.PurchaseOrderRepository, log *logger.Logger) VendorService {
	return &vendorService{db: db, repo: repo, poRepo: poRepo, log: log}
}

func (s *vendorService) Create(ctx context.Context, req *model.CreateVendorRequest) (*model.Vendor, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	vendor := &model.Vendor{
		Name:        name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, vendor); err != nil {
		return nil, storeError(err, "failed to create vendor")
	}
	return vendor, nil
}

func (s *vendorService) List(ctx context.Context) ([]model.Vendor, error) {
	vendors, err := s.repo.FindAll(ctx)
	return vendors, storeError(err, "failed to list vendors")
}

func (s *vendorService) Get(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "vendor")
	}
	return vendor, nil
}

func (s *vendorService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateVendorRequest) (*model.Vendor, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if req.ContactName != nil {
		fields["contact_name"] = *req.ContactName
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, storeError(err, "failed to update vendor")
		}
	}
	return s.Get(ctx, id)
}

// Delete refuses to remove a vendor referenced by any purchase order. The check
// and the delete share one transaction.
func (s *vendorService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vendors := s.repo.WithTx(tx)
		if _, err := vendors.FindByID(ctx, id); err != nil {
			return lookupError(err, "vendor")
		}
		count, err := s.poRepo.WithTx(tx).CountByVendor(ctx, id)
		if err != nil {
			return storeError(err, "failed to count vendor purchase orders")
		}
		if count > 0 {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "vendor is used by %d purchase order(s) and cannot be deleted", count).
				WithDetails(map[string]int64{"purchaseOrderCount": count})
		}
		return storeError(vendors.Delete(ctx, id), "failed to delete vendor")
	})
	if err != nil {
		return err
	}
	s.log.InfoFields(ctx, "vendor deleted", map[string]any{"vendor_id": id})
	return nil
}

func (s *vendorService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.repo.FindByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return storeError(err, "failed to check vendor name")
	}
	if existing.ID != self {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "vendor %q already exists", name)
	}
	return nil
}
