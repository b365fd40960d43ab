package repository

import (
	"context"

	"go-inventory-po/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendorRepository interface {
	WithTx(tx *gorm.DB) VendorRepository
	Create(ctx context.Context, vendor *model.Vendor) error
	FindAll(ctx context.Context) ([]model.Vendor, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	FindByName(ctx context.Context, name string) (*model.Vendor, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type vendorRepo struct {
	db *gorm.DB
}

func NewVendorRepo(db *gorm.DB) VendorRepository {
	return &vendorRepo{db}
}

func (r *vendorRepo) WithTx(tx *gorm.DB) VendorRepository {
	if tx == nil {
		return r
	}
	return &vendorRepo{tx}
}

func (r *vendorRepo) Create(ctx context.Context, vendor *model.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *vendorRepo) FindAll(ctx context.Context) ([]model.Vendor, error) {
	var vendors []model.Vendor
	err := r.db.WithContext(ctx).Order("name ASC").Find(&vendors).Error
	return vendors, err
}

func (r *vendorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepo) FindByName(ctx context.Context, name string) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Vendor{}).Where("id = ?", id).Updates(fields).Error
}

func (r *vendorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Vendor{}, "id = ?", id).Error
}
