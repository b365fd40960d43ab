package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Unit types used on items and purchase order lines. Other values are accepted as free text.
const (
	UnitMeter = "M"
	UnitEach  = "EA"
	UnitSet   = "식"
	UnitGroup = "조"
)

type InventoryItem struct {
	BaseModel
	Code            string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name            string           `gorm:"type:varchar(255);not null" json:"name"`
	CategoryID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"categoryId"`
	Category        *Category        `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	Specification   *string          `gorm:"type:text" json:"specification"`
	UnitType        *string          `gorm:"type:varchar(20)" json:"unitType"`
	CurrentQuantity int              `gorm:"not null;default:0" json:"currentQuantity"` // derived from the ledger
	MinimumQuantity int              `gorm:"not null;default:0" json:"minimumQuantity"`
	Location        *string          `gorm:"type:varchar(100)" json:"location"`
	UnitPrice       *decimal.Decimal `gorm:"type:numeric(12,2)" json:"unitPrice"`
	Notes           *string          `gorm:"type:text" json:"notes"`
}

// IsLowStock reports whether the item is strictly below its minimum quantity.
func (i *InventoryItem) IsLowStock() bool {
	return i.CurrentQuantity < i.MinimumQuantity
}

type CreateItemRequest struct {
	Name            string           `json:"name" validate:"required,max=255"`
	CategoryID      uuid.UUID        `json:"categoryId" validate:"uuid_required"`
	Specification   *string          `json:"specification"`
	UnitType        *string          `json:"unitType" validate:"omitempty,max=20"`
	CurrentQuantity int              `json:"currentQuantity" validate:"gte=0"`
	MinimumQuantity int              `json:"minimumQuantity" validate:"gte=0"`
	Location        *string          `json:"location" validate:"omitempty,max=100"`
	UnitPrice       *decimal.Decimal `json:"unitPrice" validate:"omitempty,gte=0"`
	Notes           *string          `json:"notes"`
}

// UpdateItemRequest is a partial update; nil fields are left untouched.
type UpdateItemRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=255"`
	CategoryID      *uuid.UUID       `json:"categoryId" validate:"omitempty,uuid_required"`
	Specification   *string          `json:"specification"`
	UnitType        *string          `json:"unitType" validate:"omitempty,max=20"`
	CurrentQuantity *int             `json:"currentQuantity" validate:"omitempty,gte=0"`
	MinimumQuantity *int             `json:"minimumQuantity" validate:"omitempty,gte=0"`
	Location        *string          `json:"location" validate:"omitempty,max=100"`
	UnitPrice       *decimal.Decimal `json:"unitPrice" validate:"omitempty,gte=0"`
	Notes           *string          `json:"notes"`
}

// LedgerCheck compares the stored quantity with the sum of the item's transactions.
type LedgerCheck struct {
	ItemID          uuid.UUID `json:"itemId"`
	CurrentQuantity int       `json:"currentQuantity"`
	LedgerInbound   int       `json:"ledgerInbound"`
	LedgerOutbound  int       `json:"ledgerOutbound"`
	LedgerQuantity  int       `json:"ledgerQuantity"`
	Consistent      bool      `json:"consistent"`
}
