package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	POStatusDraft    PurchaseOrderStatus = "draft"
	POStatusPending  PurchaseOrderStatus = "pending"
	POStatusApproved PurchaseOrderStatus = "approved"
	POStatusOrdered  PurchaseOrderStatus = "ordered"
	POStatusReceived PurchaseOrderStatus = "received"
	POStatusCanceled PurchaseOrderStatus = "canceled"
)

// poTransitions lists the allowed predecessor states for every target state.
var poTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	POStatusPending:  {POStatusDraft},
	POStatusApproved: {POStatusPending},
	POStatusOrdered:  {POStatusApproved},
	POStatusReceived: {POStatusOrdered},
	POStatusCanceled: {POStatusDraft, POStatusPending, POStatusApproved, POStatusOrdered, POStatusReceived},
}

func (s PurchaseOrderStatus) Valid() bool {
	switch s {
	case POStatusDraft, POStatusPending, POStatusApproved, POStatusOrdered, POStatusReceived, POStatusCanceled:
		return true
	}
	return false
}

// LinesFrozen reports whether lines of an order in this state may no longer change.
func (s PurchaseOrderStatus) LinesFrozen() bool {
	return s == POStatusReceived || s == POStatusCanceled
}

// CanTransition reports whether an order may move from one status to another.
// Setting the current status again is always allowed and changes nothing.
func CanTransition(from, to PurchaseOrderStatus) bool {
	if from == to {
		return to.Valid()
	}
	for _, prev := range poTransitions[to] {
		if prev == from {
			return true
		}
	}
	return false
}

type PurchaseOrder struct {
	BaseModel
	OrderNumber          string              `gorm:"type:varchar(20);uniqueIndex;not null" json:"orderNumber"`
	OrderDate            time.Time           `gorm:"not null" json:"orderDate"`
	Status               PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	ProjectName          string              `gorm:"type:varchar(255);not null" json:"projectName"`
	Manager              string              `gorm:"type:varchar(100);not null" json:"manager"`
	ContactNumber        *string             `gorm:"type:varchar(50)" json:"contactNumber"`
	VendorID             *uuid.UUID          `gorm:"type:uuid;index" json:"vendorId"`
	Vendor               *Vendor             `gorm:"foreignKey:VendorID;constraint:OnDelete:RESTRICT" json:"-"`
	VendorName           string              `gorm:"type:varchar(255);not null" json:"vendorName"`
	VendorContact        *string             `gorm:"type:varchar(100)" json:"vendorContact"`
	VendorEmail          *string             `gorm:"type:varchar(255)" json:"vendorEmail"`
	ExpectedDeliveryDate *time.Time          `json:"expectedDeliveryDate"`
	Notes                *string             `gorm:"type:text" json:"notes"`
	TotalAmount          decimal.Decimal     `gorm:"type:numeric(14,2);not null;default:0" json:"totalAmount"` // sum of line amounts
	PDFPath              *string             `gorm:"column:pdf_path;type:varchar(500)" json:"pdfPath"`
	EmailSent            bool                `gorm:"not null;default:false" json:"emailSent"`
	EmailSentAt          *time.Time          `json:"emailSentAt"`
	Items                []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"-"`
}

type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID uuid.UUID        `gorm:"type:uuid;not null;index" json:"purchaseOrderId"`
	ItemID          *uuid.UUID       `gorm:"type:uuid;index" json:"itemId"`
	Item            *InventoryItem   `gorm:"foreignKey:ItemID;constraint:OnDelete:SET NULL" json:"-"`
	ItemName        string           `gorm:"type:varchar(255);not null" json:"itemName"`
	Specification   *string          `gorm:"type:text" json:"specification"`
	UnitType        *string          `gorm:"type:varchar(20)" json:"unitType"`
	Quantity        int              `gorm:"not null" json:"quantity"`
	UnitPrice       *decimal.Decimal `gorm:"type:numeric(12,2)" json:"unitPrice"`
	Amount          decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0" json:"amount"` // quantity x unitPrice
	Notes           *string          `gorm:"type:text" json:"notes"`
}

// ComputeAmount recomputes Amount from quantity and unit price. A line without a
// unit price is worth zero.
func (l *PurchaseOrderItem) ComputeAmount() {
	if l.UnitPrice == nil {
		l.Amount = decimal.Zero
		return
	}
	l.Amount = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PurchaseOrderDetail is the order with its lines, as served by the API.
type PurchaseOrderDetail struct {
	Order PurchaseOrder       `json:"order"`
	Items []PurchaseOrderItem `json:"items"`
}

type PurchaseOrderItemRequest struct {
	ID            *uuid.UUID       `json:"id"`
	ItemID        *uuid.UUID       `json:"itemId"`
	ItemName      string           `json:"itemName" validate:"required_without=ItemID,max=255"`
	Specification *string          `json:"specification"`
	UnitType      *string          `json:"unitType" validate:"omitempty,max=20"`
	Quantity      int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice     *decimal.Decimal `json:"unitPrice" validate:"omitempty,gte=0"`
	Notes         *string          `json:"notes"`
}

type UpdatePurchaseOrderItemRequest struct {
	ItemID        *uuid.UUID       `json:"itemId"`
	ItemName      *string          `json:"itemName" validate:"omitempty,min=1,max=255"`
	Specification *string          `json:"specification"`
	UnitType      *string          `json:"unitType" validate:"omitempty,max=20"`
	Quantity      *int             `json:"quantity" validate:"omitempty,gt=0"`
	UnitPrice     *decimal.Decimal `json:"unitPrice" validate:"omitempty,gte=0"`
	Notes         *string          `json:"notes"`
}

type PurchaseOrderHeader struct {
	OrderDate            *time.Time          `json:"orderDate"`
	Status               PurchaseOrderStatus `json:"status" validate:"omitempty,oneof=draft pending approved ordered received canceled"`
	ProjectName          string              `json:"projectName" validate:"required,max=255"`
	Manager              string              `json:"manager" validate:"required,max=100"`
	ContactNumber        *string             `json:"contactNumber" validate:"omitempty,max=50"`
	VendorID             *uuid.UUID          `json:"vendorId"`
	VendorName           string              `json:"vendorName" validate:"required_without=VendorID,max=255"`
	VendorContact        *string             `json:"vendorContact" validate:"omitempty,max=100"`
	VendorEmail          *string             `json:"vendorEmail" validate:"omitempty,email"`
	ExpectedDeliveryDate *time.Time          `json:"expectedDeliveryDate"`
	Notes                *string             `json:"notes"`
}

type CreatePurchaseOrderRequest struct {
	Order PurchaseOrderHeader        `json:"order"`
	Items []PurchaseOrderItemRequest `json:"items" validate:"dive"`
}

type UpdatePurchaseOrderHeader struct {
	OrderDate            *time.Time           `json:"orderDate"`
	Status               *PurchaseOrderStatus `json:"status" validate:"omitempty,oneof=draft pending approved ordered received canceled"`
	ProjectName          *string              `json:"projectName" validate:"omitempty,min=1,max=255"`
	Manager              *string              `json:"manager" validate:"omitempty,min=1,max=100"`
	ContactNumber        *string              `json:"contactNumber" validate:"omitempty,max=50"`
	VendorID             *uuid.UUID           `json:"vendorId"`
	VendorName           *string              `json:"vendorName" validate:"omitempty,min=1,max=255"`
	VendorContact        *string              `json:"vendorContact" validate:"omitempty,max=100"`
	VendorEmail          *string              `json:"vendorEmail" validate:"omitempty,email"`
	ExpectedDeliveryDate *time.Time           `json:"expectedDeliveryDate"`
	Notes                *string              `json:"notes"`
}

// UpdatePurchaseOrderRequest updates the header and, when Items is present,
// syncs the lines: entries with an id are updated, entries without one are
// created and existing lines missing from the list are deleted.
type UpdatePurchaseOrderRequest struct {
	Order UpdatePurchaseOrderHeader   `json:"order"`
	Items *[]PurchaseOrderItemRequest `json:"items" validate:"omitempty,dive"`
}
