package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxIn  TransactionType = "in"
	TxOut TransactionType = "out"
)

// Labels used on transactions the ledger synthesizes itself.
const (
	ProjectInitialRegistration = "initial registration"
	NoteInitialRegistration    = "first registration of the item"
	ProjectAdjustment          = "administrator adjustment"
	NoteAdjustment             = "quantity corrected by an administrator"
)

// Transaction is an immutable ledger row; it has no update or delete API.
type Transaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"itemId"`
	Item      *InventoryItem  `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"item,omitempty"`
	Type      TransactionType `gorm:"type:varchar(10);not null;index" json:"type"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Project   *string         `gorm:"type:varchar(255)" json:"project"`
	Note      *string         `gorm:"type:text" json:"note"`
	CreatedAt time.Time       `gorm:"index" json:"createdAt"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// Delta is the signed effect of the transaction on the item quantity.
func (t *Transaction) Delta() int {
	if t.Type == TxOut {
		return -t.Quantity
	}
	return t.Quantity
}

type CreateTransactionRequest struct {
	ItemID   uuid.UUID       `json:"itemId" validate:"uuid_required"`
	Type     TransactionType `json:"type" validate:"required,oneof=in out"`
	Quantity int             `json:"quantity" validate:"required,gt=0"`
	Project  *string         `json:"project" validate:"omitempty,max=255"`
	Note     *string         `json:"note"`
}

// TransactionFilter narrows transaction listings; zero values mean "any".
type TransactionFilter struct {
	ItemID *uuid.UUID
	Type   TransactionType
	From   *time.Time
	To     *time.Time
}
