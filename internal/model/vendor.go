package model

type Vendor struct {
	BaseModel
	Name        string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	ContactName *string `gorm:"type:varchar(100)" json:"contactName"`
	Email       *string `gorm:"type:varchar(255)" json:"email"`
	Phone       *string `gorm:"type:varchar(50)" json:"phone"`
	Address     *string `gorm:"type:text" json:"address"`
	Notes       *string `gorm:"type:text" json:"notes"`
}

type CreateVendorRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	ContactName *string `json:"contactName" validate:"omitempty,max=100"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
}

type UpdateVendorRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	ContactName *string `json:"contactName" validate:"omitempty,max=100"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
}
