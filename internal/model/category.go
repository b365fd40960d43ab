package model

const DefaultCategoryColor = "#0062FF"

type Category struct {
	BaseModel
	Name        string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Color       string  `gorm:"type:varchar(20);not null;default:'#0062FF'" json:"color"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

// DefaultCategories are seeded into an empty database.
var DefaultCategories = []Category{
	{Name: "Cable", Description: strPtr("Cables and wiring"), Color: "#0062FF"},
	{Name: "Lighting", Description: strPtr("Lighting fixtures and luminaires"), Color: "#24A148"},
	{Name: "Telecom", Description: strPtr("Telecommunication materials"), Color: "#8A3FFC"},
	{Name: "Tools", Description: strPtr("Work tools"), Color: "#FF832B"},
}

func strPtr(s string) *string {
	return &s
}
