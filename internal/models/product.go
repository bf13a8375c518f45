package models

import "github.com/shopspring/decimal"

// Category groups products in the catalog.
type Category struct {
	BaseEntity
	Name        string `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// Product represents a product in the store.
type Product struct {
	BaseEntity
	Name        string          `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock       int             `json:"stock" gorm:"not null" validate:"gte=0"`
	CategoryID  string          `json:"category_id" gorm:"type:varchar(36);index" validate:"required"`
}

// Available reports whether the product can be sold.
func (p *Product) Available() bool {
	return p.IsActive && !p.IsDeleted
}
