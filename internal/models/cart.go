package models

// CartItem is one line of a user's cart. A user holds at most one active line per product.
type CartItem struct {
	BaseEntity
	UserID    string `json:"user_id" gorm:"type:varchar(64);index;not null"`
	ProductID string `json:"product_id" gorm:"type:varchar(36);index;not null"`
	Quantity  int    `json:"quantity" gorm:"not null" validate:"gt=0"`
}
