package models

// Address is a shipping or billing address owned by a user.
type Address struct {
	BaseEntity
	UserID     string `json:"user_id" gorm:"type:varchar(64);index;not null"`
	Recipient  string `json:"recipient" gorm:"type:varchar(150);not null" validate:"required,max=150"`
	Line1      string `json:"line1" gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Line2      string `json:"line2" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	City       string `json:"city" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	PostalCode string `json:"postal_code" gorm:"type:varchar(20);not null" validate:"required,max=20"`
	Country    string `json:"country" gorm:"type:varchar(2);not null" validate:"required,len=2"`
}
