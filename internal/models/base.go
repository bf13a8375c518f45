package models

import "time"

// BaseEntity carries the lifecycle columns shared by every persisted entity.
// Rows are never physically removed; IsDeleted marks a logical delete.
type BaseEntity struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedDate time.Time  `json:"created_date" gorm:"not null"`
	UpdatedDate *time.Time `json:"updated_date,omitempty"`
	IsActive    bool       `json:"is_active" gorm:"not null"`
	IsDeleted   bool       `json:"-" gorm:"not null;index"`
	DeletedDate *time.Time `json:"-"`
}

// Base gives generic code access to the lifecycle fields without reflection.
func (b *BaseEntity) Base() *BaseEntity {
	return b
}

// Entity is implemented by every model embedding BaseEntity.
type Entity interface {
	Base() *BaseEntity
}
