package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// AddressRepository stores user addresses.
type AddressRepository struct {
	*SoftDeleteRepository[models.Address, *models.Address]
}

// NewAddressRepository creates a new AddressRepository.
func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{
		SoftDeleteRepository: NewSoftDeleteRepository[models.Address](db, "address"),
	}
}

// GetForUser returns the live address only if it belongs to userID. An address owned by
// someone else is reported as ErrNotFound.
func (r *AddressRepository) GetForUser(ctx context.Context, tx *Tx, userID, id string) (*models.Address, error) {
	var address models.Address
	err := r.session(ctx, tx).
		First(&address, "id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("address with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get address by ID %s: %w", id, err)
	}
	return &address, nil
}

// ListForUser returns the user's live addresses.
func (r *AddressRepository) ListForUser(ctx context.Context, tx *Tx, userID string) ([]models.Address, error) {
	return r.GetAll(ctx, tx, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID).Order("created_date")
	})
}
