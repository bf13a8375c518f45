package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// CartRepository stores cart lines.
type CartRepository struct {
	*SoftDeleteRepository[models.CartItem, *models.CartItem]
}

// NewCartRepository creates a new CartRepository.
func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{
		SoftDeleteRepository: NewSoftDeleteRepository[models.CartItem](db, "cart item"),
	}
}

// ListForUser returns the user's live cart lines, oldest first.
func (r *CartRepository) ListForUser(ctx context.Context, tx *Tx, userID string) ([]models.CartItem, error) {
	return r.GetAll(ctx, tx, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID).Order("created_date, id")
	})
}

// FindLine returns the user's live line for a product, or ErrNotFound.
func (r *CartRepository) FindLine(ctx context.Context, tx *Tx, userID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.session(ctx, tx).
		First(&item, "user_id = ? AND product_id = ? AND is_deleted = ?", userID, productID, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart line for product %s: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart line for product %s: %w", productID, err)
	}
	return &item, nil
}

// AddOrIncrement adds quantity of a product to the user's cart, growing the existing line
// instead of creating a second one.
func (r *CartRepository) AddOrIncrement(ctx context.Context, tx *Tx, userID, productID string, quantity int) (*models.CartItem, error) {
	line, err := r.FindLine(ctx, tx, userID, productID)
	switch {
	case err == nil:
		line.Quantity += quantity
		if err := r.Update(ctx, tx, line); err != nil {
			return nil, err
		}
		return line, nil
	case errors.Is(err, ErrNotFound):
		line = &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
		if err := r.Add(ctx, tx, line); err != nil {
			return nil, err
		}
		return line, nil
	default:
		return nil, err
	}
}

// ConsumeLine logically deletes a cart line only if it still holds quantity units. A line
// that was removed or resized since it was read yields ErrStaleWrite.
func (r *CartRepository) ConsumeLine(ctx context.Context, tx *Tx, id string, quantity int) error {
	deleted, err := r.softDeleteWhere(ctx, tx, "id = ? AND quantity = ?", id, quantity)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("cart item %s no longer holds %d units: %w", id, quantity, ErrStaleWrite)
	}
	return nil
}

// ClearForUser logically deletes every live line of the user's cart.
func (r *CartRepository) ClearForUser(ctx context.Context, tx *Tx, userID string) (int64, error) {
	return r.softDeleteWhere(ctx, tx, "user_id = ?", userID)
}
