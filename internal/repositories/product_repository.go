package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// ProductRepository stores catalog products. Stock is only changed through the
// conditional updates below, never by read-then-write.
type ProductRepository struct {
	*SoftDeleteRepository[models.Product, *models.Product]
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		SoftDeleteRepository: NewSoftDeleteRepository[models.Product](db, "product"),
	}
}

// CategoryRepository stores product categories.
type CategoryRepository = SoftDeleteRepository[models.Category, *models.Category]

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return NewSoftDeleteRepository[models.Category](db, "category")
}

// Update writes the editable columns of a product. Stock is left untouched; use SetStock.
func (r *ProductRepository) Update(ctx context.Context, tx *Tx, product *models.Product) error {
	return r.update(ctx, tx, product, "stock")
}

// SetStock overwrites the stock counter of a live product in one statement.
func (r *ProductRepository) SetStock(ctx context.Context, tx *Tx, productID string, stock int) error {
	if stock < 0 {
		return fmt.Errorf("stock of product %s cannot be negative, got %d", productID, stock)
	}
	db, err := r.writer(ctx, tx)
	if err != nil {
		return err
	}

	res := db.Model(&models.Product{}).
		Where("id = ? AND is_deleted = ?", productID, false).
		Updates(map[string]any{
			"stock":        stock,
			"updated_date": r.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to set stock of product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for stock update: %w", productID, ErrNotFound)
	}
	return nil
}

// DecrementStock atomically takes quantity units from an active product, failing with
// ErrInsufficientStock when the product no longer holds enough. The check and the write
// are one statement, so concurrent units of work cannot both pass it.
func (r *ProductRepository) DecrementStock(ctx context.Context, tx *Tx, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("stock decrement for product %s must be positive, got %d", productID, quantity)
	}
	db, err := r.writer(ctx, tx)
	if err != nil {
		return err
	}

	res := db.Model(&models.Product{}).
		Where("id = ? AND stock >= ? AND is_deleted = ? AND is_active = ?", productID, quantity, false, true).
		Updates(map[string]any{
			"stock":        gorm.Expr("stock - ?", quantity),
			"updated_date": r.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock of product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s cannot supply %d units: %w", productID, quantity, ErrInsufficientStock)
	}
	return nil
}

// IncrementStock returns quantity units to a product. Deleted or inactive products are
// restocked too so that their counters stay accurate.
func (r *ProductRepository) IncrementStock(ctx context.Context, tx *Tx, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("stock increment for product %s must be positive, got %d", productID, quantity)
	}
	db, err := r.writer(ctx, tx)
	if err != nil {
		return err
	}

	res := db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock":        gorm.Expr("stock + ?", quantity),
			"updated_date": r.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to increment stock of product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for restock: %w", productID, ErrNotFound)
	}
	return nil
}

// GetByCategory returns the live products of a category.
func (r *ProductRepository) GetByCategory(ctx context.Context, tx *Tx, categoryID string) ([]models.Product, error) {
	return r.GetAll(ctx, tx, func(db *gorm.DB) *gorm.DB {
		return db.Where("category_id = ?", categoryID).Order("name")
	})
}
