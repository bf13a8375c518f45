package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// OrderRepository stores orders and their detail lines. Details are always read and
// written explicitly; gorm associations are never auto-saved.
type OrderRepository struct {
	*SoftDeleteRepository[models.Order, *models.Order]
	details *SoftDeleteRepository[models.OrderDetail, *models.OrderDetail]
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{
		SoftDeleteRepository: NewSoftDeleteRepository[models.Order](db, "order"),
		details:              NewSoftDeleteRepository[models.OrderDetail](db, "order detail"),
	}
}

// NumberExists reports whether an order number is taken, deleted orders included.
func (r *OrderRepository) NumberExists(ctx context.Context, tx *Tx, number string) (bool, error) {
	var count int64
	err := r.session(ctx, tx).Model(&models.Order{}).Where("order_number = ?", number).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check order number %s: %w", number, err)
	}
	return count > 0, nil
}

// AddDetail stages one detail line of an order.
func (r *OrderRepository) AddDetail(ctx context.Context, tx *Tx, detail *models.OrderDetail) error {
	return r.details.Add(ctx, tx, detail)
}

// Details returns the live detail lines of an order.
func (r *OrderRepository) Details(ctx context.Context, tx *Tx, orderID string) ([]models.OrderDetail, error) {
	return r.details.GetAll(ctx, tx, func(db *gorm.DB) *gorm.DB {
		return db.Where("order_id = ?", orderID).Order("created_date, id")
	})
}

// GetWithDetails returns a live order with its detail lines loaded.
func (r *OrderRepository) GetWithDetails(ctx context.Context, tx *Tx, id string) (*models.Order, error) {
	order, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if order.Details, err = r.Details(ctx, tx, id); err != nil {
		return nil, err
	}
	return order, nil
}

// ListForUser returns the user's live orders, newest first, with details loaded.
func (r *OrderRepository) ListForUser(ctx context.Context, tx *Tx, userID string) ([]models.Order, error) {
	orders, err := r.GetAll(ctx, tx, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID).Order("created_date DESC, id")
	})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	details, err := r.details.GetAll(ctx, tx, func(db *gorm.DB) *gorm.DB {
		return db.Where("order_id IN ?", ids).Order("created_date, id")
	})
	if err != nil {
		return nil, err
	}

	byOrder := make(map[string][]models.OrderDetail, len(orders))
	for _, d := range details {
		byOrder[d.OrderID] = append(byOrder[d.OrderID], d)
	}
	for i := range orders {
		orders[i].Details = byOrder[orders[i].ID]
	}
	return orders, nil
}

// TransitionStatus moves a live order from one status to another. It fails with
// ErrStaleWrite when the order is no longer in status from.
func (r *OrderRepository) TransitionStatus(ctx context.Context, tx *Tx, id string, from, to models.OrderStatus) error {
	return r.guardedUpdate(ctx, tx, id, "status", string(from), string(to))
}

// TransitionPaymentStatus moves a live order from one payment status to another. It fails
// with ErrStaleWrite when the order is no longer in payment status from.
func (r *OrderRepository) TransitionPaymentStatus(ctx context.Context, tx *Tx, id string, from, to models.PaymentStatus) error {
	return r.guardedUpdate(ctx, tx, id, "payment_status", string(from), string(to))
}

func (r *OrderRepository) guardedUpdate(ctx context.Context, tx *Tx, id, column, from, to string) error {
	db, err := r.writer(ctx, tx)
	if err != nil {
		return err
	}

	res := db.Model(&models.Order{}).
		Where("id = ? AND is_deleted = ? AND "+column+" = ?", id, false, from).
		Updates(map[string]any{
			column:         to,
			"updated_date": r.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update %s of order %s: %w", column, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s is no longer %s %s: %w", id, column, from, ErrStaleWrite)
	}
	return nil
}

// SoftDeleteWithDetails logically deletes an order together with all its detail lines.
func (r *OrderRepository) SoftDeleteWithDetails(ctx context.Context, tx *Tx, id string) error {
	if err := r.SoftDelete(ctx, tx, id); err != nil {
		return err
	}
	if _, err := r.details.softDeleteWhere(ctx, tx, "order_id = ?", id); err != nil {
		return err
	}
	return nil
}
