package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/result"

	"go.uber.org/zap"
)

// UpdateOrderStatus moves an order to newStatus when the transition table allows it.
// Cancelling returns every detail's quantity to stock in the same unit of work.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, newStatus models.OrderStatus) (result.Result, error) {
	if !newStatus.Valid() {
		return result.Fail(result.KindValidationFailure, result.CodeInvalidInput,
			fmt.Sprintf("unknown order status %q", newStatus)), nil
	}

	var from models.OrderStatus
	restocked := 0
	err := s.uow.Do(ctx, func(tx *repositories.Tx) error {
		order, err := s.loadOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(newStatus) {
			return abort(result.KindBusinessRuleViolation, result.CodeInvalidStatusTransition,
				"order %s cannot move from %s to %s", orderID, order.Status, newStatus)
		}
		from = order.Status

		err = s.orders.TransitionStatus(ctx, tx, orderID, from, newStatus)
		if errors.Is(err, repositories.ErrStaleWrite) {
			return abort(result.KindConcurrencyConflict, result.CodeStaleWrite,
				"order %s was modified concurrently", orderID)
		}
		if err != nil {
			return err
		}

		if newStatus == models.OrderStatusCancelled {
			details, err := s.orders.Details(ctx, tx, orderID)
			if err != nil {
				return err
			}
			for _, d := range details {
				if err := s.products.IncrementStock(ctx, tx, d.ProductID, d.Quantity); err != nil {
					return fmt.Errorf("restock product %s: %w", d.ProductID, err)
				}
				restocked += d.Quantity
			}
		}
		return nil
	})
	if err != nil {
		if r, ok := asViolation(err); ok {
			s.log.Info("order status change rejected",
				zap.String("order_id", orderID),
				zap.String("to", string(newStatus)),
				zap.String("reason", r.Message))
			return r, nil
		}
		s.log.Error("order status change failed", zap.String("order_id", orderID), zap.Error(err))
		return result.Result{}, fmt.Errorf("update status of order %s: %w", orderID, err)
	}

	s.metrics.RecordStatusTransition(string(newStatus))
	if restocked > 0 {
		s.metrics.RecordRestock(restocked)
	}
	s.log.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(newStatus)),
		zap.Int("restocked_units", restocked))

	s.publish(EventOrderStatusChanged, StatusChangedEvent{
		OrderID:   orderID,
		From:      string(from),
		To:        string(newStatus),
		ChangedAt: s.now(),
	})
	return result.Ok(fmt.Sprintf("order %s status updated from %s to %s", orderID, from, newStatus)), nil
}

// UpdatePaymentStatus moves an order's payment to newStatus when the payment transition
// table allows it.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID string, newStatus models.PaymentStatus) (result.Result, error) {
	if !newStatus.Valid() {
		return result.Fail(result.KindValidationFailure, result.CodeInvalidInput,
			fmt.Sprintf("unknown payment status %q", newStatus)), nil
	}

	var from models.PaymentStatus
	err := s.uow.Do(ctx, func(tx *repositories.Tx) error {
		order, err := s.loadOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !order.PaymentStatus.CanTransitionTo(newStatus) {
			return abort(result.KindBusinessRuleViolation, result.CodeInvalidStatusTransition,
				"payment of order %s cannot move from %s to %s", orderID, order.PaymentStatus, newStatus)
		}
		from = order.PaymentStatus

		err = s.orders.TransitionPaymentStatus(ctx, tx, orderID, from, newStatus)
		if errors.Is(err, repositories.ErrStaleWrite) {
			return abort(result.KindConcurrencyConflict, result.CodeStaleWrite,
				"order %s was modified concurrently", orderID)
		}
		return err
	})
	if err != nil {
		if r, ok := asViolation(err); ok {
			return r, nil
		}
		s.log.Error("payment status change failed", zap.String("order_id", orderID), zap.Error(err))
		return result.Result{}, fmt.Errorf("update payment status of order %s: %w", orderID, err)
	}

	s.metrics.RecordPaymentTransition(string(newStatus))
	s.log.Info("payment status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(newStatus)))

	s.publish(EventPaymentStatusChanged, StatusChangedEvent{
		OrderID:   orderID,
		From:      string(from),
		To:        string(newStatus),
		ChangedAt: s.now(),
	})
	return result.Ok(fmt.Sprintf("payment of order %s updated from %s to %s", orderID, from, newStatus)), nil
}

func (s *OrderService) loadOrder(ctx context.Context, tx *repositories.Tx, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, tx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, abort(result.KindNotFound, result.CodeOrderNotFound, "order %s not found", orderID)
	}
	return order, err
}

// ProcessOrder moves a pending order into processing.
func (s *OrderService) ProcessOrder(ctx context.Context, orderID string) (result.Result, error) {
	return s.UpdateOrderStatus(ctx, orderID, models.OrderStatusProcessing)
}

// ShipOrder marks a processing order as shipped.
func (s *OrderService) ShipOrder(ctx context.Context, orderID string) (result.Result, error) {
	return s.UpdateOrderStatus(ctx, orderID, models.OrderStatusShipped)
}

// DeliverOrder marks a shipped order as delivered.
func (s *OrderService) DeliverOrder(ctx context.Context, orderID string) (result.Result, error) {
	return s.UpdateOrderStatus(ctx, orderID, models.OrderStatusDelivered)
}

// CancelOrder cancels a pending or processing order and restocks its lines.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) (result.Result, error) {
	return s.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled)
}

// MarkPaid records the payment of an unpaid order.
func (s *OrderService) MarkPaid(ctx context.Context, orderID string) (result.Result, error) {
	return s.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusPaid)
}

// RefundOrder refunds a paid order, fully or partially.
func (s *OrderService) RefundOrder(ctx context.Context, orderID string, partial bool) (result.Result, error) {
	status := models.PaymentStatusRefunded
	if partial {
		status = models.PaymentStatusPartiallyRefunded
	}
	return s.UpdatePaymentStatus(ctx, orderID, status)
}
