package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/result"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxOrderNumberAttempts = 5

// OrderService places orders from carts and drives them through their lifecycle.
type OrderService struct {
	uow       *repositories.UnitOfWork
	orders    *repositories.OrderRepository
	products  *repositories.ProductRepository
	carts     *repositories.CartRepository
	addresses *repositories.AddressRepository

	publisher    EventPublisher
	metrics      *metrics.OrderMetrics
	log          *zap.Logger
	validate     *validator.Validate
	numberPrefix string
	now          func() time.Time
}

// OrderServiceOption customizes an OrderService.
type OrderServiceOption func(*OrderService)

// WithPublisher sets the publisher of order events. Without one no events are sent.
func WithPublisher(p EventPublisher) OrderServiceOption {
	return func(s *OrderService) { s.publisher = p }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.OrderMetrics) OrderServiceOption {
	return func(s *OrderService) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) OrderServiceOption {
	return func(s *OrderService) {
		if log != nil {
			s.log = log
		}
	}
}

// WithOrderNumberPrefix sets the prefix of generated order numbers.
func WithOrderNumberPrefix(prefix string) OrderServiceOption {
	return func(s *OrderService) {
		if prefix != "" {
			s.numberPrefix = prefix
		}
	}
}

// WithClock replaces the time source used for order numbers and events.
func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *OrderService) { s.now = now }
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	uow *repositories.UnitOfWork,
	orders *repositories.OrderRepository,
	products *repositories.ProductRepository,
	carts *repositories.CartRepository,
	addresses *repositories.AddressRepository,
	opts ...OrderServiceOption,
) *OrderService {
	s := &OrderService{
		uow:          uow,
		orders:       orders,
		products:     products,
		carts:        carts,
		addresses:    addresses,
		log:          zap.NewNop(),
		validate:     validator.New(),
		numberPrefix: "ORD",
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrderRequest is a checkout request. The cart contents are always read from storage.
type PlaceOrderRequest struct {
	UserID            string               `json:"-" validate:"required"`
	ShippingAddressID string               `json:"shipping_address_id" validate:"required"`
	BillingAddressID  *string              `json:"billing_address_id,omitempty"`
	PaymentMethod     models.PaymentMethod `json:"payment_method" validate:"required,oneof=CreditCard DebitCard BankTransfer CashOnDelivery Wallet"`
	ShippingCost      decimal.Decimal      `json:"shipping_cost"`
	TaxAmount         decimal.Decimal      `json:"tax_amount"`
	Notes             *string              `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// orderLine is one priced cart line ready to be written as an order detail.
type orderLine struct {
	cartItems []models.CartItem
	product   *models.Product
	quantity  int
	subTotal  decimal.Decimal
}

// PlaceOrder turns the user's cart into a Pending, Unpaid order. Either the order, its
// details, the stock decrements and the cart clearing are all committed, or nothing is.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (result.DataResult[*models.Order], error) {
	start := time.Now()

	res, err := s.placeOrder(ctx, req)
	if err != nil {
		s.log.Error("order placement failed", zap.String("user_id", req.UserID), zap.Error(err))
		return res, err
	}
	if !res.Success {
		s.metrics.RecordPlacementFailure(string(res.Code))
		s.log.Info("order placement rejected",
			zap.String("user_id", req.UserID),
			zap.String("code", string(res.Code)),
			zap.String("reason", res.Message))
		return res, nil
	}

	order := res.Data
	s.metrics.RecordOrderPlaced(time.Since(start))
	s.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", order.UserID),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)))

	s.publish(EventOrderPlaced, OrderPlacedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Lines:       len(order.Details),
		PlacedAt:    order.CreatedDate,
	})
	return res, nil
}

func (s *OrderService) placeOrder(ctx context.Context, req PlaceOrderRequest) (result.DataResult[*models.Order], error) {
	if req.BillingAddressID != nil && strings.TrimSpace(*req.BillingAddressID) == "" {
		req.BillingAddressID = nil
	}
	if r, ok := s.validateRequest(req); !ok {
		return result.FromResult[*models.Order](r), nil
	}

	if r, err := s.checkAddress(ctx, req.UserID, req.ShippingAddressID, "shipping"); err != nil || !r.Success {
		return result.FromResult[*models.Order](r), err
	}
	if req.BillingAddressID != nil {
		if r, err := s.checkAddress(ctx, req.UserID, *req.BillingAddressID, "billing"); err != nil || !r.Success {
			return result.FromResult[*models.Order](r), err
		}
	}

	items, err := s.carts.ListForUser(ctx, nil, req.UserID)
	if err != nil {
		return result.DataResult[*models.Order]{}, fmt.Errorf("load cart of user %s: %w", req.UserID, err)
	}
	if len(items) == 0 {
		return result.FailData[*models.Order](result.KindBusinessRuleViolation, result.CodeEmptyCart,
			fmt.Sprintf("cart of user %s is empty", req.UserID)), nil
	}

	lines, r, err := s.priceLines(ctx, items)
	if err != nil || !r.Success {
		return result.FromResult[*models.Order](r), err
	}

	subTotal := decimal.Zero
	for _, line := range lines {
		subTotal = subTotal.Add(line.subTotal)
	}

	number, err := s.nextOrderNumber(ctx)
	if err != nil {
		return result.DataResult[*models.Order]{}, err
	}

	order := &models.Order{
		OrderNumber:       number,
		UserID:            req.UserID,
		SubTotal:          subTotal,
		ShippingCost:      req.ShippingCost,
		TaxAmount:         req.TaxAmount,
		TotalAmount:       subTotal.Add(req.ShippingCost).Add(req.TaxAmount),
		Status:            models.OrderStatusPending,
		PaymentStatus:     models.PaymentStatusUnpaid,
		PaymentMethod:     req.PaymentMethod,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		Notes:             req.Notes,
	}

	err = s.uow.Do(ctx, func(tx *repositories.Tx) error {
		return s.writeOrder(ctx, tx, order, lines)
	})
	if err != nil {
		if r, ok := asViolation(err); ok {
			return result.FromResult[*models.Order](r), nil
		}
		return result.DataResult[*models.Order]{}, fmt.Errorf("place order for user %s: %w", req.UserID, err)
	}

	return result.OkData(order, fmt.Sprintf("order %s placed", order.OrderNumber)), nil
}

func (s *OrderService) validateRequest(req PlaceOrderRequest) (result.Result, bool) {
	if err := s.validate.Struct(req); err != nil {
		if r, ok := validationResult(err); ok {
			return r, false
		}
		return result.Fail(result.KindValidationFailure, result.CodeInvalidInput, err.Error()), false
	}
	if r, ok := checkAmount("ShippingCost", req.ShippingCost); !ok {
		return r, false
	}
	if r, ok := checkAmount("TaxAmount", req.TaxAmount); !ok {
		return r, false
	}
	return result.Ok(""), true
}

func (s *OrderService) checkAddress(ctx context.Context, userID, addressID, role string) (result.Result, error) {
	_, err := s.addresses.GetForUser(ctx, nil, userID, addressID)
	switch {
	case err == nil:
		return result.Ok(""), nil
	case errors.Is(err, repositories.ErrNotFound):
		return result.Fail(result.KindNotFound, result.CodeAddressNotFound,
			fmt.Sprintf("%s address %s not found", role, addressID)), nil
	default:
		return result.Result{}, fmt.Errorf("load %s address %s: %w", role, addressID, err)
	}
}

// priceLines loads the live product of every cart line, checks availability and stock,
// and prices each line. Lines of the same product are merged.
func (s *OrderService) priceLines(ctx context.Context, items []models.CartItem) ([]*orderLine, result.Result, error) {
	var lines []*orderLine
	byProduct := make(map[string]*orderLine, len(items))

	for _, item := range items {
		line, ok := byProduct[item.ProductID]
		if !ok {
			product, err := s.products.GetByID(ctx, nil, item.ProductID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return nil, result.Fail(result.KindBusinessRuleViolation, result.CodeProductUnavailable,
						fmt.Sprintf("product %s is no longer available", item.ProductID)), nil
				}
				return nil, result.Result{}, fmt.Errorf("load product %s: %w", item.ProductID, err)
			}
			if !product.Available() {
				return nil, result.Fail(result.KindBusinessRuleViolation, result.CodeProductUnavailable,
					fmt.Sprintf("product %q (%s) is not available", product.Name, product.ID)), nil
			}
			line = &orderLine{product: product}
			byProduct[item.ProductID] = line
			lines = append(lines, line)
		}
		line.cartItems = append(line.cartItems, item)
		line.quantity += item.Quantity
	}

	for _, line := range lines {
		if line.product.Stock < line.quantity {
			return nil, result.Fail(result.KindBusinessRuleViolation, result.CodeInsufficientStock,
				fmt.Sprintf("insufficient stock for product %q (%s): requested %d, available %d",
					line.product.Name, line.product.ID, line.quantity, line.product.Stock)), nil
		}
		line.subTotal = line.product.Price.Mul(decimal.NewFromInt(int64(line.quantity))).Round(2)
	}
	return lines, result.Ok(""), nil
}

// writeOrder stages every write of a placement. Stock is re-checked by the decrement
// itself, so a concurrent checkout that got there first makes this one roll back. Cart
// lines are consumed only while they still hold the priced quantity.
func (s *OrderService) writeOrder(ctx context.Context, tx *repositories.Tx, order *models.Order, lines []*orderLine) error {
	for _, line := range lines {
		err := s.products.DecrementStock(ctx, tx, line.product.ID, line.quantity)
		if errors.Is(err, repositories.ErrInsufficientStock) {
			return abort(result.KindConcurrencyConflict, result.CodeInsufficientStock,
				"insufficient stock for product %q (%s): stock changed while the order was being placed",
				line.product.Name, line.product.ID)
		}
		if err != nil {
			return err
		}
	}

	if err := s.orders.Add(ctx, tx, order); err != nil {
		return err
	}

	order.Details = make([]models.OrderDetail, 0, len(lines))
	for _, line := range lines {
		detail := models.OrderDetail{
			OrderID:     order.ID,
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			Quantity:    line.quantity,
			UnitPrice:   line.product.Price,
			SubTotal:    line.subTotal,
		}
		if err := s.orders.AddDetail(ctx, tx, &detail); err != nil {
			return err
		}
		order.Details = append(order.Details, detail)
	}

	for _, line := range lines {
		for _, item := range line.cartItems {
			err := s.carts.ConsumeLine(ctx, tx, item.ID, item.Quantity)
			if errors.Is(err, repositories.ErrStaleWrite) {
				return abort(result.KindConcurrencyConflict, result.CodeStaleWrite,
					"cart of user %s changed while the order was being placed", order.UserID)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// nextOrderNumber generates an order number of the form PREFIX-YYYYMMDD-XXXXXXXX that is
// not taken yet. The unique index still guards against a race with another placement.
func (s *OrderService) nextOrderNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		number := fmt.Sprintf("%s-%s-%s", s.numberPrefix, s.now().Format("20060102"), suffix)

		taken, err := s.orders.NumberExists(ctx, nil, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
		s.log.Warn("order number collision", zap.String("order_number", number))
	}
	return "", fmt.Errorf("could not generate a unique order number after %d attempts", maxOrderNumberAttempts)
}

// GetOrder retrieves a single order with its details.
func (s *OrderService) GetOrder(ctx context.Context, id string) (result.DataResult[*models.Order], error) {
	order, err := s.orders.GetWithDetails(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return result.FailData[*models.Order](result.KindNotFound, result.CodeOrderNotFound,
				fmt.Sprintf("order %s not found", id)), nil
		}
		return result.DataResult[*models.Order]{}, fmt.Errorf("get order %s: %w", id, err)
	}
	return result.OkData(order, "order retrieved"), nil
}

// GetOrderForUser retrieves an order only when it belongs to userID. Orders of other users
// are reported as not found.
func (s *OrderService) GetOrderForUser(ctx context.Context, userID, id string) (result.DataResult[*models.Order], error) {
	res, err := s.GetOrder(ctx, id)
	if err != nil || !res.Success {
		return res, err
	}
	if res.Data.UserID != userID {
		return result.FailData[*models.Order](result.KindNotFound, result.CodeOrderNotFound,
			fmt.Sprintf("order %s not found", id)), nil
	}
	return res, nil
}

// ListOrdersForUser retrieves the user's orders, newest first.
func (s *OrderService) ListOrdersForUser(ctx context.Context, userID string) (result.DataResult[[]models.Order], error) {
	orders, err := s.orders.ListForUser(ctx, nil, userID)
	if err != nil {
		return result.DataResult[[]models.Order]{}, fmt.Errorf("list orders of user %s: %w", userID, err)
	}
	return result.OkData(orders, fmt.Sprintf("%d orders found", len(orders))), nil
}

// DeleteOrder soft-deletes an order together with its details.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) (result.Result, error) {
	err := s.uow.Do(ctx, func(tx *repositories.Tx) error {
		return s.orders.SoftDeleteWithDetails(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return result.Fail(result.KindNotFound, result.CodeOrderNotFound,
				fmt.Sprintf("order %s not found", id)), nil
		}
		return result.Result{}, fmt.Errorf("delete order %s: %w", id, err)
	}
	s.log.Info("order deleted", zap.String("order_id", id))
	return result.Ok(fmt.Sprintf("order %s deleted", id)), nil
}

func (s *OrderService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.log.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
		return
	}
	s.log.Debug("event published", zap.String("routing_key", routingKey))
}
