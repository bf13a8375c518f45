package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/result"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartService manages the lines of a user's cart.
type CartService struct {
	uow      *repositories.UnitOfWork
	carts    *repositories.CartRepository
	products *repositories.ProductRepository
	log      *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(uow *repositories.UnitOfWork, carts *repositories.CartRepository, products *repositories.ProductRepository, log *zap.Logger) *CartService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{uow: uow, carts: carts, products: products, log: log}
}

// CartLine is a cart item priced with the live product.
type CartLine struct {
	ItemID      string          `json:"item_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Available   bool            `json:"available"`
}

// Cart is the priced view of a user's cart. Unavailable lines are listed but not summed.
type Cart struct {
	UserID   string          `json:"user_id"`
	Lines    []CartLine      `json:"lines"`
	SubTotal decimal.Decimal `json:"sub_total"`
}

// AddItem puts quantity units of a product into the cart, growing the existing line when
// the product is already there.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (result.DataResult[*models.CartItem], error) {
	if quantity <= 0 {
		return result.FailData[*models.CartItem](result.KindValidationFailure, result.CodeInvalidInput,
			"quantity must be greater than zero"), nil
	}

	product, r, err := s.availableProduct(ctx, productID)
	if err != nil || !r.Success {
		return result.FromResult[*models.CartItem](r), err
	}

	var item *models.CartItem
	err = s.uow.Do(ctx, func(tx *repositories.Tx) error {
		requested := quantity
		line, err := s.carts.FindLine(ctx, tx, userID, productID)
		switch {
		case err == nil:
			requested += line.Quantity
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}
		if requested > product.Stock {
			return abort(result.KindBusinessRuleViolation, result.CodeInsufficientStock,
				"insufficient stock for product %q (%s): requested %d, available %d",
				product.Name, product.ID, requested, product.Stock)
		}

		item, err = s.carts.AddOrIncrement(ctx, tx, userID, productID, quantity)
		return err
	})
	if err != nil {
		if r, ok := asViolation(err); ok {
			return result.FromResult[*models.CartItem](r), nil
		}
		return result.DataResult[*models.CartItem]{}, fmt.Errorf("add product %s to cart of user %s: %w", productID, userID, err)
	}

	s.log.Debug("cart item added",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
		zap.Int("quantity", item.Quantity))
	return result.OkData(item, "item added to cart"), nil
}

// UpdateQuantity sets the quantity of an existing cart line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (result.DataResult[*models.CartItem], error) {
	if quantity <= 0 {
		return result.FailData[*models.CartItem](result.KindValidationFailure, result.CodeInvalidInput,
			"quantity must be greater than zero"), nil
	}

	product, r, err := s.availableProduct(ctx, productID)
	if err != nil || !r.Success {
		return result.FromResult[*models.CartItem](r), err
	}
	if quantity > product.Stock {
		return result.FailData[*models.CartItem](result.KindBusinessRuleViolation, result.CodeInsufficientStock,
			fmt.Sprintf("insufficient stock for product %q (%s): requested %d, available %d",
				product.Name, product.ID, quantity, product.Stock)), nil
	}

	var item *models.CartItem
	err = s.uow.Do(ctx, func(tx *repositories.Tx) error {
		line, err := s.findLine(ctx, tx, userID, productID)
		if err != nil {
			return err
		}
		line.Quantity = quantity
		if err := s.carts.Update(ctx, tx, line); err != nil {
			return err
		}
		item = line
		return nil
	})
	if err != nil {
		if r, ok := asViolation(err); ok {
			return result.FromResult[*models.CartItem](r), nil
		}
		return result.DataResult[*models.CartItem]{}, fmt.Errorf("update cart line of product %s: %w", productID, err)
	}
	return result.OkData(item, "cart item updated"), nil
}

// RemoveItem removes a product's line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (result.Result, error) {
	err := s.uow.Do(ctx, func(tx *repositories.Tx) error {
		line, err := s.findLine(ctx, tx, userID, productID)
		if err != nil {
			return err
		}
		return s.carts.SoftDelete(ctx, tx, line.ID)
	})
	if err != nil {
		if r, ok := asViolation(err); ok {
			return r, nil
		}
		return result.Result{}, fmt.Errorf("remove product %s from cart of user %s: %w", productID, userID, err)
	}
	return result.Ok("item removed from cart"), nil
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID string) (result.Result, error) {
	var removed int64
	err := s.uow.Do(ctx, func(tx *repositories.Tx) error {
		var err error
		removed, err = s.carts.ClearForUser(ctx, tx, userID)
		return err
	})
	if err != nil {
		return result.Result{}, fmt.Errorf("clear cart of user %s: %w", userID, err)
	}
	return result.Ok(fmt.Sprintf("%d items removed from cart", removed)), nil
}

// GetCart returns the user's cart priced with current product prices.
func (s *CartService) GetCart(ctx context.Context, userID string) (result.DataResult[*Cart], error) {
	items, err := s.carts.ListForUser(ctx, nil, userID)
	if err != nil {
		return result.DataResult[*Cart]{}, fmt.Errorf("load cart of user %s: %w", userID, err)
	}

	cart := &Cart{UserID: userID, Lines: make([]CartLine, 0, len(items)), SubTotal: decimal.Zero}
	for _, item := range items {
		line := CartLine{ItemID: item.ID, ProductID: item.ProductID, Quantity: item.Quantity}

		product, err := s.products.GetByID(ctx, nil, item.ProductID)
		switch {
		case err == nil:
			line.ProductName = product.Name
			line.UnitPrice = product.Price
			line.LineTotal = product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
			line.Available = product.Available()
		case errors.Is(err, repositories.ErrNotFound):
		default:
			return result.DataResult[*Cart]{}, fmt.Errorf("load product %s: %w", item.ProductID, err)
		}

		if line.Available {
			cart.SubTotal = cart.SubTotal.Add(line.LineTotal)
		}
		cart.Lines = append(cart.Lines, line)
	}
	return result.OkData(cart, fmt.Sprintf("%d items in cart", len(cart.Lines))), nil
}

func (s *CartService) availableProduct(ctx context.Context, productID string) (*models.Product, result.Result, error) {
	product, err := s.products.GetByID(ctx, nil, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, result.Fail(result.KindNotFound, result.CodeProductNotFound,
				fmt.Sprintf("product %s not found", productID)), nil
		}
		return nil, result.Result{}, fmt.Errorf("load product %s: %w", productID, err)
	}
	if !product.Available() {
		return nil, result.Fail(result.KindBusinessRuleViolation, result.CodeProductUnavailable,
			fmt.Sprintf("product %q (%s) is not available", product.Name, product.ID)), nil
	}
	return product, result.Ok(""), nil
}

func (s *CartService) findLine(ctx context.Context, tx *repositories.Tx, userID, productID string) (*models.CartItem, error) {
	line, err := s.carts.FindLine(ctx, tx, userID, productID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, abort(result.KindNotFound, result.CodeCartItemNotFound,
			"product %s is not in the cart", productID)
	}
	return line, err
}
