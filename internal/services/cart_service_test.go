package services_test

import (
	"context"
	"testing"

	"storefront/internal/repositories"
	"storefront/internal/result"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "Notebook", "2.50", 5)

	res, err := f.cartService.AddItem(ctx, "user-1", product.ID, 2)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 2, res.Data.Quantity)

	res, err = f.cartService.AddItem(ctx, "user-1", product.ID, 1)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 3, res.Data.Quantity)

	lines, err := f.carts.ListForUser(ctx, nil, "user-1")
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	res, err = f.cartService.AddItem(ctx, "user-1", product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, result.CodeInsufficientStock, res.Code)

	res, err = f.cartService.AddItem(ctx, "user-1", product.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, result.KindValidationFailure, res.Kind)

	res, err = f.cartService.AddItem(ctx, "user-1", "00000000-0000-0000-0000-000000000000", 1)
	require.NoError(t, err)
	assert.Equal(t, result.CodeProductNotFound, res.Code)
	assert.Nil(t, res.Data)
}

func TestCartService_AddItem_InactiveProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "Hidden", "9", 5)

	product.IsActive = false
	require.NoError(t, f.uow.Do(ctx, func(tx *repositories.Tx) error {
		return f.products.Update(ctx, tx, product)
	}))

	res, err := f.cartService.AddItem(ctx, "user-1", product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, result.CodeProductUnavailable, res.Code)
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "Stapler", "6", 10)
	f.addToCart(t, "user-1", product.ID, 1)

	res, err := f.cartService.UpdateQuantity(ctx, "user-1", product.ID, 7)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 7, res.Data.Quantity)

	res, err = f.cartService.UpdateQuantity(ctx, "user-2", product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, result.CodeCartItemNotFound, res.Code)

	removed, err := f.cartService.RemoveItem(ctx, "user-1", product.ID)
	require.NoError(t, err)
	assert.True(t, removed.Success)

	removed, err = f.cartService.RemoveItem(ctx, "user-1", product.ID)
	require.NoError(t, err)
	assert.Equal(t, result.CodeCartItemNotFound, removed.Code)
}

func TestCartService_GetCartAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pen := f.seedProduct(t, "Pen", "1.25", 10)
	ink := f.seedProduct(t, "Ink", "4", 10)
	gone := f.seedProduct(t, "Gone", "100", 10)
	f.addToCart(t, "user-1", pen.ID, 4)
	f.addToCart(t, "user-1", ink.ID, 1)
	f.addToCart(t, "user-1", gone.ID, 1)

	require.NoError(t, f.uow.Do(ctx, func(tx *repositories.Tx) error {
		return f.products.SoftDelete(ctx, tx, gone.ID)
	}))

	res, err := f.cartService.GetCart(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Data.Lines, 3)
	assert.True(t, decimal.NewFromInt(9).Equal(res.Data.SubTotal), "subtotal = %s", res.Data.SubTotal)
	for _, line := range res.Data.Lines {
		assert.Equal(t, line.ProductID != gone.ID, line.Available, line.ProductID)
	}

	cleared, err := f.cartService.Clear(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, cleared.Success)
	assert.Contains(t, cleared.Message, "3")

	res, err = f.cartService.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, res.Data.Lines)
	assert.True(t, res.Data.SubTotal.IsZero())
}
