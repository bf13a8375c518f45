package services_test

import (
	"context"
	"testing"

	"storefront/internal/result"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := services.AddressRequest{
		Recipient:  "Jane Doe",
		Line1:      "221B Baker Street",
		City:       "London",
		PostalCode: "NW1 6XE",
		Country:    "gb",
	}
	created, err := f.addressService.AddAddress(ctx, "user-1", req)
	require.NoError(t, err)
	require.True(t, created.Success, created.Message)
	assert.Equal(t, "GB", created.Data.Country)

	req.Country = "GBR"
	invalid, err := f.addressService.AddAddress(ctx, "user-1", req)
	require.NoError(t, err)
	assert.Equal(t, result.KindValidationFailure, invalid.Kind)
	assert.Contains(t, invalid.Message, "Country")

	list, err := f.addressService.ListAddresses(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list.Data, 1)

	foreign, err := f.addressService.DeleteAddress(ctx, "user-2", created.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, result.CodeAddressNotFound, foreign.Code)

	deleted, err := f.addressService.DeleteAddress(ctx, "user-1", created.Data.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Success)

	list, err = f.addressService.ListAddresses(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, list.Data)
}
