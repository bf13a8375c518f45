package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test_jwt_secret")

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := database.OpenInMemory(strings.ReplaceAll(uuid.NewString(), "-", ""), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	uow := repositories.NewUnitOfWork(db, nil)
	productRepo := repositories.NewProductRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	addressRepo := repositories.NewAddressRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	orderService := services.NewOrderService(uow, orderRepo, productRepo, cartRepo, addressRepo)
	cartService := services.NewCartService(uow, cartRepo, productRepo, nil)
	productService := services.NewProductService(uow, productRepo, categoryRepo, nil)
	addressService := services.NewAddressService(uow, addressRepo, nil)

	app := fiber.New()
	apiV1 := app.Group("/api/v1", middleware.AuthRequired(testSecret, nil))
	handlers.NewProductHandler(productService, nil).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartService, nil).RegisterRoutes(apiV1)
	handlers.NewAddressHandler(addressService, nil).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService, nil).RegisterRoutes(apiV1)
	return app
}

func tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := middleware.NewToken(testSecret, userID, role, time.Hour)
	require.NoError(t, err)
	return token
}

// call performs a request and decodes the JSON response into a generic map.
func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func dataField(t *testing.T, body map[string]any, key string) any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", body)
	return data[key]
}

func TestCheckoutFlow(t *testing.T) {
	app := setupApp(t)
	admin := tokenFor(t, "admin-1", middleware.RoleAdmin)
	customer := tokenFor(t, "user-1", "customer")

	status, body := call(t, app, http.MethodPost, "/api/v1/categories", admin, map[string]any{"name": "Audio"})
	require.Equal(t, http.StatusCreated, status, body)
	categoryID := dataField(t, body, "id").(string)

	status, body = call(t, app, http.MethodPost, "/api/v1/products", admin, map[string]any{
		"name":        "Headphones",
		"price":       "10.00",
		"stock":       5,
		"category_id": categoryID,
	})
	require.Equal(t, http.StatusCreated, status, body)
	productID := dataField(t, body, "id").(string)

	status, body = call(t, app, http.MethodPost, "/api/v1/addresses", customer, map[string]any{
		"recipient":   "Jane Doe",
		"line1":       "1 Main Street",
		"city":        "Springfield",
		"postal_code": "12345",
		"country":     "US",
	})
	require.Equal(t, http.StatusCreated, status, body)
	addressID := dataField(t, body, "id").(string)

	checkout := map[string]any{
		"shipping_address_id": addressID,
		"payment_method":      "CreditCard",
		"shipping_cost":       "5",
		"tax_amount":          "1",
	}

	status, body = call(t, app, http.MethodPost, "/api/v1/orders", customer, checkout)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "EmptyCart", body["code"])

	status, body = call(t, app, http.MethodPost, "/api/v1/cart/items", customer, map[string]any{
		"product_id": productID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = call(t, app, http.MethodGet, "/api/v1/cart", customer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "20", dataField(t, body, "sub_total"))

	status, body = call(t, app, http.MethodPost, "/api/v1/orders", customer, checkout)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "26", dataField(t, body, "total_amount"))
	assert.Equal(t, "Pending", dataField(t, body, "status"))
	orderID := dataField(t, body, "id").(string)

	status, body = call(t, app, http.MethodGet, "/api/v1/orders", customer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, _ = call(t, app, http.MethodGet, "/api/v1/orders/"+orderID, tokenFor(t, "user-2", "customer"), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", customer, map[string]any{"status": "Cancelled"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", admin, map[string]any{"status": "Shipped"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "InvalidStatusTransition", body["code"])

	status, body = call(t, app, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", admin, map[string]any{"status": "Cancelled"})
	require.Equal(t, http.StatusOK, status, body)

	status, body = call(t, app, http.MethodGet, "/api/v1/products/"+productID, customer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 5, dataField(t, body, "stock"))

	status, body = call(t, app, http.MethodPatch, "/api/v1/orders/"+orderID+"/payment-status", admin, map[string]any{"payment_status": "Refunded"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "InvalidStatusTransition", body["code"])
}

func TestCheckoutInsufficientStock(t *testing.T) {
	app := setupApp(t)
	admin := tokenFor(t, "admin-1", middleware.RoleAdmin)
	customer := tokenFor(t, "user-1", "customer")

	_, body := call(t, app, http.MethodPost, "/api/v1/categories", admin, map[string]any{"name": "Audio"})
	categoryID := dataField(t, body, "id").(string)
	_, body = call(t, app, http.MethodPost, "/api/v1/products", admin, map[string]any{
		"name": "Speaker", "price": "50", "stock": 1, "category_id": categoryID,
	})
	productID := dataField(t, body, "id").(string)

	status, body := call(t, app, http.MethodPost, "/api/v1/cart/items", customer, map[string]any{
		"product_id": productID,
		"quantity":   2,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "InsufficientStock", body["code"])
	assert.Contains(t, body["message"], "Speaker")

	status, body = call(t, app, http.MethodPost, "/api/v1/cart/items", customer, map[string]any{
		"product_id": productID,
		"quantity":   0,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationFailure", body["kind"])
}

func TestProductEndpoints(t *testing.T) {
	app := setupApp(t)
	admin := tokenFor(t, "admin-1", middleware.RoleAdmin)
	customer := tokenFor(t, "user-1", "customer")

	status, _ := call(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodGet, "/api/v1/products", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodPost, "/api/v1/categories", customer, map[string]any{"name": "Audio"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := call(t, app, http.MethodPost, "/api/v1/products", admin, map[string]any{
		"name": "Orphan", "price": "5", "stock": 1, "category_id": uuid.NewString(),
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "CategoryNotFound", body["code"])

	_, body = call(t, app, http.MethodPost, "/api/v1/categories", admin, map[string]any{"name": "Audio"})
	categoryID := dataField(t, body, "id").(string)
	_, body = call(t, app, http.MethodPost, "/api/v1/products", admin, map[string]any{
		"name": "Turntable", "price": "150", "stock": 2, "category_id": categoryID,
	})
	productID := dataField(t, body, "id").(string)

	status, body = call(t, app, http.MethodPut, "/api/v1/products/"+productID, admin, map[string]any{
		"name": "Turntable Pro", "price": "175.50", "stock": 3, "category_id": categoryID,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Turntable Pro", dataField(t, body, "name"))

	status, body = call(t, app, http.MethodGet, "/api/v1/products?category_id="+categoryID, customer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, _ = call(t, app, http.MethodDelete, "/api/v1/products/"+productID, admin, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodGet, "/api/v1/products/"+productID, customer, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
