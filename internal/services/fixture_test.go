package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"storefront/internal/database"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, payload any) error {
	args := m.Called(routingKey, payload)
	return args.Error(0)
}

type fixture struct {
	db         *gorm.DB
	uow        *repositories.UnitOfWork
	products   *repositories.ProductRepository
	categories *repositories.CategoryRepository
	carts      *repositories.CartRepository
	addresses  *repositories.AddressRepository
	orders     *repositories.OrderRepository
	publisher  *MockPublisher

	orderService   *services.OrderService
	cartService    *services.CartService
	productService *services.ProductService
	addressService *services.AddressService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.OpenInMemory(strings.ReplaceAll(uuid.NewString(), "-", ""), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		db:         db,
		uow:        repositories.NewUnitOfWork(db, nil),
		products:   repositories.NewProductRepository(db),
		categories: repositories.NewCategoryRepository(db),
		carts:      repositories.NewCartRepository(db),
		addresses:  repositories.NewAddressRepository(db),
		orders:     repositories.NewOrderRepository(db),
		publisher:  new(MockPublisher),
	}
	f.orderService = services.NewOrderService(f.uow, f.orders, f.products, f.carts, f.addresses,
		services.WithPublisher(f.publisher),
		services.WithMetrics(metrics.NewOrderMetricsWithRegisterer(prometheus.NewRegistry())),
		services.WithOrderNumberPrefix("TST"),
	)
	f.cartService = services.NewCartService(f.uow, f.carts, f.products, nil)
	f.productService = services.NewProductService(f.uow, f.products, f.categories, nil)
	f.addressService = services.NewAddressService(f.uow, f.addresses, nil)
	return f
}

func (f *fixture) seedCategory(t *testing.T) *models.Category {
	t.Helper()
	category := &models.Category{Name: "General"}
	require.NoError(t, f.uow.Do(context.Background(), func(tx *repositories.Tx) error {
		return f.categories.Add(context.Background(), tx, category)
	}))
	return category
}

func (f *fixture) seedProduct(t *testing.T, name string, price string, stock int) *models.Product {
	t.Helper()
	category := f.seedCategory(t)
	product := &models.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: category.ID,
	}
	require.NoError(t, f.uow.Do(context.Background(), func(tx *repositories.Tx) error {
		return f.products.Add(context.Background(), tx, product)
	}))
	return product
}

func (f *fixture) seedAddress(t *testing.T, userID string) *models.Address {
	t.Helper()
	address := &models.Address{
		UserID:     userID,
		Recipient:  "Jane Doe",
		Line1:      "1 Main Street",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
	require.NoError(t, f.uow.Do(context.Background(), func(tx *repositories.Tx) error {
		return f.addresses.Add(context.Background(), tx, address)
	}))
	return address
}

func (f *fixture) addToCart(t *testing.T, userID, productID string, quantity int) {
	t.Helper()
	require.NoError(t, f.uow.Do(context.Background(), func(tx *repositories.Tx) error {
		_, err := f.carts.AddOrIncrement(context.Background(), tx, userID, productID, quantity)
		return err
	}))
}

func (f *fixture) stockOf(t *testing.T, productID string) int {
	t.Helper()
	product, err := f.products.GetByIDIncludingDeleted(context.Background(), nil, productID)
	require.NoError(t, err)
	return product.Stock
}

func (f *fixture) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(model).Count(&count).Error)
	return count
}

// onceAfterQuery runs change the first time a query on table completes. Placement reads
// orders only to pick an order number, after every line has been priced.
func (f *fixture) onceAfterQuery(t *testing.T, table string, change func(db *gorm.DB)) {
	t.Helper()
	var once sync.Once
	name := "test:after_" + table + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	require.NoError(t, f.db.Callback().Query().After("gorm:query").Register(name, func(db *gorm.DB) {
		if db.Statement.Table == table {
			once.Do(func() { change(f.db) })
		}
	}))
}

func checkoutRequest(userID, addressID string) services.PlaceOrderRequest {
	return services.PlaceOrderRequest{
		UserID:            userID,
		ShippingAddressID: addressID,
		PaymentMethod:     models.PaymentMethodCreditCard,
		ShippingCost:      decimal.NewFromInt(5),
		TaxAmount:         decimal.NewFromInt(1),
	}
}
