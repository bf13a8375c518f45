package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/result"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductService handles business logic related to products and categories.
type ProductService struct {
	uow        *repositories.UnitOfWork
	products   *repositories.ProductRepository
	categories *repositories.CategoryRepository
	validate   *validator.Validate
	log        *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(uow *repositories.UnitOfWork, products *repositories.ProductRepository, categories *repositories.CategoryRepository, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{
		uow:        uow,
		products:   products,
		categories: categories,
		validate:   validator.New(),
		log:        log,
	}
}

// ProductRequest carries the editable fields of a product.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CategoryID  string          `json:"category_id" validate:"required"`
	Active      *bool           `json:"active,omitempty"`
}

// CategoryRequest carries the fields of a new category.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// GetAllProducts retrieves all live products, optionally limited to one category.
func (s *ProductService) GetAllProducts(ctx context.Context, categoryID string) (result.DataResult[[]models.Product], error) {
	var (
		products []models.Product
		err      error
	)
	if categoryID != "" {
		products, err = s.products.GetByCategory(ctx, nil, categoryID)
	} else {
		products, err = s.products.GetAll(ctx, nil)
	}
	if err != nil {
		return result.DataResult[[]models.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return result.OkData(products, fmt.Sprintf("%d products found", len(products))), nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (result.DataResult[*models.Product], error) {
	product, err := s.products.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return result.FailData[*models.Product](result.KindNotFound, result.CodeProductNotFound,
				fmt.Sprintf("product %s not found", id)), nil
		}
		return result.DataResult[*models.Product]{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return result.OkData(product, "product retrieved"), nil
}

// CreateProduct creates a new product in an existing category.
func (s *ProductService) CreateProduct(ctx context.Context, req ProductRequest) (result.DataResult[*models.Product], error) {
	if r, ok := s.validateProduct(req); !ok {
		return result.FromResult[*models.Product](r), nil
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}
	err := s.uow.Do(ctx, func(tx *repositories.Tx) error {
		if err := s.requireCategory(ctx, tx, req.CategoryID); err != nil {
			return err
		}
		if err := s.products.Add(ctx, tx, product); err != nil {
			return err
		}
		if req.Active != nil && !*req.Active {
			product.IsActive = false
			return s.products.Update(ctx, tx, product)
		}
		return nil
	})
	if err != nil {
		if r, ok := asViolation(err); ok {
			return result.FromResult[*models.Product](r), nil
		}
		return result.DataResult[*models.Product]{}, fmt.Errorf("create product %q: %w", req.Name, err)
	}

	s.log.Info("product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return result.OkData(product, "product created"), nil
}

// UpdateProduct replaces the editable fields of an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req ProductRequest) (result.DataResult[*models.Product], error) {
	if r, ok := s.validateProduct(req); !ok {
		return result.FromResult[*models.Product](r), nil
	}

	var product *models.Product
	err := s.uow.Do(ctx, func(tx *repositories.Tx) error {
		var err error
		product, err = s.products.GetByID(ctx, tx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return abort(result.KindNotFound, result.CodeProductNotFound, "product %s not found", id)
		}
		if err != nil {
			return err
		}
		if err := s.requireCategory(ctx, tx, req.CategoryID); err != nil {
			return err
		}

		product.Name = req.Name
		product.Description = req.Description
		product.Price = req.Price
		product.CategoryID = req.CategoryID
		if req.Active != nil {
			product.IsActive = *req.Active
		}
		if err := s.products.Update(ctx, tx, product); err != nil {
			return err
		}
		if err := s.products.SetStock(ctx, tx, product.ID, req.Stock); err != nil {
			return err
		}
		product.Stock = req.Stock
		return nil
	})
	if err != nil {
		if r, ok := asViolation(err); ok {
			return result.FromResult[*models.Product](r), nil
		}
		return result.DataResult[*models.Product]{}, fmt.Errorf("update product %s: %w", id, err)
	}
	return result.OkData(product, "product updated"), nil
}

// DeleteProduct soft-deletes a product by its ID. Placed orders keep their snapshots.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (result.Result, error) {
	err := s.uow.Do(ctx, func(tx *repositories.Tx) error {
		return s.products.SoftDelete(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return result.Fail(result.KindNotFound, result.CodeProductNotFound,
				fmt.Sprintf("product %s not found", id)), nil
		}
		return result.Result{}, fmt.Errorf("delete product %s: %w", id, err)
	}
	s.log.Info("product deleted", zap.String("product_id", id))
	return result.Ok(fmt.Sprintf("product %s deleted", id)), nil
}

// CreateCategory creates a new category.
func (s *ProductService) CreateCategory(ctx context.Context, req CategoryRequest) (result.DataResult[*models.Category], error) {
	if err := s.validate.Struct(req); err != nil {
		if r, ok := validationResult(err); ok {
			return result.FromResult[*models.Category](r), nil
		}
		return result.DataResult[*models.Category]{}, err
	}

	category := &models.Category{Name: req.Name, Description: req.Description}
	err := s.uow.Do(ctx, func(tx *repositories.Tx) error {
		return s.categories.Add(ctx, tx, category)
	})
	if err != nil {
		return result.DataResult[*models.Category]{}, fmt.Errorf("create category %q: %w", req.Name, err)
	}
	return result.OkData(category, "category created"), nil
}

// GetAllCategories retrieves all live categories.
func (s *ProductService) GetAllCategories(ctx context.Context) (result.DataResult[[]models.Category], error) {
	categories, err := s.categories.GetAll(ctx, nil, func(db *gorm.DB) *gorm.DB {
		return db.Order("name")
	})
	if err != nil {
		return result.DataResult[[]models.Category]{}, fmt.Errorf("list categories: %w", err)
	}
	return result.OkData(categories, fmt.Sprintf("%d categories found", len(categories))), nil
}

func (s *ProductService) validateProduct(req ProductRequest) (result.Result, bool) {
	if err := s.validate.Struct(req); err != nil {
		if r, ok := validationResult(err); ok {
			return r, false
		}
		return result.Fail(result.KindValidationFailure, result.CodeInvalidInput, err.Error()), false
	}
	return checkAmount("Price", req.Price)
}

func (s *ProductService) requireCategory(ctx context.Context, tx *repositories.Tx, categoryID string) error {
	_, err := s.categories.GetByID(ctx, tx, categoryID)
	if errors.Is(err, repositories.ErrNotFound) {
		return abort(result.KindNotFound, result.CodeCategoryNotFound, "category %s not found", categoryID)
	}
	return err
}
