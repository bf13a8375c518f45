package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
	log     *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *zap.Logger) *ProductHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductHandler{service: service, log: log}
}

// RegisterRoutes registers the product and category routes. Writes are admin only.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", middleware.AdminOnly(), h.HandleCreateProduct)
	productRoutes.Put("/:id", middleware.AdminOnly(), h.HandleUpdateProduct)
	productRoutes.Delete("/:id", middleware.AdminOnly(), h.HandleDeleteProduct)

	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetCategories)
	categoryRoutes.Post("/", middleware.AdminOnly(), h.HandleCreateCategory)
}

// HandleGetProducts lists live products, optionally filtered by ?category_id=.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	res, err := h.service.GetAllProducts(c.UserContext(), c.Query("category_id"))
	if err != nil {
		return internalError(c, h.log, "could not list products", err)
	}
	return respond(c, res.Result, res, fiber.StatusOK)
}

// HandleGetProductByID retrieves a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	res, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return internalError(c, h.log, "could not get product", err)
	}
	return respond(c, res.Result, res, fiber.StatusOK)
}

// HandleCreateProduct creates a product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req services.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	res, err := h.service.CreateProduct(c.UserContext(), req)
	if err != nil {
		return internalError(c, h.log, "could not create product", err)
	}
	return respond(c, res.Result, res, fiber.StatusCreated)
}

// HandleUpdateProduct replaces the editable fields of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req services.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	res, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return internalError(c, h.log, "could not update product", err)
	}
	return respond(c, res.Result, res, fiber.StatusOK)
}

// HandleDeleteProduct soft-deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	res, err := h.service.DeleteProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return internalError(c, h.log, "could not delete product", err)
	}
	return respond(c, res, res, fiber.StatusOK)
}

// HandleGetCategories lists live categories.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	res, err := h.service.GetAllCategories(c.UserContext())
	if err != nil {
		return internalError(c, h.log, "could not list categories", err)
	}
	return respond(c, res.Result, res, fiber.StatusOK)
}

// HandleCreateCategory creates a category.
func (h *ProductHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req services.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	res, err := h.service.CreateCategory(c.UserContext(), req)
	if err != nil {
		return internalError(c, h.log, "could not create category", err)
	}
	return respond(c, res.Result, res, fiber.StatusCreated)
}
