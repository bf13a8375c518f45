package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the authenticated user's cart.
type CartHandler struct {
	service *services.CartService
	log     *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, log *zap.Logger) *CartHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartHandler{service: service, log: log}
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

// HandleGetCart returns the priced cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	res, err := h.service.GetCart(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return internalError(c, h.log, "could not load cart", err)
	}
	return respond(c, res.Result, res, fiber.StatusOK)
}

// HandleAddItem adds a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	res, err := h.service.AddItem(c.UserContext(), middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return internalError(c, h.log, "could not add cart item", err)
	}
	return respond(c, res.Result, res, fiber.StatusCreated)
}

// HandleUpdateItem sets the quantity of a cart line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	res, err := h.service.UpdateQuantity(c.UserContext(), middleware.UserID(c), c.Params("productId"), req.Quantity)
	if err != nil {
		return internalError(c, h.log, "could not update cart item", err)
	}
	return respond(c, res.Result, res, fiber.StatusOK)
}

// HandleRemoveItem removes a product from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	res, err := h.service.RemoveItem(c.UserContext(), middleware.UserID(c), c.Params("productId"))
	if err != nil {
		return internalError(c, h.log, "could not remove cart item", err)
	}
	return respond(c, res, res, fiber.StatusOK)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	res, err := h.service.Clear(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return internalError(c, h.log, "could not clear cart", err)
	}
	return respond(c, res, res, fiber.StatusOK)
}
