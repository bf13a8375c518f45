package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	log     *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, log *zap.Logger) *OrderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderHandler{service: service, log: log}
}

// RegisterRoutes registers the order routes. Status changes and deletion are admin only.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandlePlaceOrder)
	orderRoutes.Patch("/:id/status", middleware.AdminOnly(), h.HandleUpdateOrderStatus)
	orderRoutes.Patch("/:id/payment-status", middleware.AdminOnly(), h.HandleUpdatePaymentStatus)
	orderRoutes.Delete("/:id", middleware.AdminOnly(), h.HandleDeleteOrder)
}

// HandleGetOrders lists the orders of the authenticated user.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	res, err := h.service.ListOrdersForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return internalError(c, h.log, "could not list orders", err)
	}
	return respond(c, res.Result, res, fiber.StatusOK)
}

// HandleGetOrderByID retrieves one order of the authenticated user. Admins can read any order.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if role, _ := c.Locals("role").(string); role == middleware.RoleAdmin {
		res, err := h.service.GetOrder(c.UserContext(), orderID)
		if err != nil {
			return internalError(c, h.log, "could not get order", err)
		}
		return respond(c, res.Result, res, fiber.StatusOK)
	}

	res, err := h.service.GetOrderForUser(c.UserContext(), middleware.UserID(c), orderID)
	if err != nil {
		return internalError(c, h.log, "could not get order", err)
	}
	return respond(c, res.Result, res, fiber.StatusOK)
}

// HandlePlaceOrder checks out the authenticated user's cart.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	req.UserID = middleware.UserID(c)

	res, err := h.service.PlaceOrder(c.UserContext(), req)
	if err != nil {
		return internalError(c, h.log, "could not place order", err)
	}
	return respond(c, res.Result, res, fiber.StatusCreated)
}

// HandleUpdateOrderStatus moves an order to a new status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var body struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, err)
	}

	res, err := h.service.UpdateOrderStatus(c.UserContext(), c.Params("id"), body.Status)
	if err != nil {
		return internalError(c, h.log, "could not update order status", err)
	}
	return respond(c, res, res, fiber.StatusOK)
}

// HandleUpdatePaymentStatus moves an order's payment to a new status.
func (h *OrderHandler) HandleUpdatePaymentStatus(c *fiber.Ctx) error {
	var body struct {
		PaymentStatus models.PaymentStatus `json:"payment_status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, err)
	}

	res, err := h.service.UpdatePaymentStatus(c.UserContext(), c.Params("id"), body.PaymentStatus)
	if err != nil {
		return internalError(c, h.log, "could not update payment status", err)
	}
	return respond(c, res, res, fiber.StatusOK)
}

// HandleDeleteOrder soft-deletes an order and its details.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	res, err := h.service.DeleteOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return internalError(c, h.log, "could not delete order", err)
	}
	return respond(c, res, res, fiber.StatusOK)
}
