package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AddressHandler handles HTTP requests for the authenticated user's addresses.
type AddressHandler struct {
	service *services.AddressService
	log     *zap.Logger
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService, log *zap.Logger) *AddressHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AddressHandler{service: service, log: log}
}

// RegisterRoutes registers the address routes.
func (h *AddressHandler) RegisterRoutes(router fiber.Router) {
	addressRoutes := router.Group("/addresses")
	addressRoutes.Get("/", h.HandleGetAddresses)
	addressRoutes.Post("/", h.HandleCreateAddress)
	addressRoutes.Delete("/:id", h.HandleDeleteAddress)
}

// HandleGetAddresses lists the user's addresses.
func (h *AddressHandler) HandleGetAddresses(c *fiber.Ctx) error {
	res, err := h.service.ListAddresses(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return internalError(c, h.log, "could not list addresses", err)
	}
	return respond(c, res.Result, res, fiber.StatusOK)
}

// HandleCreateAddress stores a new address for the user.
func (h *AddressHandler) HandleCreateAddress(c *fiber.Ctx) error {
	var req services.AddressRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	res, err := h.service.AddAddress(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return internalError(c, h.log, "could not add address", err)
	}
	return respond(c, res.Result, res, fiber.StatusCreated)
}

// HandleDeleteAddress soft-deletes one of the user's addresses.
func (h *AddressHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	res, err := h.service.DeleteAddress(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return internalError(c, h.log, "could not delete address", err)
	}
	return respond(c, res, res, fiber.StatusOK)
}
