package handlers

import (
	"storefront/internal/result"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// statusFor maps the kind of a failed result to its HTTP status.
func statusFor(kind result.Kind) int {
	switch kind {
	case result.KindNotFound:
		return fiber.StatusNotFound
	case result.KindValidationFailure:
		return fiber.StatusBadRequest
	case result.KindBusinessRuleViolation:
		return fiber.StatusUnprocessableEntity
	case result.KindConcurrencyConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

// respond writes a result. body is the value serialized, usually the result itself.
func respond(c *fiber.Ctx, r result.Result, body any, okStatus int) error {
	if !r.Success {
		return c.Status(statusFor(r.Kind)).JSON(r)
	}
	return c.Status(okStatus).JSON(body)
}

// internalError logs a fault and answers with a generic body.
func internalError(c *fiber.Ctx, log *zap.Logger, msg string, err error) error {
	log.Error(msg,
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Internal server error",
	})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(result.Fail(result.KindValidationFailure, result.CodeInvalidInput,
		"Invalid request body: "+err.Error()))
}
