package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/services"
	"github.com/hanapp-ph/hanapp-backend/internal/utils"
)

// validationFailed carries per-field validator output to the error handler
type validationFailed struct {
	details []utils.ValidationError
}

func (v *validationFailed) Error() string { return "validation failed" }

// StatusCode lets the metrics middleware label the response before the error handler runs
func (v *validationFailed) StatusCode() int { return fiber.StatusBadRequest }

// ErrorHandler renders every error as {"error": ...}. Upstream causes are
// logged, never returned to the client.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			se *services.Error
			ve *validationFailed
			fe *fiber.Error
		)
		switch {
		case errors.As(err, &ve):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   ve.Error(),
				"details": ve.details,
			})
		case errors.As(err, &se):
			if se.Code >= fiber.StatusInternalServerError {
				logger.Error("request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.String("message", se.Message),
					zap.Error(se.Err))
			}
			return c.Status(se.Code).JSON(fiber.Map{"error": se.Message})
		case errors.As(err, &fe):
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		default:
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
	}
}

// bind parses the JSON body into dst and runs struct validation
func bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return services.BadRequest("Invalid request body")
	}
	if err := utils.ValidateStruct(dst); err != nil {
		if details := utils.FormatValidationErrors(err); len(details) > 0 {
			return &validationFailed{details: details}
		}
		return services.BadRequest("Invalid request body")
	}
	return nil
}
