package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/twilio/twilio-go/client"
	"go.uber.org/zap"
)

// ValidateTwilioSignature checks X-Twilio-Signature on status callbacks.
// With validation disabled every request passes.
func ValidateTwilioSignature(authToken string, enabled bool, logger *zap.Logger) fiber.Handler {
	validator := client.NewRequestValidator(authToken)
	return func(c *fiber.Ctx) error {
		if !enabled {
			return c.Next()
		}

		signature := c.Get("X-Twilio-Signature")
		if signature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Twilio signature",
			})
		}

		if authToken == "" {
			logger.Error("twilio webhook validation enabled without an auth token")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		params := make(map[string]string)
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			params[string(key)] = string(value)
		})

		if !validator.Validate(getFullURL(c), params, signature) {
			logger.Warn("invalid twilio signature", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}

		return c.Next()
	}
}

// getFullURL rebuilds the URL Twilio signed, honoring the proxy's scheme
func getFullURL(c *fiber.Ctx) string {
	scheme := c.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = c.Protocol()
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Hostname(), c.OriginalURL())
}
