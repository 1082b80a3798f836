package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/utils"
)

// WebhookHandler receives SMS delivery callbacks from Twilio
type WebhookHandler struct {
	log *zap.Logger
}

func NewWebhookHandler(logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{log: logger.Named("webhook")}
}

// SMSStatus logs the delivery outcome of an OTP message
func (h *WebhookHandler) SMSStatus(c *fiber.Ctx) error {
	status := c.FormValue("MessageStatus")
	fields := []zap.Field{
		zap.String("sid", c.FormValue("MessageSid")),
		zap.String("status", status),
		zap.String("to", utils.MaskPhone(c.FormValue("To"))),
	}
	switch status {
	case "failed", "undelivered":
		h.log.Warn("sms not delivered", append(fields, zap.String("error_code", c.FormValue("ErrorCode")))...)
	default:
		h.log.Info("sms status", fields...)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
