package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hanapp-ph/hanapp-backend/internal/middleware"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/services"
)

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var req models.SendMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	msg, err := h.messages.Send(c.UserContext(), middleware.CurrentActor(c).ID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message sent",
		"data":    msg,
	})
}

// Threads handles GET /messages/threads
func (h *MessageHandler) Threads(c *fiber.Ctx) error {
	threads, err := h.messages.Threads(c.UserContext(), middleware.CurrentActor(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"threads": threads,
		"count":   len(threads),
	})
}

// Conversation handles GET /messages/:partnerId
func (h *MessageHandler) Conversation(c *fiber.Ctx) error {
	msgs, err := h.messages.Conversation(c.UserContext(), middleware.CurrentActor(c).ID, c.Params("partnerId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"messages": msgs,
		"count":    len(msgs),
	})
}
