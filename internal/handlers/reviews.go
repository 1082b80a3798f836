package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hanapp-ph/hanapp-backend/internal/middleware"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/services"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var req models.ReviewCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	r, err := h.reviews.Create(c.UserContext(), middleware.CurrentActor(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Review submitted successfully",
		"review":  r,
	})
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	var req models.ReviewUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	r, err := h.reviews.Update(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Review updated successfully",
		"review":  r,
	})
}

// Reply handles POST /reviews/:id, the provider's answer to a review
func (h *ReviewHandler) Reply(c *fiber.Ctx) error {
	var req models.ReviewReply
	if err := bind(c, &req); err != nil {
		return err
	}
	r, err := h.reviews.Reply(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Reply posted successfully",
		"review":  r,
	})
}

func (h *ReviewHandler) ListByService(c *fiber.Ctx) error {
	sum, err := h.reviews.ListByService(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(sum)
}

func (h *ReviewHandler) ListByProvider(c *fiber.Ctx) error {
	sum, err := h.reviews.ListByProvider(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(sum)
}
