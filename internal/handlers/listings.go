package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hanapp-ph/hanapp-backend/internal/middleware"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/services"
)

type ListingHandler struct {
	listings *services.ListingService
}

func NewListingHandler(listings *services.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	var req models.ListingCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	l, err := h.listings.Create(c.UserContext(), middleware.CurrentActor(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Listing created successfully",
		"listing": l,
	})
}

// List returns active listings, optionally ?category=
func (h *ListingHandler) List(c *fiber.Ctx) error {
	ls, err := h.listings.ListActive(c.UserContext(), c.Query("category"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"listings": ls,
		"count":    len(ls),
	})
}

func (h *ListingHandler) ListMine(c *fiber.Ctx) error {
	ls, err := h.listings.ListMine(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"listings": ls,
		"count":    len(ls),
	})
}

func (h *ListingHandler) Get(c *fiber.Ctx) error {
	l, err := h.listings.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(l)
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	var upd models.ListingUpdate
	if err := bind(c, &upd); err != nil {
		return err
	}
	l, err := h.listings.Update(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), upd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Listing updated successfully",
		"listing": l,
	})
}

func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	if err := h.listings.Delete(c.UserContext(), middleware.CurrentActor(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Listing deleted successfully"})
}
