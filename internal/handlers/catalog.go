package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hanapp-ph/hanapp-backend/internal/middleware"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/services"
)

// CatalogHandler serves /services
type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	var req models.ServiceCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	svc, err := h.catalog.Create(c.UserContext(), middleware.CurrentActor(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Service created successfully",
		"service": svc,
	})
}

func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	svc, err := h.catalog.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(svc)
}

func (h *CatalogHandler) ListByProvider(c *fiber.Ctx) error {
	out, err := h.catalog.ListByProvider(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"services": out,
		"count":    len(out),
	})
}

func (h *CatalogHandler) ListByListing(c *fiber.Ctx) error {
	out, err := h.catalog.ListByListing(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"services": out,
		"count":    len(out),
	})
}

func (h *CatalogHandler) Update(c *fiber.Ctx) error {
	var upd models.ServiceUpdate
	if err := bind(c, &upd); err != nil {
		return err
	}
	svc, err := h.catalog.Update(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), upd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Service updated successfully",
		"service": svc,
	})
}

func (h *CatalogHandler) Delete(c *fiber.Ctx) error {
	if err := h.catalog.Delete(c.UserContext(), middleware.CurrentActor(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Service deleted successfully"})
}
