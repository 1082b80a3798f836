package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hanapp-ph/hanapp-backend/internal/middleware"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/services"
)

// ServiceRequestHandler handles job postings by clients
type ServiceRequestHandler struct {
	requests *services.ServiceRequestService
}

func NewServiceRequestHandler(requests *services.ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{requests: requests}
}

func (h *ServiceRequestHandler) Create(c *fiber.Ctx) error {
	var req models.ServiceRequestCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	created, err := h.requests.Create(c.UserContext(), middleware.CurrentActor(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":         "Service request created successfully",
		"service_request": created,
	})
}

// List returns open requests, filtered by ?category=&location=&status=
func (h *ServiceRequestHandler) List(c *fiber.Ctx) error {
	reqs, err := h.requests.List(c.UserContext(), models.ServiceRequestFilter{
		Category: c.Query("category"),
		Location: c.Query("location"),
		Status:   c.Query("status"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"service_requests": reqs,
		"count":            len(reqs),
	})
}

func (h *ServiceRequestHandler) ListMine(c *fiber.Ctx) error {
	reqs, err := h.requests.ListMine(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"service_requests": reqs,
		"count":            len(reqs),
	})
}

func (h *ServiceRequestHandler) Get(c *fiber.Ctx) error {
	req, err := h.requests.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(req)
}

func (h *ServiceRequestHandler) Update(c *fiber.Ctx) error {
	var upd models.ServiceRequestUpdate
	if err := bind(c, &upd); err != nil {
		return err
	}
	req, err := h.requests.Update(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), upd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":         "Service request updated successfully",
		"service_request": req,
	})
}

func (h *ServiceRequestHandler) Delete(c *fiber.Ctx) error {
	if err := h.requests.Delete(c.UserContext(), middleware.CurrentActor(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Service request deleted successfully"})
}
