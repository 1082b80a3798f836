package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hanapp-ph/hanapp-backend/internal/middleware"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/services"
)

type JobApplicationHandler struct {
	apps *services.JobApplicationService
}

func NewJobApplicationHandler(apps *services.JobApplicationService) *JobApplicationHandler {
	return &JobApplicationHandler{apps: apps}
}

func (h *JobApplicationHandler) Apply(c *fiber.Ctx) error {
	var req models.JobApplicationCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	app, err := h.apps.Apply(c.UserContext(), middleware.CurrentActor(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":         "Application submitted successfully",
		"job_application": app,
	})
}

func (h *JobApplicationHandler) Sent(c *fiber.Ctx) error {
	apps, err := h.apps.ListSent(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"job_applications": apps,
		"count":            len(apps),
	})
}

func (h *JobApplicationHandler) Received(c *fiber.Ctx) error {
	apps, err := h.apps.ListReceived(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"job_applications": apps,
		"count":            len(apps),
	})
}

func (h *JobApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	var req models.ApplicationStatusUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	app, err := h.apps.UpdateStatus(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":         "Application " + app.Status,
		"job_application": app,
	})
}
