package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hanapp-ph/hanapp-backend/internal/middleware"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/services"
)

// BookingHandler handles booking-related requests
type BookingHandler struct {
	bookings *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// CreateBooking handles creating a new booking
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	var req models.BookingCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	booking, err := h.bookings.Create(c.UserContext(), middleware.CurrentActor(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

// GetBooking retrieves booking by ID
func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	booking, err := h.bookings.Get(c.UserContext(), middleware.CurrentActor(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(booking)
}

// GetClientBookings lists bookings the caller made
func (h *BookingHandler) GetClientBookings(c *fiber.Ctx) error {
	bookings, err := h.bookings.ListAsClient(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetProviderBookings lists bookings made with the caller
func (h *BookingHandler) GetProviderBookings(c *fiber.Ctx) error {
	bookings, err := h.bookings.ListAsProvider(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// UpdateStatus handles PATCH /bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	var req models.BookingStatusUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	booking, err := h.bookings.UpdateStatus(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Booking " + booking.Status,
		"booking": booking,
	})
}
