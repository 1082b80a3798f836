package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hanapp-ph/hanapp-backend/internal/handlers"
	"github.com/hanapp-ph/hanapp-backend/internal/metrics"
)

// Handlers bundles everything SetupRoutes mounts
type Handlers struct {
	Auth         *handlers.AuthHandler
	Messages     *handlers.MessageHandler
	Requests     *handlers.ServiceRequestHandler
	Applications *handlers.JobApplicationHandler
	Listings     *handlers.ListingHandler
	Catalog      *handlers.CatalogHandler
	Bookings     *handlers.BookingHandler
	Reviews      *handlers.ReviewHandler
	Health       *handlers.HealthHandler
	Webhook      *handlers.WebhookHandler

	// RequireAuth guards bearer-token routes
	RequireAuth fiber.Handler
	// TwilioGuard checks webhook signatures
	TwilioGuard fiber.Handler
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, h Handlers) {
	auth := h.RequireAuth

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to HanApp-PH Backend!",
			"version": h.Health.Version,
			"endpoints": fiber.Map{
				"health":  "/health",
				"metrics": "/metrics",
				"user":    "/user",
			},
		})
	})
	app.Get("/health", h.Health.Check)
	app.Get("/metrics", metrics.Handler())

	// Account and profile routes
	user := app.Group("/user")
	user.Post("/send-otp", h.Auth.SendOTP)
	user.Post("/verify-otp", h.Auth.VerifyOTP)
	user.Post("/signup", h.Auth.Signup)
	user.Post("/login", h.Auth.Login)
	user.Post("/logout", auth, h.Auth.Logout)
	user.Get("/profile/:id", auth, h.Auth.GetProfile)
	user.Patch("/profile/:id", auth, h.Auth.UpdateProfile)

	// Service requests are all behind auth
	requests := app.Group("/service-requests", auth)
	requests.Post("/", h.Requests.Create)
	requests.Get("/", h.Requests.List)
	requests.Get("/mine", h.Requests.ListMine)
	requests.Get("/:id", h.Requests.Get)
	requests.Patch("/:id", h.Requests.Update)
	requests.Delete("/:id", h.Requests.Delete)

	applications := app.Group("/job-applications", auth)
	applications.Post("/", h.Applications.Apply)
	applications.Get("/sent", h.Applications.Sent)
	applications.Get("/received", h.Applications.Received)
	applications.Patch("/:id/status", h.Applications.UpdateStatus)

	// Listings, services and reviews mix public reads with protected writes,
	// so auth is attached per route
	listings := app.Group("/service-listings")
	listings.Get("/", h.Listings.List)
	listings.Get("/mine", auth, h.Listings.ListMine)
	listings.Get("/:id", h.Listings.Get)
	listings.Post("/", auth, h.Listings.Create)
	listings.Patch("/:id", auth, h.Listings.Update)
	listings.Delete("/:id", auth, h.Listings.Delete)

	catalog := app.Group("/services")
	catalog.Get("/provider/:id", h.Catalog.ListByProvider)
	catalog.Get("/listing/:id", h.Catalog.ListByListing)
	catalog.Get("/:id", h.Catalog.Get)
	catalog.Post("/", auth, h.Catalog.Create)
	catalog.Patch("/:id", auth, h.Catalog.Update)
	catalog.Delete("/:id", auth, h.Catalog.Delete)

	bookings := app.Group("/bookings", auth)
	bookings.Post("/", h.Bookings.CreateBooking)
	bookings.Get("/client", h.Bookings.GetClientBookings)
	bookings.Get("/provider", h.Bookings.GetProviderBookings)
	bookings.Get("/:id", h.Bookings.GetBooking)
	bookings.Patch("/:id/status", h.Bookings.UpdateStatus)

	reviews := app.Group("/reviews")
	reviews.Get("/service/:id", h.Reviews.ListByService)
	reviews.Get("/provider/:id", h.Reviews.ListByProvider)
	reviews.Post("/", auth, h.Reviews.Create)
	reviews.Patch("/:id", auth, h.Reviews.Update)
	reviews.Post("/:id", auth, h.Reviews.Reply)

	messages := app.Group("/messages", auth)
	messages.Post("/", h.Messages.Send)
	messages.Get("/threads", h.Messages.Threads)
	messages.Get("/:partnerId", h.Messages.Conversation)

	// Twilio delivery callbacks
	app.Post("/webhook/sms-status", h.TwilioGuard, h.Webhook.SMSStatus)
}
