package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is anything the health check can probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	Version string
	checks  map[string]Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		Version: version,
		checks:  checks,
	}
}

// Check returns 503 when any dependency fails its ping
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := fiber.StatusOK
	deps := fiber.Map{}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			deps[name] = "error: " + err.Error()
			status = "unhealthy"
			code = fiber.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"service":  "HanApp-PH Backend",
		"version":  h.Version,
		"services": deps,
	})
}
