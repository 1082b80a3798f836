package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hanapp-ph/hanapp-backend/internal/services"
)

const (
	localClaims = "claims"
	localUserID = "user_id"
	localRole   = "role"
)

// TokenParser validates a bearer token
type TokenParser interface {
	ParseToken(ctx context.Context, raw string) (*services.Claims, error)
}

// RequireAuth rejects requests without a valid, unrevoked bearer token
func RequireAuth(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return services.Unauthorized("missing bearer token")
		}

		claims, err := parser.ParseToken(c.UserContext(), strings.TrimSpace(token))
		if err != nil {
			return err
		}

		c.Locals(localClaims, claims)
		c.Locals(localUserID, claims.Subject)
		c.Locals(localRole, claims.Role)
		return c.Next()
	}
}

// Claims returns the token claims set by RequireAuth
func Claims(c *fiber.Ctx) *services.Claims {
	claims, _ := c.Locals(localClaims).(*services.Claims)
	return claims
}

// CurrentActor returns the authenticated caller
func CurrentActor(c *fiber.Ctx) services.Actor {
	id, _ := c.Locals(localUserID).(string)
	role, _ := c.Locals(localRole).(string)
	return services.Actor{ID: id, Role: role}
}
