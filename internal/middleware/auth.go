package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/nushka/internal/config"
	"github.com/example/nushka/internal/models"
	"github.com/example/nushka/internal/utils"
)

const (
	userContextKey = "currentUserID"
	roleContextKey = "currentUserRole"

	// GuestTokenHeader carries the client-held cart token for guests.
	GuestTokenHeader = "X-Guest-Token"
)

// AuthMiddleware validates JWT tokens and loads the authenticated user
// ID and role into context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := bearerToken(c, cfg)
		if err != nil {
			return err
		}

		c.Locals(userContextKey, userID)
		c.Locals(roleContextKey, role)
		return c.Next()
	}
}

// OptionalAuthMiddleware loads the user from a bearer token when one is
// present but lets anonymous requests through. Used on cart routes,
// which serve both guests and signed-in users.
func OptionalAuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Next()
		}

		userID, role, err := bearerToken(c, cfg)
		if err != nil {
			return err
		}

		c.Locals(userContextKey, userID)
		c.Locals(roleContextKey, role)
		return c.Next()
	}
}

// AdminMiddleware rejects requests whose token does not carry the admin
// role. Must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(roleContextKey).(string)
		if role != models.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx, cfg *config.Config) (uuid.UUID, string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return uuid.Nil, "", fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return uuid.Nil, "", fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
	}

	userID, role, err := utils.ParseToken(cfg.JWTSecret, parts[1])
	if err != nil {
		return uuid.Nil, "", fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	return userID, role, nil
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}

// GetGuestToken returns the guest cart token header, if any.
func GetGuestToken(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get(GuestTokenHeader))
}
