package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sheetcharts/sheetcharts/internal/auth"
	"github.com/sheetcharts/sheetcharts/internal/models"
	"github.com/sheetcharts/sheetcharts/internal/services"
	"github.com/sheetcharts/sheetcharts/internal/types"
	"gorm.io/gorm"
)

// UserKey is the ctx locals key holding the authenticated *models.User.
const UserKey = "user"

// Protected validates the session token (cookie "token" or Authorization
// bearer) and loads the account from the database, so tokens of deleted users
// stop working immediately. The user is stored in ctx locals.
func Protected(db *gorm.DB, tokens *auth.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Authentication required",
			}
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Invalid or expired token",
			}
		}

		user, err := services.GetUserByID(db, claims.UserID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return &types.CustomError{
					Code:    fiber.StatusUnauthorized,
					Message: "Invalid or expired token",
				}
			}
			return err
		}

		c.Locals(UserKey, user)
		return c.Next()
	}
}

// AdminOnly rejects requests whose authenticated user does not hold the admin
// role. Must run after Protected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(UserKey).(*models.User)
		if !ok || !user.IsAdmin() {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Access denied. Admin privileges required.",
			}
		}
		return c.Next()
	}
}

// extractToken reads the session token from the auth cookie or, failing that,
// from a bearer Authorization header.
func extractToken(c *fiber.Ctx) string {
	if cookie := c.Cookies("token"); cookie != "" {
		return cookie
	}

	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}
