package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sheetcharts/sheetcharts/internal/middleware"
	"github.com/sheetcharts/sheetcharts/internal/models"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// currentUser extracts the authenticated user placed in locals by the auth
// middleware.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(middleware.UserKey).(*models.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// pagination parses limit/skip query parameters, clamping limit to [1, 100]
// and skip to >= 0.
func pagination(c *fiber.Ctx) (limit, skip int) {
	limit = c.QueryInt("limit", defaultPageLimit)
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	skip = c.QueryInt("skip", 0)
	if skip < 0 {
		skip = 0
	}

	return limit, skip
}
