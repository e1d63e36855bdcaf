package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sheetcharts/sheetcharts/internal/auth"
	"github.com/sheetcharts/sheetcharts/internal/models"
	"github.com/sheetcharts/sheetcharts/internal/services"
	"github.com/sheetcharts/sheetcharts/internal/types"
	"github.com/sheetcharts/sheetcharts/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	DB           *gorm.DB
	Tokens       *auth.Manager
	SecureCookie bool
}

type registerInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionOutput struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/users/register
// @Summary Register a new user
// @Description Create a user account and return a session token
// @Tags Users
// @Accept json
// @Produce json
// @Param body body registerInput true "Account details"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body registerInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid input")
	}

	if body.Name == "" || body.Email == "" || body.Password == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "All fields are required")
	}

	user, err := services.RegisterUser(h.DB, body.Name, body.Email, body.Password, body.Role)
	if err != nil {
		if errors.Is(err, types.ErrEmailExists) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "User already exists")
		}
		slog.Error("register failed", "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	token, err := h.Tokens.Generate(user)
	if err != nil {
		slog.Error("token generation failed", "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, "User registered successfully", sessionOutput{
		Token: token,
		User:  user,
	})
}

// Login handles POST /api/users/login
// @Summary Log in
// @Description Verify credentials, set the session cookie and return the token
// @Tags Users
// @Accept json
// @Produce json
// @Param body body loginInput true "Credentials"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid input")
	}

	if body.Email == "" || body.Password == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Email and password are required")
	}

	user, err := services.AuthenticateUser(h.DB, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, types.ErrInvalidCredentials) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email or password")
		}
		slog.Error("login failed", "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	token, err := h.Tokens.Generate(user)
	if err != nil {
		slog.Error("token generation failed", "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Now().Add(h.Tokens.TokenDuration()),
	})

	return utils.SuccessResponse(c, fiber.StatusOK, "Login successful", sessionOutput{
		Token: token,
		User:  user,
	})
}

// Logout handles POST /api/users/logout
// @Summary Log out
// @Description Clear the session cookie
// @Tags Users
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Security CookieAuth
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "",
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Now().Add(-time.Hour),
	})

	return utils.SuccessResponse(c, fiber.StatusOK, "Logged out successfully", nil)
}
