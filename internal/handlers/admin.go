package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/sheetcharts/sheetcharts/internal/services"
	"github.com/sheetcharts/sheetcharts/internal/types"
	"github.com/sheetcharts/sheetcharts/internal/utils"
	"gorm.io/gorm"
)

// AdminHandler handles admin-only user and reporting routes
type AdminHandler struct {
	DB *gorm.DB
}

// ListUsers handles GET /api/admin/users
// @Summary List users
// @Description Get paginated users ordered by creation time descending
// @Tags Admin
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param skip query int false "Offset"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, skip := pagination(c)

	users, total, hasMore, err := services.ListUsers(h.DB, limit, skip)
	if err != nil {
		slog.Error("user listing failed", "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Users retrieved successfully", fiber.Map{
		"users":      users,
		"totalUsers": total,
		"hasMore":    hasMore,
	})
}

// UserDetails handles GET /api/admin/users/:userId
// @Summary Get user details
// @Description Get one user together with their most recent spreadsheet
// @Tags Admin
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users/{userId} [get]
func (h *AdminHandler) UserDetails(c *fiber.Ctx) error {
	userID := c.Params("userId")

	user, err := services.GetUserByID(h.DB, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return utils.NotFoundResponse(c, "User not found")
		}
		slog.Error("user lookup failed", "user", userID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	data := fiber.Map{"user": user}

	rec, err := services.LatestRecordByOwner(h.DB, userID)
	switch {
	case err == nil:
		table, decErr := services.DecodeTable(rec)
		if decErr != nil {
			slog.Error("stored table decode failed", "record", rec.ID, "err", decErr)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
		}
		data["excelFile"] = services.RecordDetail{
			ID:         rec.ID,
			FileName:   rec.FileName,
			ExcelData:  table,
			UploadTime: rec.UploadTime,
		}
	case errors.Is(err, types.ErrNotFound):
		data["excelFile"] = nil
	default:
		slog.Error("latest record lookup failed", "owner", userID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "User details retrieved successfully", data)
}

// DeleteUser handles DELETE /api/admin/users/:userId
// @Summary Delete a user
// @Description Delete an account and cascade to all spreadsheets it owns; self-deletion is rejected
// @Tags Admin
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users/{userId} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	admin, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required")
	}

	userID := c.Params("userId")
	if err := services.DeleteUser(h.DB, userID, admin.ID); err != nil {
		switch {
		case errors.Is(err, types.ErrSelfDelete):
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cannot delete your own account")
		case errors.Is(err, types.ErrNotFound):
			return utils.NotFoundResponse(c, "User not found")
		}
		slog.Error("user delete failed", "user", userID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "User deleted successfully", nil)
}

// Stats handles GET /api/admin/stats
// @Summary Get admin dashboard stats
// @Description Get aggregate usage statistics across all users and files
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := services.DashboardStats(h.DB)
	if err != nil {
		slog.Error("admin stats failed", "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Admin dashboard stats retrieved successfully", stats)
}

// AllFiles handles GET /api/admin/excel-files
// @Summary List all files
// @Description Get paginated spreadsheet summaries across every owner
// @Tags Admin
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param skip query int false "Offset"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/excel-files [get]
func (h *AdminHandler) AllFiles(c *fiber.Ctx) error {
	limit, skip := pagination(c)

	files, total, hasMore, err := services.ListAllRecords(h.DB, limit, skip)
	if err != nil {
		slog.Error("file listing failed", "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "All Excel files retrieved successfully", fiber.Map{
		"excelFiles": files,
		"totalFiles": total,
		"hasMore":    hasMore,
	})
}
