package handlers

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/sheetcharts/sheetcharts/internal/services"
	"github.com/sheetcharts/sheetcharts/internal/tabular"
	"github.com/sheetcharts/sheetcharts/internal/types"
	"github.com/sheetcharts/sheetcharts/internal/utils"
	"gorm.io/gorm"
)

// ExcelHandler handles spreadsheet upload, retrieval and projection routes
type ExcelHandler struct {
	DB *gorm.DB
}

// Upload handles POST /api/excel/upload
// @Summary Upload a spreadsheet
// @Description Parse an uploaded spreadsheet and store it under (owner, file name); re-uploading the same name replaces the stored table
// @Tags Excel
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet file"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /excel/upload [post]
func (h *ExcelHandler) Upload(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No file uploaded")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No file uploaded")
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		slog.Error("upload read failed", "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	// The client name is the storage key; Base strips any path a hostile
	// Content-Disposition could carry.
	fileName := filepath.Base(fileHeader.Filename)

	summary, err := services.Ingest(h.DB, user.ID, fileName, raw)
	if err != nil {
		var vErr *types.ValidationError
		if errors.As(err, &vErr) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, uploadMessage(vErr))
		}
		slog.Error("upload ingest failed", "owner", user.ID, "file", fileName, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, "Excel file uploaded successfully", summary)
}

// uploadMessage maps ingestion validation failures to the client-facing texts.
func uploadMessage(err *types.ValidationError) string {
	switch err.Message {
	case "file required":
		return "No file uploaded"
	case "unparseable file":
		return "Failed to parse Excel file. Please upload a valid Excel file."
	case "no data":
		return "Excel data is required"
	}
	return err.Message
}

// GetFile handles GET /api/excel/file
// @Summary Get current file summary
// @Description Get the most recently uploaded file's summary for the authenticated user
// @Tags Excel
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /excel/file [get]
func (h *ExcelHandler) GetFile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required")
	}

	rec, err := services.LatestRecordByOwner(h.DB, user.ID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return utils.NotFoundResponse(c, "No Excel file found for this user")
		}
		slog.Error("latest record lookup failed", "owner", user.ID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Excel file retrieved successfully", services.RecordSummary{
		ID:         rec.ID,
		FileName:   rec.FileName,
		UploadTime: rec.UploadTime,
		CreatedAt:  rec.CreatedAt,
	})
}

// History handles GET /api/excel/history
// @Summary Get upload history
// @Description Get paginated upload summaries for the authenticated user, newest first
// @Tags Excel
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param skip query int false "Offset"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /excel/history [get]
func (h *ExcelHandler) History(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required")
	}

	limit, skip := pagination(c)
	items, total, hasMore, err := services.ListRecordsByOwner(h.DB, user.ID, limit, skip)
	if err != nil {
		slog.Error("history listing failed", "owner", user.ID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Upload history retrieved successfully", fiber.Map{
		"items":      items,
		"totalCount": total,
		"hasMore":    hasMore,
	})
}

// DataForCharts handles GET /api/excel/data-for-charts
// @Summary Get full table for chart creation
// @Description Get the most recent record including the table body
// @Tags Excel
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /excel/data-for-charts [get]
func (h *ExcelHandler) DataForCharts(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required")
	}

	rec, err := services.LatestRecordByOwner(h.DB, user.ID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return utils.NotFoundResponse(c, "No Excel file found for this user")
		}
		slog.Error("latest record lookup failed", "owner", user.ID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	table, err := services.DecodeTable(rec)
	if err != nil {
		slog.Error("stored table decode failed", "record", rec.ID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Excel data retrieved for chart creation", services.RecordDetail{
		ID:         rec.ID,
		FileName:   rec.FileName,
		ExcelData:  table,
		UploadTime: rec.UploadTime,
	})
}

// GetByID handles GET /api/excel/files/:fileId
// @Summary Get a file by id
// @Description Get one record including the table body; records of other users read as not found
// @Tags Excel
// @Produce json
// @Param fileId path string true "Record ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /excel/files/{fileId} [get]
func (h *ExcelHandler) GetByID(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required")
	}

	fileID := c.Params("fileId")
	rec, err := services.GetRecordByID(h.DB, fileID, user.ID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return utils.NotFoundResponse(c, "Excel file not found")
		}
		slog.Error("record lookup failed", "record", fileID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	table, err := services.DecodeTable(rec)
	if err != nil {
		slog.Error("stored table decode failed", "record", rec.ID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Excel file retrieved successfully", services.RecordDetail{
		ID:         rec.ID,
		FileName:   rec.FileName,
		ExcelData:  table,
		UploadTime: rec.UploadTime,
	})
}

// Delete handles DELETE /api/excel/files/:fileId
// @Summary Delete a file
// @Description Delete one record owned by the authenticated user
// @Tags Excel
// @Produce json
// @Param fileId path string true "Record ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /excel/files/{fileId} [delete]
func (h *ExcelHandler) Delete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required")
	}

	fileID := c.Params("fileId")
	if err := services.DeleteRecordByID(h.DB, fileID, user.ID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return utils.NotFoundResponse(c, "Excel file not found")
		}
		slog.Error("record delete failed", "record", fileID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Excel file deleted successfully", nil)
}

// Projection handles GET /api/excel/files/:fileId/projection
// @Summary Project two columns into a chart series
// @Description Derive (label, value) pairs from a stored table by selecting a category and a value column by header name
// @Tags Excel
// @Produce json
// @Param fileId path string true "Record ID"
// @Param category query string true "Category column header"
// @Param value query string true "Value column header"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /excel/files/{fileId}/projection [get]
func (h *ExcelHandler) Projection(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required")
	}

	category := c.Query("category")
	value := c.Query("value")
	if category == "" || value == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Category and value columns are required")
	}

	fileID := c.Params("fileId")
	rec, err := services.GetRecordByID(h.DB, fileID, user.ID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return utils.NotFoundResponse(c, "Excel file not found")
		}
		slog.Error("record lookup failed", "record", fileID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	table, err := services.DecodeTable(rec)
	if err != nil {
		slog.Error("stored table decode failed", "record", rec.ID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	points, err := tabular.Project(table, category, value)
	if err != nil {
		if errors.Is(err, tabular.ErrUnknownColumn) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown column")
		}
		slog.Error("projection failed", "record", rec.ID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Projection computed successfully", fiber.Map{
		"fileName": rec.FileName,
		"category": category,
		"value":    value,
		"points":   points,
	})
}

// DashboardStats handles GET /api/excel/dashboard-stats
// @Summary Get user dashboard stats
// @Description Report whether the user has a current file and which one
// @Tags Excel
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /excel/dashboard-stats [get]
func (h *ExcelHandler) DashboardStats(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required")
	}

	stats, err := services.OwnerDashboardStats(h.DB, user.ID)
	if err != nil {
		slog.Error("dashboard stats failed", "owner", user.ID, "err", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Dashboard stats retrieved successfully", stats)
}
