package server

import (
	"errors"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/sheetcharts/sheetcharts/internal/auth"
	"github.com/sheetcharts/sheetcharts/internal/config"
	"github.com/sheetcharts/sheetcharts/internal/handlers"
	"github.com/sheetcharts/sheetcharts/internal/middleware"
	"github.com/sheetcharts/sheetcharts/internal/types"
	"gorm.io/gorm"
)

// New assembles the fiber application: global middleware, metrics, swagger
// and the /api route tree. Shared by cmd/server and the e2e tests.
func New(cfg *config.Config, db *gorm.DB, tokens *auth.Manager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowCredentials: true,
	}))

	// Prometheus metrics
	prometheus := fiberprometheus.New("sheetcharts")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Handlers
	authHandler := &handlers.AuthHandler{DB: db, Tokens: tokens, SecureCookie: cfg.CookieSecure}
	excelHandler := &handlers.ExcelHandler{DB: db}
	adminHandler := &handlers.AdminHandler{DB: db}

	protected := middleware.Protected(db, tokens)

	api := app.Group("/api")

	// User routes
	users := api.Group("/users")
	users.Post("/register", authHandler.Register)
	users.Post("/login", authHandler.Login)
	users.Post("/logout", protected, authHandler.Logout)

	// Excel routes (all require authentication)
	excel := api.Group("/excel", protected)
	excel.Post("/upload", excelHandler.Upload)
	excel.Get("/file", excelHandler.GetFile)
	excel.Get("/history", excelHandler.History)
	excel.Get("/data-for-charts", excelHandler.DataForCharts)
	excel.Get("/dashboard-stats", excelHandler.DashboardStats)
	excel.Get("/files/:fileId/projection", excelHandler.Projection)
	excel.Get("/files/:fileId", excelHandler.GetByID)
	excel.Delete("/files/:fileId", excelHandler.Delete)

	// Admin routes (authentication + admin role)
	admin := api.Group("/admin", protected, middleware.AdminOnly())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:userId", adminHandler.UserDetails)
	admin.Delete("/users/:userId", adminHandler.DeleteUser)
	admin.Get("/stats", adminHandler.Stats)
	admin.Get("/excel-files", adminHandler.AllFiles)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Resource not found",
		})
	})

	return app
}

// errorHandler maps errors escaping the handlers to the wire envelope
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var customErr *types.CustomError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &customErr):
		code = customErr.Code
		message = customErr.Message
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
