package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sheetcharts/sheetcharts/internal/auth"
	"github.com/sheetcharts/sheetcharts/internal/config"
	"github.com/sheetcharts/sheetcharts/internal/database"
	"github.com/sheetcharts/sheetcharts/internal/logging"
	"github.com/sheetcharts/sheetcharts/internal/server"

	_ "github.com/sheetcharts/sheetcharts/docs/api" // Swagger docs
)

// @title SheetCharts API
// @version 1.0.0
// @description Spreadsheet upload and chart projection service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/sheetcharts/sheetcharts

// @license.name MIT

// @host localhost:4000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token

func main() {
	// Load .env if present, environment takes precedence
	_ = godotenv.Load()

	logging.Setup()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		slog.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiry())

	app := server.New(cfg, db, tokens)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		slog.Info("gracefully shutting down")
		_ = app.Shutdown()
	}()

	slog.Info("starting server", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("failed to start server", "err", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
