package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/printer-admin/internal/config"
	"github.com/joshua-takyi/printer-admin/internal/connect"
	"github.com/joshua-takyi/printer-admin/internal/container"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/joshua-takyi/printer-admin/internal/notify"
	"github.com/joshua-takyi/printer-admin/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting printer admin server", "environment", cfg.Environment)

	// Initialize database connections
	supaClient, err := connect.InitSupabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to Supabase", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to Supabase successfully")

	mongoClient, err := connect.MongoDBConnect(cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}

	cld, err := connect.CloudinaryCredentials(cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to Cloudinary", "error", err)
		os.Exit(1)
	}

	telegram, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
	if err != nil {
		logger.Error("Failed to create Telegram notifier", "error", err)
		os.Exit(1)
	}

	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	feed, closeFeed, err := connect.RealtimeFeed(feedCtx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open realtime feed", "error", err)
		os.Exit(1)
	}

	// Initialize dependency container
	appContainer := container.NewContainer(cfg, logger, supaClient, mongoClient, cld, telegram, feed)

	if mongoClient != nil {
		audit := models.MongodbNewRepo(mongoClient, "")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := audit.EnsureAuditIndexes(ctx); err != nil {
			logger.Warn("Failed to create audit indexes", "error", err)
		}
		cancel()
	}

	// Initial load; collections that fail stay empty until the next change event or refresh.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := appContainer.DashboardService.LoadAll(loadCtx); err != nil {
		logger.Warn("Initial dashboard load incomplete", "error", err)
	}
	cancelLoad()

	if err := appContainer.Listener.Open(feedCtx); err != nil {
		logger.Error("Failed to subscribe to change feed", "error", err)
		os.Exit(1)
	}
	logger.Info("Listening for table changes", "realtime", cfg.RealtimeEnabled)

	// Setup routes
	router := routes.SetupRoutes(appContainer)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Stop change handling before the feed and connections go away
	if err := appContainer.Listener.Close(); err != nil {
		logger.Error("Error closing change listener", "error", err)
	}
	if err := closeFeed(); err != nil {
		logger.Error("Error closing realtime feed", "error", err)
	}
	appContainer.TokenValidator.Close()

	// Close database connections
	if err := connect.MongoDBDisconnect(mongoClient); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.LogLevel)
	var handler slog.Handler

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
