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
	"github.com/joshua-takyi/tryfield/internal/config"
	"github.com/joshua-takyi/tryfield/internal/connect"
	"github.com/joshua-takyi/tryfield/internal/container"
	"github.com/joshua-takyi/tryfield/internal/helpers"
	"github.com/joshua-takyi/tryfield/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting Tryfield API server", "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clients := container.Clients{}
	if clients.Supabase, err = connect.InitSupabase(cfg); err != nil {
		fatal(logger, "Failed to connect to Supabase", err)
	}
	if clients.MongoDB, err = connect.MongoDBConnect(ctx, cfg); err != nil {
		fatal(logger, "Failed to connect to MongoDB", err)
	}
	logger.Info("Connected to MongoDB successfully")
	if clients.Redis, err = connect.RedisConnect(ctx, cfg); err != nil {
		fatal(logger, "Failed to connect to Redis", err)
	}
	if cfg.StorageProvider == "cloudinary" {
		if clients.Cloudinary, err = connect.CloudinaryCredentials(cfg); err != nil {
			fatal(logger, "Failed to connect to Cloudinary", err)
		}
	}
	if clients.Firebase, err = connect.Firebase(ctx, cfg); err != nil {
		fatal(logger, "Failed to initialize Firebase", err)
	}

	tokens, err := helpers.NewTokenValidator(ctx, cfg.JWKSURL(), logger)
	if err != nil {
		fatal(logger, "Failed to load signing keys", err)
	}
	defer tokens.Close()

	app, err := container.NewContainer(ctx, cfg, logger, clients, tokens)
	if err != nil {
		fatal(logger, "Failed to build container", err)
	}
	if err := app.Mongo.EnsureIndexes(ctx); err != nil {
		fatal(logger, "Failed to create MongoDB indexes", err)
	}
	app.Start(ctx)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routes.SetupRoutes(app),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal(logger, "Server failed to start", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := clients.Redis.Close(); err != nil {
		logger.Error("Error closing Redis", "error", err)
	}
	if err := connect.MongoDBDisconnect(clients.MongoDB); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}
	logger.Info("Server exited")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
