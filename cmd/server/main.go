package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/shubhammaske12000-sudo/Translator/adapters/gemini"
	"github.com/shubhammaske12000-sudo/Translator/adapters/media"
	"github.com/shubhammaske12000-sudo/Translator/domain/repositories"
	"github.com/shubhammaske12000-sudo/Translator/internal/api"
	"github.com/shubhammaske12000-sudo/Translator/internal/auth"
	"github.com/shubhammaske12000-sudo/Translator/internal/config"
	"github.com/shubhammaske12000-sudo/Translator/internal/websocket"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	godotenv.Load()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Translation gateway: real Gemini when credentials exist, mock otherwise
	var gateway repositories.TranslationGateway
	if cfg.GeminiAPIKey != "" {
		gateway, err = gemini.NewGateway(context.Background(), gemini.NewConfigFromEnv(), logger)
		if err != nil {
			logger.Fatal("Failed to create Gemini gateway", zap.Error(err))
		}
	} else {
		gateway = gemini.NewMockGateway(logger)
	}

	previews := media.NewMemoryPreviewStore()

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("Failed to create token issuer", zap.Error(err))
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub(gateway, previews, cfg, logger)
	go hub.Run()

	sweeper := websocket.NewStaleClientSweeper(hub, 30*time.Minute, logger)
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize API routes
	api.InitRoutes(e, hub, issuer, previews, cfg, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Translator server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
