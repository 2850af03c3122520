package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shubhammaske12000-sudo/Translator/adapters/media"
	"github.com/shubhammaske12000-sudo/Translator/internal/auth"
	"github.com/shubhammaske12000-sudo/Translator/internal/config"
	"github.com/shubhammaske12000-sudo/Translator/internal/websocket"
)

// InitRoutes initializes all API routes
func InitRoutes(
	e *echo.Echo,
	hub *websocket.Hub,
	issuer *auth.TokenIssuer,
	previews *media.MemoryPreviewStore,
	cfg config.Config,
	logger *zap.Logger,
) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "translator-server",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/sessions", func(c echo.Context) error {
		return createSession(c, issuer, logger)
	})

	v1.GET("/languages", getLanguages)

	v1.GET("/limits", func(c echo.Context) error {
		return c.JSON(http.StatusOK, LimitsResponse{
			MaxUploadMB:         cfg.MaxUploadMB,
			MaxVideoDurationSec: cfg.MaxVideoDurationSec,
			SampleRate:          cfg.SampleRate,
		})
	})

	v1.GET("/previews/:id", func(c echo.Context) error {
		return getPreview(c, previews)
	})

	// WebSocket endpoint with JWT validation
	e.GET("/ws", func(c echo.Context) error {
		return websocketWithAuth(hub, c, issuer, logger)
	})
}

// createSession issues a session token for a new browser client.
func createSession(c echo.Context, issuer *auth.TokenIssuer, logger *zap.Logger) error {
	clientID := uuid.New().String()

	token, err := issuer.GenerateSessionToken(clientID)
	if err != nil {
		logger.Error("Failed to generate session token",
			zap.String("client_id", clientID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate session token",
		})
	}

	logger.Info("Session created", zap.String("client_id", clientID))

	return c.JSON(http.StatusOK, SessionResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		ClientID:  clientID,
	})
}

func getLanguages(c echo.Context) error {
	response := LanguagesResponse{DefaultCode: config.DefaultVoiceTarget().Code}
	for _, lang := range config.VoiceLanguages() {
		response.Voice = append(response.Voice, LanguageEntry{Code: lang.Code, Name: lang.Name, NativeName: lang.NativeName})
	}
	for _, lang := range config.DubbingLanguages() {
		response.Dubbing = append(response.Dubbing, LanguageEntry{Code: lang.Code, Name: lang.Name, NativeName: lang.NativeName})
	}
	return c.JSON(http.StatusOK, response)
}

// getPreview streams a stored video preview back to the client.
func getPreview(c echo.Context, previews *media.MemoryPreviewStore) error {
	url := "mem://preview/" + c.Param("id")

	data, mimeType, err := previews.Get(url)
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "preview_not_found",
			Message: "Preview has been released or never existed",
		})
	}
	return c.Blob(http.StatusOK, mimeType, data)
}

// websocketWithAuth handles WebSocket connections with JWT authentication
func websocketWithAuth(hub *websocket.Hub, c echo.Context, issuer *auth.TokenIssuer, logger *zap.Logger) error {
	// Browsers cannot set headers on websocket dials, so accept the
	// token from either the Authorization header or a query parameter.
	var token string
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if token == "" {
		token = c.QueryParam("token")
	}

	if token == "" {
		logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "Session token is required",
		})
	}

	claims, err := issuer.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired session token",
		})
	}

	if claims.ClientID == "" {
		logger.Error("WebSocket connection rejected: missing client ID in token")
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_token_claims",
			Message: "Client ID not found in token",
		})
	}

	logger.Info("WebSocket connection authenticated", zap.String("client_id", claims.ClientID))

	return websocket.HandleWebSocketWithAuth(hub, c, claims.ClientID, logger)
}
