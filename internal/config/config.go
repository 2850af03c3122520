// Package config loads server configuration from the environment and
// holds the language catalog offered to clients.
package config

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
)

const (
	defaultPort                = "8080"
	defaultMaxUploadMB         = 50
	defaultMaxVideoDurationSec = 300
	defaultSampleRate          = 24000
)

// Config holds server configuration.
// Required fields:
// - JWTSecret: signing secret for client session tokens
// Optional fields with defaults:
// - Port: HTTP listen port
// - MaxUploadMB: largest accepted video upload
// - MaxVideoDurationSec: longest accepted video clip
// - SampleRate: PCM sample rate of synthesized speech
type Config struct {
	Port                string
	JWTSecret           string
	GeminiAPIKey        string
	MaxUploadMB         int
	MaxVideoDurationSec int
	SampleRate          int
}

// Load reads configuration from environment variables, applying
// defaults and logging each one it falls back to.
func Load(logger *zap.Logger) (Config, error) {
	config := Config{
		Port:                os.Getenv("PORT"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		MaxUploadMB:         intFromEnv("MAX_UPLOAD_MB", defaultMaxUploadMB),
		MaxVideoDurationSec: intFromEnv("MAX_VIDEO_DURATION_SEC", defaultMaxVideoDurationSec),
		SampleRate:          intFromEnv("AUDIO_SAMPLE_RATE", defaultSampleRate),
	}

	if config.Port == "" {
		config.Port = defaultPort
		logger.Info("Using default port", zap.String("port", config.Port))
	}
	if config.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if config.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, translation gateway will run in mock mode")
	}
	if config.MaxUploadMB <= 0 {
		return Config{}, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", config.MaxUploadMB)
	}
	if config.MaxVideoDurationSec <= 0 {
		return Config{}, fmt.Errorf("MAX_VIDEO_DURATION_SEC must be positive, got %d", config.MaxVideoDurationSec)
	}
	if config.SampleRate <= 0 {
		return Config{}, fmt.Errorf("AUDIO_SAMPLE_RATE must be positive, got %d", config.SampleRate)
	}

	return config, nil
}

// MaxUploadBytes converts the upload limit to bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func intFromEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
