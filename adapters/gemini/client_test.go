package gemini

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/shubhammaske12000-sudo/Translator/internal/transcode"
)

func TestConfigFromEnv(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// Without an API key the gateway must refuse to start.
	os.Unsetenv("GEMINI_API_KEY")
	config := NewConfigFromEnv()
	if _, err := NewGateway(context.Background(), config, logger); err == nil {
		t.Error("Expected error when API key is not set")
	}

	os.Setenv("GEMINI_API_KEY", "test-api-key")
	os.Setenv("GEMINI_TIMEOUT_SECONDS", "15")
	defer os.Unsetenv("GEMINI_API_KEY")
	defer os.Unsetenv("GEMINI_TIMEOUT_SECONDS")

	config = NewConfigFromEnv()
	if config.APIKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", config.APIKey)
	}
	if config.TimeoutSeconds != 15 {
		t.Errorf("Expected timeout 15, got %d", config.TimeoutSeconds)
	}

	gateway, err := NewGateway(context.Background(), config, logger)
	if err != nil {
		t.Fatalf("Failed to create gateway: %v", err)
	}
	if gateway.translationModel != defaultTranslationModel {
		t.Errorf("Expected default translation model '%s', got '%s'", defaultTranslationModel, gateway.translationModel)
	}
	if gateway.voiceName != defaultVoiceName {
		t.Errorf("Expected default voice '%s', got '%s'", defaultVoiceName, gateway.voiceName)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(Config{}); err == nil {
		t.Error("Expected error for empty config")
	}
	if err := ValidateConfig(Config{APIKey: "key", TimeoutSeconds: -1}); err == nil {
		t.Error("Expected error for negative timeout")
	}
	if err := ValidateConfig(Config{APIKey: "key"}); err != nil {
		t.Errorf("Unexpected error for valid config: %v", err)
	}
}

func TestMockGatewayTranslateAudio(t *testing.T) {
	mock := NewMockGateway(zaptest.NewLogger(t))

	result, err := mock.TranslateAudio(context.Background(), "cGF5bG9hZA==", "audio/webm", "Hindi")
	if err != nil {
		t.Fatalf("TranslateAudio failed: %v", err)
	}
	if result.DetectedLanguage == "" || result.SourceText == "" {
		t.Error("Expected detected language and source text to be populated")
	}
	if !strings.Contains(result.TranslatedText, "Hindi") {
		t.Errorf("Expected translation to reference target language, got '%s'", result.TranslatedText)
	}
}

func TestMockGatewaySynthesizesPlayableAudio(t *testing.T) {
	mock := NewMockGateway(zaptest.NewLogger(t))

	payload, err := mock.SynthesizeSpeech(context.Background(), "hello")
	if err != nil {
		t.Fatalf("SynthesizeSpeech failed: %v", err)
	}

	buffer, err := transcode.Decode(payload, transcode.TargetSampleRate)
	if err != nil {
		t.Fatalf("Mock speech is not decodable: %v", err)
	}
	if buffer.Duration() < 900*time.Millisecond || buffer.Duration() > 1100*time.Millisecond {
		t.Errorf("Expected roughly one second of speech, got %v", buffer.Duration())
	}
}

func TestMockGatewayHonorsCancellation(t *testing.T) {
	mock := NewMockGateway(zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mock.TranslateVideo(ctx, "cGF5bG9hZA==", "video/mp4", "English"); err == nil {
		t.Error("Expected cancellation error")
	}
}
