package gemini

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
	"github.com/shubhammaske12000-sudo/Translator/domain/repositories"
	"github.com/shubhammaske12000-sudo/Translator/internal/transcode"
)

// MockGateway is a deterministic TranslationGateway for development and
// testing without API credentials. Translations are canned and synthesized
// speech is a short tone so the playback path still carries real samples.
type MockGateway struct {
	logger *zap.Logger
}

var _ repositories.TranslationGateway = (*MockGateway)(nil)

// NewMockGateway creates a mock gateway instance.
func NewMockGateway(logger *zap.Logger) *MockGateway {
	logger.Info("Using mock translation gateway")
	return &MockGateway{logger: logger}
}

func (m *MockGateway) TranslateAudio(ctx context.Context, audioPayload, mimeType, targetLanguage string) (entities.TranslationResult, error) {
	select {
	case <-ctx.Done():
		return entities.TranslationResult{}, ctx.Err()
	case <-time.After(100 * time.Millisecond):
	}

	result := entities.TranslationResult{
		DetectedLanguage: "English",
		SourceText:       "Hello, this is a test recording.",
		TranslatedText:   fmt.Sprintf("[%s] Hello, this is a test recording.", targetLanguage),
	}
	m.logger.Info("Mock audio translation", zap.String("targetLanguage", targetLanguage))
	return result, nil
}

func (m *MockGateway) TranslateVideo(ctx context.Context, videoPayload, mimeType, targetLanguage string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(200 * time.Millisecond):
	}

	m.logger.Info("Mock video translation", zap.String("targetLanguage", targetLanguage))
	return fmt.Sprintf("[%s] This is the translated narration of the video.", targetLanguage), nil
}

func (m *MockGateway) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("Mock speech synthesis", zap.Int("textLength", len(text)))
	return transcode.Encode(tonePCM(440, time.Second))
}

// tonePCM renders a sine tone as 16-bit LE PCM at the transport sample rate.
func tonePCM(freqHz float64, d time.Duration) []byte {
	samples := int(float64(transcode.TargetSampleRate) * d.Seconds())
	data := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := math.Sin(2 * math.Pi * freqHz * float64(i) / float64(transcode.TargetSampleRate))
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(v*0.3*32767)))
	}
	return data
}
