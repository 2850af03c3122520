// Package gemini implements the remote translation gateway on Google's
// Gemini API: one multimodal model detects, transcribes and translates
// captured audio or video, and a TTS model synthesizes speech.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
	"github.com/shubhammaske12000-sudo/Translator/domain/repositories"
	"github.com/shubhammaske12000-sudo/Translator/internal/transcode"
)

const (
	defaultTranslationModel = "gemini-2.5-flash"
	defaultTTSModel         = "gemini-2.5-flash-preview-tts"
	defaultVoiceName        = "Kore"
	defaultTimeoutSeconds   = 60
)

// Config holds configuration for the Gemini gateway.
// Required fields:
// - APIKey: Google AI API key
// Optional fields with defaults:
// - TranslationModel: multimodal model for transcription and translation
// - TTSModel: speech-synthesis model
// - VoiceName: prebuilt TTS voice
// - TimeoutSeconds: per-call timeout
type Config struct {
	APIKey           string
	TranslationModel string
	TTSModel         string
	VoiceName        string
	TimeoutSeconds   int
}

// NewConfigFromEnv creates a Config from environment variables.
func NewConfigFromEnv() Config {
	config := Config{
		APIKey:           os.Getenv("GEMINI_API_KEY"),
		TranslationModel: os.Getenv("GEMINI_TRANSLATION_MODEL"),
		TTSModel:         os.Getenv("GEMINI_TTS_MODEL"),
		VoiceName:        os.Getenv("GEMINI_TTS_VOICE"),
	}

	if timeoutStr := os.Getenv("GEMINI_TIMEOUT_SECONDS"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			config.TimeoutSeconds = timeout
		}
	}

	return config
}

// ValidateConfig validates the gateway configuration.
func ValidateConfig(config Config) error {
	if config.APIKey == "" {
		return fmt.Errorf("gemini API key is required")
	}
	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}
	return nil
}

// Gateway implements the TranslationGateway interface using the Gemini API.
type Gateway struct {
	client           *genai.Client
	logger           *zap.Logger
	translationModel string
	ttsModel         string
	voiceName        string
	timeout          time.Duration
}

var _ repositories.TranslationGateway = (*Gateway)(nil)

// NewGateway creates a new Gemini gateway instance.
func NewGateway(ctx context.Context, config Config, logger *zap.Logger) (*Gateway, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	translationModel := config.TranslationModel
	if translationModel == "" {
		translationModel = defaultTranslationModel
		logger.Info("Using default translation model", zap.String("model", translationModel))
	}

	ttsModel := config.TTSModel
	if ttsModel == "" {
		ttsModel = defaultTTSModel
		logger.Info("Using default TTS model", zap.String("model", ttsModel))
	}

	voiceName := config.VoiceName
	if voiceName == "" {
		voiceName = defaultVoiceName
		logger.Info("Using default TTS voice", zap.String("voice", voiceName))
	}

	timeoutSeconds := config.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = defaultTimeoutSeconds
		logger.Info("Using default timeout", zap.Int("timeoutSeconds", timeoutSeconds))
	}

	return &Gateway{
		client:           client,
		logger:           logger,
		translationModel: translationModel,
		ttsModel:         ttsModel,
		voiceName:        voiceName,
		timeout:          time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// TranslateAudio detects the spoken language, transcribes the clip and
// translates it into the target language.
func (g *Gateway) TranslateAudio(ctx context.Context, audioPayload, mimeType, targetLanguage string) (entities.TranslationResult, error) {
	data, err := transcode.DecodeBytes(audioPayload)
	if err != nil {
		return entities.TranslationResult{}, err
	}

	prompt := fmt.Sprintf(`You are an expert simultaneous translator.
1. Listen to the provided audio carefully.
2. Detect the language spoken automatically.
3. Transcribe the audio exactly as spoken (sourceText).
4. Translate the text into %s (translatedText).

Return the result strictly in JSON format.`, targetLanguage)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"detectedLanguage": {Type: genai.TypeString, Description: "Name of the language detected in the audio"},
				"sourceText":       {Type: genai.TypeString, Description: "Transcription of original audio"},
				"translatedText":   {Type: genai.TypeString, Description: "Translation in target language"},
			},
			Required: []string{"detectedLanguage", "sourceText", "translatedText"},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.client.Models.GenerateContent(ctx, g.translationModel, contents, config)
	if err != nil {
		return entities.TranslationResult{}, &entities.TransportError{Op: "translateAudio", Err: err}
	}

	jsonText := collectText(response)
	if jsonText == "" {
		return entities.TranslationResult{}, &entities.TranscriptionError{Message: "no response from translation model"}
	}

	var result entities.TranslationResult
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		return entities.TranslationResult{}, &entities.TranscriptionError{
			Message: fmt.Sprintf("malformed translation response: %v", err),
		}
	}
	if err := result.Validate(); err != nil {
		return entities.TranslationResult{}, &entities.TranscriptionError{
			Message: fmt.Sprintf("partial translation response: %v", err),
		}
	}

	g.logger.Info("Audio translated",
		zap.String("detectedLanguage", result.DetectedLanguage),
		zap.String("targetLanguage", targetLanguage))
	return result, nil
}

// TranslateVideo transcribes and translates the speech of a whole video
// clip. An empty string means nothing could be transcribed and is a
// valid, non-error result.
func (g *Gateway) TranslateVideo(ctx context.Context, videoPayload, mimeType, targetLanguage string) (string, error) {
	data, err := transcode.DecodeBytes(videoPayload)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Analyze the audio in this video.
1. Transcribe the spoken speech.
2. Translate the speech into %s.
3. Return ONLY the translated text as a single coherent string suitable for text-to-speech generation. Do not include timestamps or speaker labels.`, targetLanguage)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.client.Models.GenerateContent(ctx, g.translationModel, contents, nil)
	if err != nil {
		return "", &entities.TransportError{Op: "translateVideo", Err: err}
	}

	text := collectText(response)
	g.logger.Info("Video translated",
		zap.String("targetLanguage", targetLanguage),
		zap.Int("textLength", len(text)))
	return text, nil
}

// SynthesizeSpeech converts text into 24 kHz mono 16-bit PCM speech in
// transport encoding.
func (g *Gateway) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voiceName},
			},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.client.Models.GenerateContent(ctx, g.ttsModel, contents, config)
	if err != nil {
		return "", &entities.TransportError{Op: "synthesizeSpeech", Err: err}
	}

	audio := collectAudio(response)
	if len(audio) == 0 {
		return "", &entities.SynthesisError{Message: "no audio data returned from TTS model"}
	}

	g.logger.Info("Speech synthesized", zap.Int("audioBytes", len(audio)))
	return transcode.Encode(audio)
}

func collectText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text
}

func collectAudio(response *genai.GenerateContentResponse) []byte {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range response.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}
