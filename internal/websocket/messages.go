package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Client to server message types
const (
	MessageTypeMicTap      MessageType = "mic_tap"
	MessageTypeCaptureEnd  MessageType = "capture_end"
	MessageTypeSetLanguage MessageType = "set_language"
	MessageTypeReplay      MessageType = "replay"
	MessageTypeVideoMeta   MessageType = "video_meta"
	MessageTypeVideoEvent  MessageType = "video_event"
	MessageTypeGenerateDub MessageType = "generate_dub"
	MessageTypeDiscardDub  MessageType = "discard_dub"
	MessageTypeClearAsset  MessageType = "clear_asset"
	MessageTypePing        MessageType = "ping"
)

// Server to client message types
const (
	MessageTypeState         MessageType = "state"
	MessageTypeTranslation   MessageType = "translation"
	MessageTypeDubProgress   MessageType = "dub_progress"
	MessageTypeDubReady      MessageType = "dub_ready"
	MessageTypeVideoAccepted MessageType = "video_accepted"
	MessageTypeLanguages     MessageType = "languages"
	MessageTypeAudioStart    MessageType = "audio_start"
	MessageTypeAudioEnd      MessageType = "audio_end"
	MessageTypeError         MessageType = "error"
	MessageTypePong          MessageType = "pong"
)

// Video timeline actions reported by the client player.
const (
	VideoActionPlay      = "play"
	VideoActionPause     = "pause"
	VideoActionSeekStart = "seek_start"
	VideoActionSeekEnd   = "seek_end"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// SetLanguageMessage selects the translation target for the voice session
type SetLanguageMessage struct {
	BaseMessage
	Language string `json:"language"`
}

// VideoMetaMessage announces a video upload. The binary frame that
// follows it carries the clip bytes.
type VideoMetaMessage struct {
	BaseMessage
	MimeType    string  `json:"mime_type"`
	SizeBytes   int64   `json:"size_bytes"`
	DurationSec float64 `json:"duration_sec"`
}

// VideoEventMessage reports a timeline event from the client's video player
type VideoEventMessage struct {
	BaseMessage
	Action      string  `json:"action"`
	PositionSec float64 `json:"position_sec"`
	Playing     bool    `json:"playing,omitempty"`
}

// GenerateDubMessage requests dub generation for the accepted video
type GenerateDubMessage struct {
	BaseMessage
	Language string `json:"language"`
}

// StateMessage reports a voice session state change
type StateMessage struct {
	BaseMessage
	State string `json:"state"`
}

// TranslationMessage carries a finished voice translation
type TranslationMessage struct {
	BaseMessage
	DetectedLanguage string `json:"detected_language"`
	SourceText       string `json:"source_text"`
	TranslatedText   string `json:"translated_text"`
}

// DubProgressMessage reports the active dub pipeline stage
type DubProgressMessage struct {
	BaseMessage
	Stage string `json:"stage"`
}

// DubReadyMessage announces that dub audio is ready. The original video
// track must be muted from this point on.
type DubReadyMessage struct {
	BaseMessage
	OriginalMuted bool `json:"original_muted"`
}

// VideoAcceptedMessage confirms an upload passed validation
type VideoAcceptedMessage struct {
	BaseMessage
	PreviewURL  string  `json:"preview_url"`
	DurationSec float64 `json:"duration_sec"`
}

// LanguagesMessage advertises the language catalog on connect
type LanguagesMessage struct {
	BaseMessage
	Voice       []LanguageEntry `json:"voice"`
	Dubbing     []LanguageEntry `json:"dubbing"`
	DefaultCode string          `json:"default_code"`
}

// LanguageEntry is one catalog language
type LanguageEntry struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

// AudioStartMessage precedes a run of binary PCM frames
type AudioStartMessage struct {
	BaseMessage
	SampleRate int     `json:"sample_rate"`
	OffsetSec  float64 `json:"offset_sec"`
}

// ErrorMessage surfaces a user-visible error notification
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// PongMessage answers a ping
type PongMessage struct {
	BaseMessage
}

// MessageValidator provides validation for incoming WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage validates an incoming message and returns its typed form
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeMicTap, MessageTypeCaptureEnd, MessageTypeReplay,
		MessageTypeDiscardDub, MessageTypeClearAsset, MessageTypePing:
		return &base, nil

	case MessageTypeSetLanguage:
		var msg SetLanguageMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid set_language message: %w", err)
		}
		if msg.Language == "" {
			return nil, fmt.Errorf("language is required")
		}
		return &msg, nil

	case MessageTypeVideoMeta:
		var msg VideoMetaMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid video_meta message: %w", err)
		}
		if err := v.validateVideoMeta(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypeVideoEvent:
		var msg VideoEventMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid video_event message: %w", err)
		}
		if err := v.validateVideoEvent(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypeGenerateDub:
		var msg GenerateDubMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid generate_dub message: %w", err)
		}
		if msg.Language == "" {
			return nil, fmt.Errorf("language is required")
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

func (v *MessageValidator) validateVideoMeta(msg *VideoMetaMessage) error {
	if msg.MimeType == "" {
		return fmt.Errorf("mime_type is required")
	}
	if msg.SizeBytes <= 0 {
		return fmt.Errorf("size_bytes must be positive")
	}
	if msg.DurationSec <= 0 {
		return fmt.Errorf("duration_sec must be positive")
	}
	return nil
}

func (v *MessageValidator) validateVideoEvent(msg *VideoEventMessage) error {
	validActions := map[string]bool{
		VideoActionPlay: true, VideoActionPause: true,
		VideoActionSeekStart: true, VideoActionSeekEnd: true,
	}
	if !validActions[msg.Action] {
		return fmt.Errorf("action must be one of: play, pause, seek_start, seek_end")
	}
	if msg.PositionSec < 0 {
		return fmt.Errorf("position_sec cannot be negative")
	}
	return nil
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Code:    code,
		Message: message,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage() *PongMessage {
	return &PongMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now().Format(time.RFC3339),
		},
	}
}
