package api

import "time"

// SessionResponse represents the response payload for session creation
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ClientID  string    `json:"client_id"`
}

// LanguagesResponse mirrors the catalog advertised over the websocket
type LanguagesResponse struct {
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

// LimitsResponse advertises the upload limits enforced by the server
type LimitsResponse struct {
	MaxUploadMB         int `json:"max_upload_mb"`
	MaxVideoDurationSec int `json:"max_video_duration_sec"`
	SampleRate          int `json:"sample_rate"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
