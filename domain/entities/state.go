package entities

// SessionState models the live-voice and dubbing UI lifecycle.
// Exactly one value holds at any time; transitions are driven by user
// taps, remote-call completions, and playback completions.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateRecording  SessionState = "recording"
	StateProcessing SessionState = "processing"
	StateSpeaking   SessionState = "speaking"
)

// DubStage identifies the progress step of a running dub pipeline.
type DubStage string

const (
	DubStageAnalyzing    DubStage = "analyzing"
	DubStageTranslating  DubStage = "translating"
	DubStageSynthesizing DubStage = "synthesizing"
	DubStageFinalizing   DubStage = "finalizing"
)
