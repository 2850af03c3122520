package usecase

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
	"github.com/shubhammaske12000-sudo/Translator/domain/repositories"
	"github.com/shubhammaske12000-sudo/Translator/internal/transcode"
)

// ErrNotIdle is returned when an operation is only permitted while the
// session rests in the idle state.
var ErrNotIdle = errors.New("session is not idle")

// VoiceConfig carries the externally supplied constants of the live
// voice flow.
type VoiceConfig struct {
	SampleRate      int
	CaptureMimeType string
	TargetLanguage  entities.LanguageOption
}

// VoiceSessionController drives the live-translate flow:
// idle -> recording -> processing -> speaking -> idle. It coordinates
// the capture session, the transcoder, the remote gateway and the
// playback engine, and always returns to idle after a failure.
type VoiceSessionController struct {
	capture  *CaptureSession
	playback *PlaybackEngine
	gateway  repositories.TranslationGateway
	events   repositories.EventSink
	logger   *zap.Logger
	cfg      VoiceConfig

	mu       sync.Mutex
	state    entities.SessionState
	starting bool
	target   entities.LanguageOption
	result   *entities.TranslationResult
}

func NewVoiceSessionController(
	capture *CaptureSession,
	playback *PlaybackEngine,
	gateway repositories.TranslationGateway,
	events repositories.EventSink,
	cfg VoiceConfig,
	logger *zap.Logger,
) *VoiceSessionController {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = transcode.TargetSampleRate
	}
	if cfg.CaptureMimeType == "" {
		cfg.CaptureMimeType = "audio/webm"
	}
	return &VoiceSessionController{
		capture:  capture,
		playback: playback,
		gateway:  gateway,
		events:   events,
		logger:   logger,
		cfg:      cfg,
		state:    entities.StateIdle,
		target:   cfg.TargetLanguage,
	}
}

// State returns the current machine state.
func (c *VoiceSessionController) State() entities.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the most recent completed translation, if any.
func (c *VoiceSessionController) Result() (entities.TranslationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return entities.TranslationResult{}, false
	}
	return *c.result, true
}

// TargetLanguage returns the currently selected target language.
func (c *VoiceSessionController) TargetLanguage() entities.LanguageOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// SetTargetLanguage changes the target language. Only permitted while
// the session is idle.
func (c *VoiceSessionController) SetTargetLanguage(lang entities.LanguageOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != entities.StateIdle {
		return ErrNotIdle
	}
	c.target = lang
	return nil
}

// HandleMicTap processes one tap of the microphone control. Tapping
// while idle starts recording; tapping while recording stops it and
// runs the translate/speak pipeline to completion. Taps during
// processing or speaking are ignored. Taps are dispatched concurrently,
// so each transition is claimed atomically before its work begins and
// concurrent taps lose the claim instead of double-driving the machine.
func (c *VoiceSessionController) HandleMicTap(ctx context.Context) error {
	if c.begin(entities.StateRecording, entities.StateProcessing) {
		return c.processRecording(ctx)
	}
	return c.startRecording(ctx)
}

func (c *VoiceSessionController) startRecording(ctx context.Context) error {
	// The state only advances once microphone access has resolved, so
	// the claim is a flag rather than a visible transition.
	c.mu.Lock()
	if c.state != entities.StateIdle || c.starting {
		state := c.state
		c.mu.Unlock()
		c.logger.Debug("mic tap ignored", zap.String("state", string(state)))
		return nil
	}
	c.starting = true
	c.mu.Unlock()

	err := c.capture.Start(ctx)

	c.mu.Lock()
	c.starting = false
	if err != nil {
		c.mu.Unlock()
		c.events.SessionError(err)
		return err
	}
	c.state = entities.StateRecording
	c.mu.Unlock()
	c.events.StateChanged(entities.StateRecording)
	return nil
}

// processRecording runs with the recording -> processing transition
// already claimed by the caller.
func (c *VoiceSessionController) processRecording(ctx context.Context) error {
	blob, err := c.capture.Stop(ctx)
	if err != nil {
		return c.fail(err)
	}

	payload, err := transcode.Encode(blob)
	if err != nil {
		return c.fail(err)
	}

	result, err := c.gateway.TranslateAudio(ctx, payload, c.cfg.CaptureMimeType, c.TargetLanguage().Name)
	if err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	c.result = &result
	c.mu.Unlock()
	c.events.TranslationReady(result)

	if result.TranslatedText == "" {
		// Nothing to synthesize; rest without speaking.
		c.setState(entities.StateIdle)
		return nil
	}

	c.setState(entities.StateSpeaking)
	if err := c.speak(ctx, result.TranslatedText); err != nil {
		return c.fail(err)
	}

	c.setState(entities.StateIdle)
	return nil
}

// Replay re-synthesizes the stored translated text without recording or
// translating again. A replay with no prior result, or outside idle, is
// a no-op.
func (c *VoiceSessionController) Replay(ctx context.Context) error {
	c.mu.Lock()
	if c.state != entities.StateIdle || c.starting || c.result == nil || c.result.TranslatedText == "" {
		c.mu.Unlock()
		return nil
	}
	text := c.result.TranslatedText
	c.state = entities.StateSpeaking
	c.mu.Unlock()
	c.events.StateChanged(entities.StateSpeaking)

	if err := c.speak(ctx, text); err != nil {
		return c.fail(err)
	}
	c.setState(entities.StateIdle)
	return nil
}

func (c *VoiceSessionController) speak(ctx context.Context, text string) error {
	payload, err := c.gateway.SynthesizeSpeech(ctx, text)
	if err != nil {
		return err
	}

	buffer, err := transcode.Decode(payload, c.cfg.SampleRate)
	if err != nil {
		return err
	}

	return c.playback.Play(ctx, buffer)
}

// Abandon releases every held resource and returns the machine to
// idle. Used when the session surface goes away mid-flow.
func (c *VoiceSessionController) Abandon() {
	c.capture.Abandon()
	c.playback.Stop()
	c.setState(entities.StateIdle)
}

// fail surfaces the error, releases resources and forces the machine
// back to idle. The machine never rests in a non-idle state after a
// failure.
func (c *VoiceSessionController) fail(err error) error {
	c.logger.Warn("voice pipeline failed", zap.Error(err))
	c.events.SessionError(err)
	c.capture.Abandon()
	c.playback.Stop()
	c.setState(entities.StateIdle)
	return err
}

// begin atomically claims the from -> to transition. It reports false
// without side effects when the machine is not in from.
func (c *VoiceSessionController) begin(from, to entities.SessionState) bool {
	c.mu.Lock()
	if c.state != from {
		c.mu.Unlock()
		return false
	}
	c.state = to
	c.mu.Unlock()

	c.events.StateChanged(to)
	return true
}

func (c *VoiceSessionController) setState(state entities.SessionState) {
	c.mu.Lock()
	if c.state == state {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.mu.Unlock()

	c.events.StateChanged(state)
}
