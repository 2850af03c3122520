package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
	"github.com/shubhammaske12000-sudo/Translator/domain/repositories"
)

// PlaybackEngine owns the shared audio output context. The context is
// created lazily on first use; at most one playback instance is live at
// a time, and starting a new one always stops the prior one first.
type PlaybackEngine struct {
	opener     repositories.AudioOutputOpener
	sampleRate int
	logger     *zap.Logger

	mu      sync.Mutex
	output  repositories.AudioOutput
	current repositories.ActivePlayback
}

func NewPlaybackEngine(opener repositories.AudioOutputOpener, sampleRate int, logger *zap.Logger) *PlaybackEngine {
	return &PlaybackEngine{opener: opener, sampleRate: sampleRate, logger: logger}
}

func (e *PlaybackEngine) ensureOutput() (repositories.AudioOutput, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.output == nil {
		out, err := e.opener.Open(e.sampleRate)
		if err != nil {
			return nil, err
		}
		e.output = out
		e.logger.Info("audio output context opened", zap.Int("sampleRate", e.sampleRate))
	}
	return e.output, nil
}

// Play starts the buffer from offset 0 and blocks until playback
// reaches the end naturally, the playback is stopped from elsewhere, or
// the context is cancelled.
func (e *PlaybackEngine) Play(ctx context.Context, buffer *entities.PlayableBuffer) error {
	playback, err := e.start(buffer, 0)
	if err != nil {
		return err
	}

	select {
	case <-playback.Done():
		e.clear(playback)
		return nil
	case <-ctx.Done():
		e.Stop()
		return ctx.Err()
	}
}

// StartAt begins playback at the given offset without waiting for
// completion. The dub flow uses it to align audio with an external
// video timeline.
func (e *PlaybackEngine) StartAt(buffer *entities.PlayableBuffer, offset time.Duration) error {
	_, err := e.start(buffer, offset)
	return err
}

func (e *PlaybackEngine) start(buffer *entities.PlayableBuffer, offset time.Duration) (repositories.ActivePlayback, error) {
	output, err := e.ensureOutput()
	if err != nil {
		return nil, err
	}

	// Retire any prior instance before the new one goes live.
	e.Stop()

	playback, err := output.Start(buffer, offset)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.current = playback
	e.mu.Unlock()
	return playback, nil
}

// Stop halts active playback immediately. Calling it when nothing is
// playing is a no-op.
func (e *PlaybackEngine) Stop() {
	e.mu.Lock()
	playback := e.current
	e.current = nil
	e.mu.Unlock()

	if playback != nil {
		playback.Stop()
	}
}

// Playing reports whether a playback instance is live.
func (e *PlaybackEngine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

func (e *PlaybackEngine) clear(playback repositories.ActivePlayback) {
	e.mu.Lock()
	if e.current == playback {
		e.current = nil
	}
	e.mu.Unlock()
}
