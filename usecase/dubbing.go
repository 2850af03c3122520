package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
	"github.com/shubhammaske12000-sudo/Translator/domain/repositories"
	"github.com/shubhammaske12000-sudo/Translator/internal/pipeline"
	"github.com/shubhammaske12000-sudo/Translator/internal/transcode"
)

var (
	// ErrNoAsset is returned when the dub pipeline is triggered with no
	// accepted video.
	ErrNoAsset = errors.New("no video selected")
	// ErrDubInProgress is returned when a conflicting action arrives
	// while the dub pipeline is running.
	ErrDubInProgress = errors.New("a dub job is already running")
)

// DubbingConfig carries the externally supplied limits of the dubbing
// flow.
type DubbingConfig struct {
	MaxUploadBytes int
	MaxDuration    time.Duration
	SampleRate     int
}

// DubbingController validates uploaded videos, drives the remote
// translate-and-synthesize pipeline for the whole clip, and keeps the
// resulting dub audio aligned with an independently controlled video
// timeline at the play/pause/seek boundaries.
type DubbingController struct {
	gateway  repositories.TranslationGateway
	prober   repositories.VideoProber
	previews repositories.PreviewStore
	playback *PlaybackEngine
	events   repositories.EventSink
	logger   *zap.Logger
	cfg      DubbingConfig

	mu             sync.Mutex
	asset          *entities.VideoAsset
	releasePreview func()
	dub            *entities.PlayableBuffer
	processing     bool
}

func NewDubbingController(
	gateway repositories.TranslationGateway,
	prober repositories.VideoProber,
	previews repositories.PreviewStore,
	playback *PlaybackEngine,
	events repositories.EventSink,
	cfg DubbingConfig,
	logger *zap.Logger,
) *DubbingController {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = transcode.TargetSampleRate
	}
	return &DubbingController{
		gateway:  gateway,
		prober:   prober,
		previews: previews,
		playback: playback,
		events:   events,
		logger:   logger,
		cfg:      cfg,
	}
}

// SelectVideo validates an uploaded clip against the size and duration
// limits. A rejected upload leaves any previously accepted asset
// untouched; an accepted one supersedes it and releases its preview.
func (c *DubbingController) SelectVideo(ctx context.Context, data []byte, mimeType string) (*entities.VideoAsset, error) {
	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return nil, ErrDubInProgress
	}
	c.mu.Unlock()

	if len(data) > c.cfg.MaxUploadBytes {
		err := &entities.ValidationError{
			Message: fmt.Sprintf("file too large: max size is %dMB", c.cfg.MaxUploadBytes/(1024*1024)),
		}
		c.events.SessionError(err)
		return nil, err
	}

	duration, probeErr := c.prober.ProbeDuration(ctx, data, mimeType)
	if probeErr != nil {
		err := &entities.ValidationError{Message: fmt.Sprintf("could not read video metadata: %v", probeErr)}
		c.events.SessionError(err)
		return nil, err
	}
	if duration > c.cfg.MaxDuration {
		err := &entities.ValidationError{
			Message: fmt.Sprintf("video is too long (%.0fs): max allowed is %.0fs",
				math.Round(duration.Seconds()), c.cfg.MaxDuration.Seconds()),
		}
		c.events.SessionError(err)
		return nil, err
	}

	url, release, err := c.previews.Put(data, mimeType)
	if err != nil {
		c.events.SessionError(err)
		return nil, err
	}

	asset := &entities.VideoAsset{
		Data:       data,
		MimeType:   mimeType,
		Duration:   duration,
		PreviewURL: url,
	}

	// The new asset supersedes the old one: stop any live dub audio and
	// revoke the previous preview handle before swapping.
	c.mu.Lock()
	oldRelease := c.releasePreview
	c.asset = asset
	c.releasePreview = release
	c.dub = nil
	c.mu.Unlock()

	c.playback.Stop()
	if oldRelease != nil {
		oldRelease()
	}

	c.logger.Info("video accepted",
		zap.Int("bytes", len(data)),
		zap.String("mimeType", mimeType),
		zap.Duration("duration", duration))
	return asset, nil
}

// Asset returns the currently accepted video, if any.
func (c *DubbingController) Asset() (*entities.VideoAsset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.asset, c.asset != nil
}

// GenerateDub runs the full pipeline for the accepted clip: encode,
// translate-video, synthesize, decode. Triggered explicitly, never on
// upload.
func (c *DubbingController) GenerateDub(ctx context.Context, target entities.LanguageOption) error {
	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return ErrDubInProgress
	}
	if c.asset == nil {
		c.mu.Unlock()
		return ErrNoAsset
	}
	asset := c.asset
	c.processing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.processing = false
		c.mu.Unlock()
	}()

	jobID := uuid.NewString()
	log := c.logger.With(zap.String("jobID", jobID), zap.String("targetLanguage", target.Name))
	log.Info("dub pipeline started")

	runner := pipeline.NewRunner(log, func(name string) {
		c.events.DubProgress(entities.DubStage(name))
	})

	var (
		payload      string
		translated   string
		audioPayload string
		buffer       *entities.PlayableBuffer
	)

	err := runner.Run(ctx, "dub", []pipeline.Step{
		{
			Name: string(entities.DubStageAnalyzing),
			Run: func(context.Context) error {
				var err error
				payload, err = transcode.Encode(asset.Data)
				return err
			},
		},
		{
			Name: string(entities.DubStageTranslating),
			Run: func(ctx context.Context) error {
				var err error
				translated, err = c.gateway.TranslateVideo(ctx, payload, asset.MimeType, target.Name)
				if err != nil {
					return err
				}
				if translated == "" {
					return &entities.TranscriptionError{
						Message: "could not extract or translate speech from the video",
					}
				}
				return nil
			},
		},
		{
			Name: string(entities.DubStageSynthesizing),
			Run: func(ctx context.Context) error {
				var err error
				audioPayload, err = c.gateway.SynthesizeSpeech(ctx, translated)
				return err
			},
		},
		{
			Name: string(entities.DubStageFinalizing),
			Run: func(context.Context) error {
				var err error
				buffer, err = transcode.Decode(audioPayload, c.cfg.SampleRate)
				return err
			},
		},
	})
	if err != nil {
		log.Warn("dub pipeline failed", zap.Error(err))
		c.events.SessionError(err)
		return err
	}

	// The asset can be cleared while the pipeline runs; a dub for a
	// video that is no longer selected is dropped, not stored.
	c.mu.Lock()
	if c.asset != asset {
		c.mu.Unlock()
		log.Info("dub discarded, video no longer selected")
		return nil
	}
	c.dub = buffer
	c.mu.Unlock()

	c.events.DubReady()
	log.Info("dub pipeline completed", zap.Duration("dubDuration", buffer.Duration()))
	return nil
}

// OriginalMuted reports whether the video element's own audio track
// should be muted. Once a dub exists only the dubbed track is audible.
func (c *DubbingController) OriginalMuted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dub != nil
}

// OnVideoPlay re-establishes alignment when the video starts playing:
// dub audio restarts from an offset equal to the video playhead. Any
// previously started dub instance is stopped first.
func (c *DubbingController) OnVideoPlay(position time.Duration) error {
	c.mu.Lock()
	dub := c.dub
	c.mu.Unlock()

	if dub == nil {
		return nil
	}
	return c.playback.StartAt(dub, position)
}

// OnVideoPause stops dub audio immediately.
func (c *DubbingController) OnVideoPause() {
	c.playback.Stop()
}

// OnSeekStart silences dub audio for the duration of the seek so no
// stale-offset audio plays.
func (c *DubbingController) OnSeekStart() {
	c.playback.Stop()
}

// OnSeekEnd restarts dub audio at the settled position if the video is
// still playing. Seeking while paused does not start audio.
func (c *DubbingController) OnSeekEnd(position time.Duration, playing bool) error {
	if !playing {
		return nil
	}
	return c.OnVideoPlay(position)
}

// DiscardDub drops a completed dub, stopping any live dub audio. The
// accepted video stays selected.
func (c *DubbingController) DiscardDub() {
	c.playback.Stop()

	c.mu.Lock()
	c.dub = nil
	c.mu.Unlock()
}

// ClearAsset discards the accepted video entirely, stopping dub audio
// and revoking the preview handle.
func (c *DubbingController) ClearAsset() {
	c.playback.Stop()

	c.mu.Lock()
	release := c.releasePreview
	c.asset = nil
	c.releasePreview = nil
	c.dub = nil
	c.mu.Unlock()

	if release != nil {
		release()
	}
}
