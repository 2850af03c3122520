package usecase

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/shubhammaske12000-sudo/Translator/domain/repositories"
)

// ErrCaptureActive is returned when a recording is started while one is
// already in progress.
var ErrCaptureActive = errors.New("a recording session is already active")

// CaptureSession owns the microphone capture lifecycle. At most one
// recording is active per session; chunks accumulate in arrival order
// and are concatenated into a single blob on stop.
type CaptureSession struct {
	device repositories.CaptureDevice
	logger *zap.Logger

	mu     sync.Mutex
	stream repositories.CaptureStream
	chunks [][]byte
	done   chan struct{}
}

func NewCaptureSession(device repositories.CaptureDevice, logger *zap.Logger) *CaptureSession {
	return &CaptureSession{device: device, logger: logger}
}

// Start requests microphone access and begins accumulating chunks. On
// permission failure nothing changes and the error is returned as-is.
func (s *CaptureSession) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		return ErrCaptureActive
	}

	stream, err := s.device.Start(ctx)
	if err != nil {
		return err
	}

	s.stream = stream
	s.chunks = nil
	s.done = make(chan struct{})
	go s.accumulate(stream, s.done)

	s.logger.Info("capture started")
	return nil
}

func (s *CaptureSession) accumulate(stream repositories.CaptureStream, done chan struct{}) {
	defer close(done)
	for chunk := range stream.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		buf := make([]byte, len(chunk))
		copy(buf, chunk)

		s.mu.Lock()
		s.chunks = append(s.chunks, buf)
		s.mu.Unlock()
	}
}

// Active reports whether a recording is in progress.
func (s *CaptureSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream != nil
}

// Stop finalizes the capture, releases the physical device and returns
// the accumulated chunks concatenated in capture order. Stopping when
// nothing is recording is a no-op returning a nil blob.
func (s *CaptureSession) Stop(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	stream := s.stream
	done := s.done
	s.stream = nil
	s.mu.Unlock()

	if stream == nil {
		return nil, nil
	}

	stopErr := stream.Stop()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	chunks := s.chunks
	s.chunks = nil
	s.mu.Unlock()

	if stopErr != nil {
		s.logger.Warn("capture did not stop cleanly", zap.Error(stopErr))
		return nil, stopErr
	}

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	blob := make([]byte, 0, total)
	for _, c := range chunks {
		blob = append(blob, c...)
	}

	s.logger.Info("capture finalized",
		zap.Int("chunks", len(chunks)),
		zap.Int("bytes", len(blob)))
	return blob, nil
}

// Abandon discards an in-progress recording, releasing the device
// without delivering a blob. Safe to call when nothing is recording.
func (s *CaptureSession) Abandon() {
	s.mu.Lock()
	stream := s.stream
	done := s.done
	s.stream = nil
	s.chunks = nil
	s.mu.Unlock()

	if stream == nil {
		return
	}
	if err := stream.Stop(); err != nil {
		s.logger.Warn("capture did not stop cleanly on abandon", zap.Error(err))
	}
	<-done
	s.logger.Info("capture abandoned")
}
