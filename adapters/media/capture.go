// Package media provides in-memory implementations of the capture,
// playback, probing and preview ports. They back the demo client and
// tests, and the websocket layer feeds them from a connected browser.
package media

import (
	"context"
	"errors"
	"sync"

	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
	"github.com/shubhammaske12000-sudo/Translator/domain/repositories"
)

// MemoryCaptureDevice is an in-process CaptureDevice fed by PushChunk.
// The websocket hub pushes browser microphone chunks into it, and the
// demo client pushes canned audio.
type MemoryCaptureDevice struct {
	mu     sync.Mutex
	stream *memoryCaptureStream
	denied bool
}

var _ repositories.CaptureDevice = (*MemoryCaptureDevice)(nil)

// NewMemoryCaptureDevice creates a new in-memory capture device.
func NewMemoryCaptureDevice() *MemoryCaptureDevice {
	return &MemoryCaptureDevice{}
}

// Deny makes subsequent Start calls fail with a permission error,
// mirroring a user rejecting the microphone prompt.
func (d *MemoryCaptureDevice) Deny(denied bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.denied = denied
}

// Start opens a capture stream. Only one stream is open at a time; a
// second Start retires the previous stream.
func (d *MemoryCaptureDevice) Start(ctx context.Context) (repositories.CaptureStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.denied {
		return nil, &entities.PermissionError{Err: errors.New("capture permission rejected")}
	}

	if d.stream != nil {
		d.stream.close()
	}

	d.stream = &memoryCaptureStream{
		chunks: make(chan []byte, 64),
	}
	return d.stream, nil
}

// PushChunk appends captured bytes to the open stream. Chunks pushed
// while no stream is open are dropped.
func (d *MemoryCaptureDevice) PushChunk(chunk []byte) {
	d.mu.Lock()
	stream := d.stream
	d.mu.Unlock()

	if stream != nil {
		stream.push(chunk)
	}
}

// EndStream closes the open stream from the producer side, for when the
// browser reports that recording has finished.
func (d *MemoryCaptureDevice) EndStream() {
	d.mu.Lock()
	stream := d.stream
	d.stream = nil
	d.mu.Unlock()

	if stream != nil {
		stream.close()
	}
}

type memoryCaptureStream struct {
	mu     sync.Mutex
	chunks chan []byte
	closed bool
}

func (s *memoryCaptureStream) Chunks() <-chan []byte {
	return s.chunks
}

func (s *memoryCaptureStream) Stop() error {
	s.close()
	return nil
}

func (s *memoryCaptureStream) push(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	copied := make([]byte, len(chunk))
	copy(copied, chunk)
	select {
	case s.chunks <- copied:
	default:
		// Consumer fell behind; drop rather than block the producer.
	}
}

func (s *memoryCaptureStream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.chunks)
	}
}
