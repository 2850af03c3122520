package media

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryProber reports video durations supplied by the uploading client.
// Browsers learn a clip's duration from its metadata before upload, so
// the websocket layer seeds the prober with the reported value and the
// dubbing controller validates against it.
type MemoryProber struct {
	mu   sync.Mutex
	next time.Duration
	set  bool
}

// NewMemoryProber creates a prober with no pending duration.
func NewMemoryProber() *MemoryProber {
	return &MemoryProber{}
}

// SetNextDuration seeds the duration for the next probe.
func (p *MemoryProber) SetNextDuration(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next = d
	p.set = true
}

// ProbeDuration returns the seeded duration. Probing without a seeded
// duration fails, matching a clip whose metadata could not be read.
func (p *MemoryProber) ProbeDuration(ctx context.Context, data []byte, mimeType string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, errors.New("empty video payload")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.set {
		return 0, errors.New("video duration unavailable")
	}
	p.set = false
	return p.next, nil
}
