package media

import (
	"sync"
	"time"

	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
	"github.com/shubhammaske12000-sudo/Translator/domain/repositories"
)

// MemoryOutputOpener opens MemoryAudioOutput instances. It satisfies
// AudioOutputOpener so the playback engine can create its sink lazily.
type MemoryOutputOpener struct {
	// Sink receives every started buffer, for bridging samples to a
	// real consumer such as the websocket layer. May be nil.
	Sink func(buffer *entities.PlayableBuffer, offset time.Duration)
}

var _ repositories.AudioOutputOpener = (*MemoryOutputOpener)(nil)

// NewMemoryOutputOpener creates a new in-memory output opener.
func NewMemoryOutputOpener() *MemoryOutputOpener {
	return &MemoryOutputOpener{}
}

// Open creates an audio output clocked at the given sample rate.
func (o *MemoryOutputOpener) Open(sampleRate int) (repositories.AudioOutput, error) {
	return &MemoryAudioOutput{sampleRate: sampleRate, sink: o.Sink}, nil
}

// MemoryAudioOutput plays buffers against the wall clock: an instance
// finishes after the buffer's remaining duration has elapsed. No audio
// hardware is involved.
type MemoryAudioOutput struct {
	sampleRate int
	sink       func(buffer *entities.PlayableBuffer, offset time.Duration)
}

var _ repositories.AudioOutput = (*MemoryAudioOutput)(nil)

// Start begins playback of buffer at the given offset into it.
func (m *MemoryAudioOutput) Start(buffer *entities.PlayableBuffer, offset time.Duration) (repositories.ActivePlayback, error) {
	if m.sink != nil {
		m.sink(buffer, offset)
	}

	remaining := buffer.Duration() - offset
	if remaining < 0 {
		remaining = 0
	}

	instance := &memoryPlayback{done: make(chan struct{})}
	instance.timer = time.AfterFunc(remaining, instance.finish)
	return instance, nil
}

type memoryPlayback struct {
	timer *time.Timer
	done  chan struct{}
	once  sync.Once
}

func (p *memoryPlayback) Done() <-chan struct{} {
	return p.done
}

func (p *memoryPlayback) Stop() {
	p.timer.Stop()
	p.finish()
}

func (p *memoryPlayback) finish() {
	p.once.Do(func() { close(p.done) })
}
