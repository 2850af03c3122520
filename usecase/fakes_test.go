package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
	"github.com/shubhammaske12000-sudo/Translator/domain/repositories"
)

type fakeCaptureDevice struct {
	mu      sync.Mutex
	err     error
	streams []*fakeCaptureStream
	starts  int
}

func (d *fakeCaptureDevice) Start(ctx context.Context) (repositories.CaptureStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	d.starts++
	if len(d.streams) == 0 {
		stream := newFakeCaptureStream()
		d.streams = append(d.streams, stream)
		return stream, nil
	}
	stream := d.streams[len(d.streams)-1]
	return stream, nil
}

type fakeCaptureStream struct {
	chunks  chan []byte
	mu      sync.Mutex
	stopped int
}

func newFakeCaptureStream(chunks ...[]byte) *fakeCaptureStream {
	s := &fakeCaptureStream{chunks: make(chan []byte, 64)}
	for _, c := range chunks {
		s.chunks <- c
	}
	return s
}

func (s *fakeCaptureStream) Chunks() <-chan []byte { return s.chunks }

func (s *fakeCaptureStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped++
	if s.stopped == 1 {
		close(s.chunks)
	}
	return nil
}

func (s *fakeCaptureStream) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

type fakeOutputOpener struct {
	mu     sync.Mutex
	output *fakeAudioOutput
	err    error
	opens  int
}

func (o *fakeOutputOpener) Open(sampleRate int) (repositories.AudioOutput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	o.opens++
	if o.output == nil {
		o.output = &fakeAudioOutput{auto: true}
	}
	return o.output, nil
}

type startRecord struct {
	buffer *entities.PlayableBuffer
	offset time.Duration
}

type fakeAudioOutput struct {
	mu sync.Mutex
	// auto finishes each playback immediately.
	auto   bool
	starts []startRecord
	plays  []*fakePlayback
}

func (o *fakeAudioOutput) Start(buffer *entities.PlayableBuffer, offset time.Duration) (repositories.ActivePlayback, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.starts = append(o.starts, startRecord{buffer: buffer, offset: offset})
	p := newFakePlayback()
	o.plays = append(o.plays, p)
	if o.auto {
		p.finish()
	}
	return p, nil
}

func (o *fakeAudioOutput) startCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.starts)
}

func (o *fakeAudioOutput) lastStart() startRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.starts[len(o.starts)-1]
}

type fakePlayback struct {
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	stopped bool
}

func newFakePlayback() *fakePlayback {
	return &fakePlayback{done: make(chan struct{})}
}

func (p *fakePlayback) Done() <-chan struct{} { return p.done }

func (p *fakePlayback) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.once.Do(func() { close(p.done) })
}

func (p *fakePlayback) finish() {
	p.once.Do(func() { close(p.done) })
}

func (p *fakePlayback) wasStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

type fakeGateway struct {
	mu sync.Mutex

	translateResult entities.TranslationResult
	translateErr    error
	videoText       string
	videoErr        error
	speechPayload   string
	speechErr       error

	translateCalls int
	videoCalls     int
	speechCalls    int
	lastAudio      string
	lastLanguage   string
}

func (g *fakeGateway) TranslateAudio(ctx context.Context, payload, mimeType, targetLanguage string) (entities.TranslationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.translateCalls++
	g.lastAudio = payload
	g.lastLanguage = targetLanguage
	if g.translateErr != nil {
		return entities.TranslationResult{}, g.translateErr
	}
	return g.translateResult, nil
}

func (g *fakeGateway) TranslateVideo(ctx context.Context, payload, mimeType, targetLanguage string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.videoCalls++
	g.lastLanguage = targetLanguage
	return g.videoText, g.videoErr
}

func (g *fakeGateway) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.speechCalls++
	if g.speechErr != nil {
		return "", g.speechErr
	}
	return g.speechPayload, nil
}

func (g *fakeGateway) counts() (translate, video, speech int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.translateCalls, g.videoCalls, g.speechCalls
}

type fakeEventSink struct {
	mu       sync.Mutex
	states   []entities.SessionState
	errs     []error
	results  []entities.TranslationResult
	stages   []entities.DubStage
	dubReady int
}

func (s *fakeEventSink) StateChanged(state entities.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, state)
}

func (s *fakeEventSink) TranslationReady(result entities.TranslationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
}

func (s *fakeEventSink) DubProgress(stage entities.DubStage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(s.stages, stage)
}

func (s *fakeEventSink) DubReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dubReady++
}

func (s *fakeEventSink) SessionError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *fakeEventSink) snapshotStates() []entities.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.SessionState, len(s.states))
	copy(out, s.states)
	return out
}

func (s *fakeEventSink) snapshotErrors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]error, len(s.errs))
	copy(out, s.errs)
	return out
}

func (s *fakeEventSink) snapshotStages() []entities.DubStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.DubStage, len(s.stages))
	copy(out, s.stages)
	return out
}

func (s *fakeEventSink) waitState(t *testing.T, want entities.SessionState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, st := range s.snapshotStates() {
			if st == want {
				return
			}
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("state %s never observed, saw %v", want, s.snapshotStates())
}

type fakeProber struct {
	duration time.Duration
	err      error
}

func (p *fakeProber) ProbeDuration(ctx context.Context, data []byte, mimeType string) (time.Duration, error) {
	return p.duration, p.err
}

type fakePreviewStore struct {
	mu       sync.Mutex
	puts     int
	released int
}

func (s *fakePreviewStore) Put(data []byte, mimeType string) (string, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	url := fmt.Sprintf("mem://preview/%d", s.puts)
	return url, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.released++
	}, nil
}

func (s *fakePreviewStore) releasedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
