package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
	"github.com/shubhammaske12000-sudo/Translator/internal/transcode"
)

type dubHarness struct {
	controller *DubbingController
	gateway    *fakeGateway
	prober     *fakeProber
	previews   *fakePreviewStore
	output     *fakeAudioOutput
	events     *fakeEventSink
}

func newDubHarness(t *testing.T, gateway *fakeGateway) *dubHarness {
	t.Helper()

	prober := &fakeProber{duration: 30 * time.Second}
	previews := &fakePreviewStore{}
	output := &fakeAudioOutput{}
	events := &fakeEventSink{}
	logger := zaptest.NewLogger(t)

	playback := NewPlaybackEngine(&fakeOutputOpener{output: output}, transcode.TargetSampleRate, logger)
	controller := NewDubbingController(gateway, prober, previews, playback, events, DubbingConfig{
		MaxUploadBytes: 50 * 1024 * 1024,
		MaxDuration:    5 * time.Minute,
	}, logger)

	return &dubHarness{
		controller: controller,
		gateway:    gateway,
		prober:     prober,
		previews:   previews,
		output:     output,
		events:     events,
	}
}

var hindi = entities.LanguageOption{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"}

func acceptVideo(t *testing.T, h *dubHarness, data []byte) *entities.VideoAsset {
	t.Helper()
	asset, err := h.controller.SelectVideo(context.Background(), data, "video/mp4")
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	return asset
}

func generateDub(t *testing.T, h *dubHarness) {
	t.Helper()
	h.gateway.videoText = "Dubbed line"
	h.gateway.speechPayload = pcmPayload(t, transcode.TargetSampleRate*20)
	if err := h.controller.GenerateDub(context.Background(), hindi); err != nil {
		t.Fatalf("dub failed: %v", err)
	}
}

func TestDubbingRejectsOversizedUpload(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{})
	prior := acceptVideo(t, h, []byte("small clip"))

	big := make([]byte, 50*1024*1024+1)
	_, err := h.controller.SelectVideo(context.Background(), big, "video/mp4")

	var valErr *entities.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(valErr.Message, "50MB") {
		t.Fatalf("size error must name the limit, got %q", valErr.Message)
	}

	asset, ok := h.controller.Asset()
	if !ok || asset != prior {
		t.Fatal("rejected upload must leave the prior asset untouched")
	}
}

func TestDubbingRejectsOverlongVideoNamingDuration(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{})
	h.prober.duration = 6 * time.Minute

	_, err := h.controller.SelectVideo(context.Background(), []byte("clip"), "video/mp4")

	var valErr *entities.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(valErr.Message, "360s") {
		t.Fatalf("duration error must name the measured duration, got %q", valErr.Message)
	}
	if _, ok := h.controller.Asset(); ok {
		t.Fatal("no asset may be accepted")
	}
}

func TestDubbingNewAssetSupersedesOld(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{})
	acceptVideo(t, h, []byte("first"))
	generateDub(t, h)

	if !h.controller.OriginalMuted() {
		t.Fatal("original track must be muted once a dub exists")
	}

	acceptVideo(t, h, []byte("second"))

	if h.previews.releasedCount() != 1 {
		t.Fatal("previous preview handle must be revoked")
	}
	if h.controller.OriginalMuted() {
		t.Fatal("the dub of the previous asset must be discarded")
	}
}

func TestDubbingPipelineStagesAndReady(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{})
	acceptVideo(t, h, []byte("clip"))
	generateDub(t, h)

	want := []entities.DubStage{
		entities.DubStageAnalyzing,
		entities.DubStageTranslating,
		entities.DubStageSynthesizing,
		entities.DubStageFinalizing,
	}
	got := h.events.snapshotStages()
	if len(got) != len(want) {
		t.Fatalf("stages %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stages %v, want %v", got, want)
		}
	}
	if h.events.dubReady != 1 {
		t.Fatal("dub-ready must be announced once")
	}
	if h.gateway.lastLanguage != "Hindi" {
		t.Fatalf("unexpected target language %q", h.gateway.lastLanguage)
	}
}

func TestDubbingWithoutAsset(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{})
	if err := h.controller.GenerateDub(context.Background(), hindi); !errors.Is(err, ErrNoAsset) {
		t.Fatalf("expected ErrNoAsset, got %v", err)
	}
}

func TestDubbingEmptyTranslationFailsDescriptively(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{videoText: ""})
	acceptVideo(t, h, []byte("silent clip"))

	err := h.controller.GenerateDub(context.Background(), hindi)
	var trErr *entities.TranscriptionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TranscriptionError, got %v", err)
	}

	if _, _, speech := h.gateway.counts(); speech != 0 {
		t.Fatal("synthesis must not run when nothing was transcribed")
	}
	if h.controller.OriginalMuted() {
		t.Fatal("no dub buffer may exist after a failed pipeline")
	}
	if _, ok := h.controller.Asset(); !ok {
		t.Fatal("the asset stays selected after a failed dub")
	}
}

func TestDubAudioStartsAtVideoPlayhead(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{})
	acceptVideo(t, h, []byte("clip"))
	generateDub(t, h)

	if err := h.controller.OnVideoPlay(12 * time.Second); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if h.output.startCount() != 1 {
		t.Fatalf("expected one dub playback, got %d", h.output.startCount())
	}
	if got := h.output.lastStart().offset; got != 12*time.Second {
		t.Fatalf("dub audio started at %s, want 12s", got)
	}
}

func TestDubAudioRestartRetiresPriorInstance(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{})
	acceptVideo(t, h, []byte("clip"))
	generateDub(t, h)

	if err := h.controller.OnVideoPlay(0); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if err := h.controller.OnVideoPlay(4 * time.Second); err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if !h.output.plays[0].wasStopped() {
		t.Fatal("the prior dub instance must be stopped first")
	}
}

func TestSeekWhilePlayingResyncsAtNewOffset(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{})
	acceptVideo(t, h, []byte("clip"))
	generateDub(t, h)

	if err := h.controller.OnVideoPlay(2 * time.Second); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	h.controller.OnSeekStart()
	if !h.output.plays[0].wasStopped() {
		t.Fatal("seek start must silence dub audio")
	}

	if err := h.controller.OnSeekEnd(9*time.Second, true); err != nil {
		t.Fatalf("seek end failed: %v", err)
	}
	if got := h.output.lastStart().offset; got != 9*time.Second {
		t.Fatalf("dub audio resumed at %s, want 9s", got)
	}
}

func TestSeekWhilePausedDoesNotStartAudio(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{})
	acceptVideo(t, h, []byte("clip"))
	generateDub(t, h)

	h.controller.OnSeekStart()
	if err := h.controller.OnSeekEnd(9*time.Second, false); err != nil {
		t.Fatalf("seek end failed: %v", err)
	}

	if h.output.startCount() != 0 {
		t.Fatal("seeking while paused must not start dub audio")
	}
}

func TestVideoPlayWithoutDubIsSilent(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{})
	acceptVideo(t, h, []byte("clip"))

	if err := h.controller.OnVideoPlay(5 * time.Second); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if h.output.startCount() != 0 {
		t.Fatal("no dub audio may play before a dub exists")
	}
	if h.controller.OriginalMuted() {
		t.Fatal("original track plays normally before a dub exists")
	}
}

func TestClearAssetReleasesEverything(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{})
	acceptVideo(t, h, []byte("clip"))
	generateDub(t, h)

	if err := h.controller.OnVideoPlay(0); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	h.controller.ClearAsset()

	if !h.output.plays[0].wasStopped() {
		t.Fatal("clearing the asset must stop live dub audio")
	}
	if h.previews.releasedCount() != 1 {
		t.Fatal("the preview handle must be revoked")
	}
	if _, ok := h.controller.Asset(); ok {
		t.Fatal("no asset may remain selected")
	}
}

func TestDubAudioRetiresVoicePlaybackOnSharedEngine(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{
		translateResult: entities.TranslationResult{
			DetectedLanguage: "Hindi",
			SourceText:       "नमस्ते",
			TranslatedText:   "Hello",
		},
		speechPayload: pcmPayload(t, 2400),
		videoText:     "Dubbed line",
	}
	output := &fakeAudioOutput{}
	events := &fakeEventSink{}
	logger := zaptest.NewLogger(t)

	// One engine serves both flows, so at most one playback is live.
	playback := NewPlaybackEngine(&fakeOutputOpener{output: output}, transcode.TargetSampleRate, logger)

	stream := newFakeCaptureStream([]byte("voice-bytes"))
	device := &fakeCaptureDevice{streams: []*fakeCaptureStream{stream}}
	voice := NewVoiceSessionController(NewCaptureSession(device, logger), playback, gateway, events, VoiceConfig{
		TargetLanguage: entities.LanguageOption{Code: "en", Name: "English", NativeName: "English"},
	}, logger)
	dubbing := NewDubbingController(gateway, &fakeProber{duration: 30 * time.Second}, &fakePreviewStore{}, playback, events, DubbingConfig{
		MaxUploadBytes: 50 * 1024 * 1024,
		MaxDuration:    5 * time.Minute,
	}, logger)

	ctx := context.Background()
	if _, err := dubbing.SelectVideo(ctx, []byte("clip"), "video/mp4"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := dubbing.GenerateDub(ctx, hindi); err != nil {
		t.Fatalf("dub failed: %v", err)
	}

	if err := voice.HandleMicTap(ctx); err != nil {
		t.Fatalf("first tap failed: %v", err)
	}
	speaking := make(chan error, 1)
	go func() {
		speaking <- voice.HandleMicTap(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for output.startCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if output.startCount() != 1 {
		t.Fatal("voice playback never started")
	}

	if err := dubbing.OnVideoPlay(5 * time.Second); err != nil {
		t.Fatalf("video play failed: %v", err)
	}

	if !output.plays[0].wasStopped() {
		t.Fatal("starting dub audio must retire the live voice playback")
	}
	if got := output.lastStart().offset; got != 5*time.Second {
		t.Fatalf("dub audio started at %s, want 5s", got)
	}

	select {
	case err := <-speaking:
		if err != nil {
			t.Fatalf("preempted voice pipeline failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("voice pipeline never resolved after being preempted")
	}
	if voice.State() != entities.StateIdle {
		t.Fatalf("expected idle voice machine, got %s", voice.State())
	}
}

// gatedVideoGateway holds TranslateVideo open until released, so the
// asset can be changed while the dub pipeline is in flight.
type gatedVideoGateway struct {
	fakeGateway
	entered chan struct{}
	release chan struct{}
}

func (g *gatedVideoGateway) TranslateVideo(ctx context.Context, payload, mimeType, targetLanguage string) (string, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.fakeGateway.TranslateVideo(ctx, payload, mimeType, targetLanguage)
}

func TestClearAssetDuringDubDropsLateResult(t *testing.T) {
	t.Parallel()

	gateway := &gatedVideoGateway{
		fakeGateway: fakeGateway{
			videoText:     "Dubbed line",
			speechPayload: pcmPayload(t, transcode.TargetSampleRate),
		},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	output := &fakeAudioOutput{}
	events := &fakeEventSink{}
	logger := zaptest.NewLogger(t)

	playback := NewPlaybackEngine(&fakeOutputOpener{output: output}, transcode.TargetSampleRate, logger)
	controller := NewDubbingController(gateway, &fakeProber{duration: 30 * time.Second}, &fakePreviewStore{}, playback, events, DubbingConfig{
		MaxUploadBytes: 50 * 1024 * 1024,
		MaxDuration:    5 * time.Minute,
	}, logger)

	ctx := context.Background()
	if _, err := controller.SelectVideo(ctx, []byte("clip"), "video/mp4"); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- controller.GenerateDub(ctx, hindi)
	}()

	<-gateway.entered
	controller.ClearAsset()
	close(gateway.release)

	if err := <-done; err != nil {
		t.Fatalf("dub failed: %v", err)
	}

	if controller.OriginalMuted() {
		t.Fatal("a dub completing after the asset was cleared must be dropped")
	}
	if events.dubReady != 0 {
		t.Fatal("no dub-ready may be announced for a cleared asset")
	}
	if err := controller.OnVideoPlay(0); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if output.startCount() != 0 {
		t.Fatal("no dub audio may exist for a cleared asset")
	}
}

func TestDiscardDubKeepsAsset(t *testing.T) {
	t.Parallel()

	h := newDubHarness(t, &fakeGateway{})
	acceptVideo(t, h, []byte("clip"))
	generateDub(t, h)

	h.controller.DiscardDub()

	if h.controller.OriginalMuted() {
		t.Fatal("discard must drop the dub buffer")
	}
	if _, ok := h.controller.Asset(); !ok {
		t.Fatal("discard must keep the selected asset")
	}
}
