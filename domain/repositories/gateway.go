package repositories

import (
	"context"

	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
)

// TranslationGateway abstracts the remote transcription, translation and
// speech-synthesis service. Audio and video payloads cross the wire as a
// text-safe transport encoding produced by the transcoder.
type TranslationGateway interface {
	// TranslateAudio detects the spoken language, transcribes the clip
	// and translates it into the target language. It never returns a
	// partial result.
	TranslateAudio(ctx context.Context, audioPayload, mimeType, targetLanguage string) (entities.TranslationResult, error)

	// TranslateVideo transcribes and translates the speech of a whole
	// video clip, returning translated text only. An empty string is a
	// valid result meaning nothing could be transcribed.
	TranslateVideo(ctx context.Context, videoPayload, mimeType, targetLanguage string) (string, error)

	// SynthesizeSpeech converts text into a speech payload. The output
	// is always 24 kHz mono 16-bit PCM in transport encoding.
	SynthesizeSpeech(ctx context.Context, text string) (string, error)
}
