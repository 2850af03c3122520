package repositories

import (
	"context"
	"time"

	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
)

// CaptureDevice grants access to the host microphone.
type CaptureDevice interface {
	// Start requests microphone access and begins capture. It returns
	// *entities.PermissionError when access is denied or no device is
	// available.
	Start(ctx context.Context) (CaptureStream, error)
}

// CaptureStream is a live microphone capture. Chunks arrive in capture
// order; the channel closes once the stream is finalized after Stop.
type CaptureStream interface {
	Chunks() <-chan []byte
	// Stop signals the capture subsystem to finalize and releases the
	// physical device. It is safe to call more than once.
	Stop() error
}

// AudioOutput is the shared audio output context. Implementations are
// created lazily by an opener because platform policy ties creation to
// a user gesture.
type AudioOutput interface {
	// Start begins playback of the buffer at the given offset and
	// returns a handle for the live instance.
	Start(buffer *entities.PlayableBuffer, offset time.Duration) (ActivePlayback, error)
}

// ActivePlayback is one live playback instance.
type ActivePlayback interface {
	// Done is closed when the instance ends, either by reaching the
	// end of the buffer naturally or by being stopped.
	Done() <-chan struct{}
	// Stop halts playback immediately. Calling it when playback has
	// already finished is a no-op.
	Stop()
}

// AudioOutputOpener creates the shared output context on first use and
// resumes it if the platform suspended it.
type AudioOutputOpener interface {
	Open(sampleRate int) (AudioOutput, error)
}

// VideoProber reads container metadata from an uploaded clip.
type VideoProber interface {
	ProbeDuration(ctx context.Context, data []byte, mimeType string) (time.Duration, error)
}

// PreviewStore issues transient object-URL-style handles backing a
// video preview surface. Release revokes the handle.
type PreviewStore interface {
	Put(data []byte, mimeType string) (url string, release func(), err error)
}
