package entities

import "fmt"

// PermissionError reports that microphone access was denied or no
// capture device is available. Recording never starts when it occurs.
type PermissionError struct {
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("microphone access denied: %v", e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// ValidationError reports an upload that violates a configured limit,
// naming the limit or the measured value.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// TranscriptionError reports an empty or missing transcription result
// from the remote gateway.
type TranscriptionError struct {
	Message string
}

func (e *TranscriptionError) Error() string { return e.Message }

// SynthesisError reports an empty or missing audio payload from the
// remote speech-synthesis call.
type SynthesisError struct {
	Message string
}

func (e *SynthesisError) Error() string { return e.Message }

// EncodingError reports an unreadable or empty source passed to the
// transport encoder.
type EncodingError struct {
	Message string
}

func (e *EncodingError) Error() string { return e.Message }

// DecodingError reports a synthesized payload that cannot be turned
// into a playable buffer.
type DecodingError struct {
	Message string
}

func (e *DecodingError) Error() string { return e.Message }

// TransportError reports a remote call that was rejected or
// unreachable. Op names the gateway operation that failed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
