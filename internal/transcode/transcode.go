// Package transcode converts captured media between raw bytes, the
// text-safe transport encoding used by the remote gateway, and decoded
// playable audio.
package transcode

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
)

// TargetSampleRate is the rate the synthesis service always emits.
// The decode contract is bit-exact, not auto-detected.
const TargetSampleRate = 24000

const sampleWidth = 2 // 16-bit signed little-endian, mono

// Encode converts a captured blob into the transport encoding. Every
// byte round-trips exactly through Decode of the raw payload.
func Encode(blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", &entities.EncodingError{Message: "cannot encode an empty blob"}
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecodeBytes reverses Encode.
func DecodeBytes(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &entities.DecodingError{Message: fmt.Sprintf("malformed transport payload: %v", err)}
	}
	return data, nil
}

// Decode interprets a transport payload as headerless linear PCM
// (16-bit signed little-endian, single channel) sampled at sampleRate
// and produces a ready-to-play buffer at that exact rate.
func Decode(payload string, sampleRate int) (*entities.PlayableBuffer, error) {
	if sampleRate <= 0 {
		return nil, &entities.DecodingError{Message: fmt.Sprintf("invalid sample rate %d", sampleRate)}
	}

	data, err := DecodeBytes(payload)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &entities.DecodingError{Message: "synthesized payload is empty"}
	}
	if len(data)%sampleWidth != 0 {
		return nil, &entities.DecodingError{
			Message: fmt.Sprintf("payload length %d is not a whole multiple of the %d-byte sample width", len(data), sampleWidth),
		}
	}

	samples := make([]float32, len(data)/sampleWidth)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(data[i*sampleWidth:]))
		samples[i] = float32(s) / 32768.0
	}

	return &entities.PlayableBuffer{Samples: samples, SampleRate: sampleRate}, nil
}

// EncodeSamples reverses the sample conversion of Decode, rendering
// normalized samples back to 16-bit signed little-endian PCM bytes.
// Values outside [-1, 1] are clipped.
func EncodeSamples(samples []float32) []byte {
	data := make([]byte, len(samples)*sampleWidth)
	for i, sample := range samples {
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		v := int16(sample * 32767)
		binary.LittleEndian.PutUint16(data[i*sampleWidth:], uint16(v))
	}
	return data
}
