package entities

import "time"

// VideoAsset is an uploaded clip that passed size and duration
// validation. Rejected uploads never become a VideoAsset.
type VideoAsset struct {
	Data       []byte
	MimeType   string
	Duration   time.Duration
	PreviewURL string
}

// Size returns the byte size of the underlying file.
func (a *VideoAsset) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}
