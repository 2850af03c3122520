package media

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/shubhammaske12000-sudo/Translator/domain/repositories"
)

// MemoryPreviewStore keeps uploaded video blobs addressable by an opaque
// URL for the lifetime of the asset. Releasing the handle frees the blob,
// the in-process equivalent of revoking a browser object URL.
type MemoryPreviewStore struct {
	mu    sync.RWMutex
	blobs map[string]previewEntry
}

type previewEntry struct {
	data     []byte
	mimeType string
}

var _ repositories.PreviewStore = (*MemoryPreviewStore)(nil)

// NewMemoryPreviewStore creates an empty preview store.
func NewMemoryPreviewStore() *MemoryPreviewStore {
	return &MemoryPreviewStore{
		blobs: make(map[string]previewEntry),
	}
}

// Put stores the blob and returns its URL together with a release
// function. Release is idempotent.
func (s *MemoryPreviewStore) Put(data []byte, mimeType string) (string, func(), error) {
	if len(data) == 0 {
		return "", nil, errors.New("preview data cannot be empty")
	}

	url := "mem://preview/" + uuid.New().String()

	s.mu.Lock()
	s.blobs[url] = previewEntry{data: data, mimeType: mimeType}
	s.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.blobs, url)
			s.mu.Unlock()
		})
	}
	return url, release, nil
}

// Get returns the stored blob and mime type for url.
func (s *MemoryPreviewStore) Get(url string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.blobs[url]
	if !exists {
		return nil, "", errors.New("preview not found")
	}
	return entry.data, entry.mimeType, nil
}

// Len reports how many previews are currently held.
func (s *MemoryPreviewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
