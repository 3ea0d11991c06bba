package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	custodyapp "github.com/atelier/backend/internal/application/custody"
)

// StubPhotoStorage keeps uploaded photos in memory and hands out fake
// download URLs. Used in development when no S3 credentials are configured.
type StubPhotoStorage struct {
	// BaseURL is the base for generated download URLs.
	// Defaults to "https://storage.example.com" if not set.
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubPhotoStorage creates a new StubPhotoStorage
func NewStubPhotoStorage() *StubPhotoStorage {
	return &StubPhotoStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

// Ensure StubPhotoStorage implements ObjectStorageService
var _ custodyapp.ObjectStorageService = (*StubPhotoStorage)(nil)

// Upload stores the bytes in memory under the given key
func (s *StubPhotoStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[storageKey] = buf
	return nil
}

// GenerateDownloadURL returns a fake URL for a previously uploaded key
func (s *StubPhotoStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/download/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)
	return url, expiresAt, nil
}

// Object returns the stored bytes for a key, for test assertions
func (s *StubPhotoStorage) Object(storageKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[storageKey]
	return data, ok
}
