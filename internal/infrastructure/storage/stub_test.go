package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubPhotoStorage_Upload(t *testing.T) {
	s := NewStubPhotoStorage()
	ctx := context.Background()

	t.Run("stores bytes under the key", func(t *testing.T) {
		err := s.Upload(ctx, "custody/abc/photo-1.jpg", []byte("jpeg-bytes"), "image/jpeg")
		require.NoError(t, err)

		data, ok := s.Object("custody/abc/photo-1.jpg")
		require.True(t, ok)
		assert.Equal(t, []byte("jpeg-bytes"), data)
	})

	t.Run("empty key returns error", func(t *testing.T) {
		err := s.Upload(ctx, "", []byte("x"), "image/jpeg")
		require.Error(t, err)
	})
}

func TestStubPhotoStorage_GenerateDownloadURL(t *testing.T) {
	s := NewStubPhotoStorage()
	ctx := context.Background()

	url, expiresAt, err := s.GenerateDownloadURL(ctx, "custody/abc/photo-1.jpg", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://storage.example.com/download/custody/abc/photo-1.jpg"))
	assert.True(t, expiresAt.After(time.Now()))

	_, _, err = s.GenerateDownloadURL(ctx, "", 15*time.Minute)
	require.Error(t, err)
}
