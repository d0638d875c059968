package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		wantErr     bool
	}{
		{"image/png", MediaImage, false},
		{"image/jpeg; charset=binary", MediaImage, false},
		{"video/mp4", MediaVideo, false},
		{"application/pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := MediaType(tt.contentType)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedMedia, tt.contentType)
			continue
		}
		require.NoError(t, err, tt.contentType)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewKeyKeepsExtension(t *testing.T) {
	key := NewKey("Holiday.JPG")
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, NewKey("Holiday.JPG"))
}

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads/")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "abc.png", strings.NewReader("data"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", url)

	b, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "../../etc/passwd", strings.NewReader("x"), "")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/passwd", url)
	_, err = os.Stat(filepath.Join(dir, "passwd"))
	assert.NoError(t, err)
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}
