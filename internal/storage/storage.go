package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Media types reported to clients.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// ErrUnsupportedMedia is returned for content types other than images and videos.
var ErrUnsupportedMedia = errors.New("storage: unsupported media type")

// Storage persists uploaded media and returns the URL it is served from.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// MediaType maps a content type to image or video.
func MediaType(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", ErrUnsupportedMedia
	}
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return MediaImage, nil
	case strings.HasPrefix(mediaType, "video/"):
		return MediaVideo, nil
	default:
		return "", ErrUnsupportedMedia
	}
}

// NewKey returns a random object key that keeps the file extension.
func NewKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return uuid.NewString() + ext
}
