package handlers

import (
	"net/http"

	"github.com/anonto42/linkup/backend/internal/storage"
	"github.com/anonto42/linkup/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// MaxUploadSize is the largest accepted media file.
const MaxUploadSize = 50 << 20

// UploadHandler stores media and hands back its URL
type UploadHandler struct {
	storage storage.Storage
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(store storage.Storage) *UploadHandler {
	return &UploadHandler{storage: store}
}

// RegisterUploadRoutes registers the upload route
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/upload", h.Upload)
}

// Upload accepts one multipart "file" that is an image or a video
func (h *UploadHandler) Upload(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}
	if file.Size > MaxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
	}

	contentType := file.Header.Get(echo.HeaderContentType)
	mediaType, err := storage.MediaType(contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Only images and videos are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable file")
	}
	defer src.Close()

	ctx := c.Request().Context()
	url, err := h.storage.Save(ctx, storage.NewKey(file.Filename), src, contentType)
	if err != nil {
		if ctx.Err() != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "Upload cancelled")
		}
		logger.FromContext(ctx).Error().Err(err).Msg("media upload failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Upload failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url, "type": mediaType})
}
