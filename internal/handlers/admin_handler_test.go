package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/anonto42/linkup/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminServer(t *testing.T, store *memStore) *echo.Echo {
	return newTestServer(t, func(_, api *echo.Group) {
		NewAdminHandler(store, store, store, store, store).RegisterAdminRoutes(api.Group("/admin"))
		NewPostHandler(store).RegisterPostRoutes(api)
	})
}

func TestAdminSetStatus(t *testing.T) {
	store := newMemStore()
	store.addUser("root", models.RoleAdmin, models.StatusActive)
	store.addUser("bob", models.RoleUser, models.StatusActive)
	e := newAdminServer(t, store)

	rec := do(t, e, call{method: http.MethodPost, path: "/api/admin/users/root/suspend", user: "root", role: models.RoleAdmin})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, call{method: http.MethodPost, path: "/api/admin/users/ghost/ban", user: "root", role: models.RoleAdmin})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, call{
		method: http.MethodPost,
		path:   "/api/admin/users/bob/suspend",
		user:   "root",
		role:   models.RoleAdmin,
		body:   models.ModerationRequest{Reason: "spam"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.StatusSuspended, store.users["bob"].Status)

	rec = do(t, e, call{method: http.MethodPost, path: "/api/admin/users/bob/activate", user: "root", role: models.RoleAdmin})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusActive, store.users["bob"].Status)

	rec = do(t, e, call{method: http.MethodGet, path: "/api/admin/audit?limit=10", user: "root", role: models.RoleAdmin})
	require.Equal(t, http.StatusOK, rec.Code)
	actions := decode[[]models.ModerationAction](t, rec)
	require.Len(t, actions, 2)
	assert.Equal(t, models.ActionSuspendUser, actions[0].Action)
	assert.Equal(t, "spam", actions[0].Reason)
	assert.Equal(t, "bob", actions[0].TargetID)
	assert.Equal(t, models.ActionActivateUser, actions[1].Action)

	rec = do(t, e, call{method: http.MethodGet, path: "/api/admin/audit?limit=-1", user: "root", role: models.RoleAdmin})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminStatsAndDelete(t *testing.T) {
	store := newMemStore()
	store.addUser("root", models.RoleAdmin, models.StatusActive)
	store.addUser("bob", models.RoleUser, models.StatusBanned)
	e := newAdminServer(t, store)
	post := createPost(t, e, "bob", "bad post")

	rec := do(t, e, call{method: http.MethodGet, path: "/api/admin/stats", user: "root", role: models.RoleAdmin})
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.AdminStats](t, rec)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.BannedUsers)
	assert.Equal(t, int64(1), stats.TotalPosts)

	rec = do(t, e, call{method: http.MethodDelete, path: "/api/admin/posts/" + post.ID, user: "root", role: models.RoleAdmin})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, store.posts)

	rec = do(t, e, call{method: http.MethodDelete, path: "/api/admin/posts/" + post.ID, user: "root", role: models.RoleAdmin})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Len(t, store.actions, 1)
	assert.Equal(t, models.ActionDeletePost, store.actions[0].Action)

	store.failWith = errors.New("connection reset")
	rec = do(t, e, call{method: http.MethodGet, path: "/api/admin/stats", user: "root", role: models.RoleAdmin})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestStories(t *testing.T) {
	store := newMemStore()
	store.addUser("alice", models.RoleUser, models.StatusActive)
	store.addUser("bob", models.RoleUser, models.StatusActive)
	e := newTestServer(t, func(_, api *echo.Group) {
		NewStoryHandler(store).RegisterStoryRoutes(api)
	})

	rec := do(t, e, call{method: http.MethodPost, path: "/api/stories", user: "alice", body: map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, call{method: http.MethodPost, path: "/api/stories", user: "alice", body: map[string]string{"content": "sunrise"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	story := decode[models.Story](t, rec)
	assert.Equal(t, repositories.StoryTTL, story.ExpiresAt.Sub(story.CreatedAt))

	rec = do(t, e, call{method: http.MethodGet, path: "/api/stories", user: "bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.StoryView](t, rec), 1)

	rec = do(t, e, call{method: http.MethodDelete, path: "/api/stories/" + story.ID, user: "bob"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, call{method: http.MethodDelete, path: "/api/stories/" + story.ID, user: "alice"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func multipartBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)
	e := newTestServer(t, func(_, api *echo.Group) {
		NewUploadHandler(local).RegisterUploadRoutes(api)
	})

	body, contentType := multipartBody(t, "Photo.PNG", "image/png", []byte("png-bytes"))
	rec := do(t, e, call{
		method: http.MethodPost,
		path:   "/api/upload",
		user:   "alice",
		raw:    body,
		header: http.Header{echo.HeaderContentType: {contentType}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[map[string]string](t, rec)
	assert.Equal(t, storage.MediaImage, resp["type"])
	require.True(t, strings.HasPrefix(resp["url"], "http://localhost:8080/uploads/"))
	assert.True(t, strings.HasSuffix(resp["url"], ".png"))

	saved, err := os.ReadFile(filepath.Join(dir, filepath.Base(resp["url"])))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(saved))

	body, contentType = multipartBody(t, "notes.pdf", "application/pdf", []byte("%PDF"))
	rec = do(t, e, call{
		method: http.MethodPost,
		path:   "/api/upload",
		user:   "alice",
		raw:    body,
		header: http.Header{echo.HeaderContentType: {contentType}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, call{method: http.MethodPost, path: "/api/upload", user: "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	for name, tc := range map[string]struct {
		pinger Pinger
		code   int
		status string
	}{
		"up":      {stubPinger{}, http.StatusOK, "healthy"},
		"down":    {stubPinger{err: errors.New("no primary")}, http.StatusServiceUnavailable, "degraded"},
		"no ping": {nil, http.StatusOK, "healthy"},
	} {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			e.GET("/health", NewHealthHandler(tc.pinger).HealthCheck)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.status, decode[map[string]string](t, rec)["status"])
		})
	}
}

func TestStoreErrorMapping(t *testing.T) {
	e := echo.New()
	for name, tc := range map[string]struct {
		err  error
		code int
	}{
		"validation":  {&repositories.ValidationError{Fields: []string{"content"}}, http.StatusBadRequest},
		"not found":   {repositories.ErrNotFound, http.StatusNotFound},
		"ownership":   {repositories.ErrOwnership, http.StatusForbidden},
		"conflict":    {repositories.ErrConflict, http.StatusConflict},
		"aborted":     {repositories.ErrTransactionAborted, http.StatusConflict},
		"persistence": {errors.New("socket closed"), http.StatusInternalServerError},
	} {
		t.Run(name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			var herr *echo.HTTPError
			require.ErrorAs(t, storeError(c, tc.err), &herr)
			assert.Equal(t, tc.code, herr.Code)
		})
	}

	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	var herr *echo.HTTPError
	require.ErrorAs(t, deleteError(c, repositories.ErrOwnership), &herr)
	assert.Equal(t, http.StatusNotFound, herr.Code)
}
