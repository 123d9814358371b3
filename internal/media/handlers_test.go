package media

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"backend-travelcompanion/internal/httpx"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes is a minimal PNG signature followed by an IHDR chunk header.
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}

func newMediaApp(t *testing.T) (*fiber.App, *Store) {
	t.Helper()
	store, _ := newStore(t)
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(nil)})
	RegisterRoutes(app.Group("/api"), store, func(c *fiber.Ctx) error { return c.Next() })
	return app, store
}

func uploadRequest(t *testing.T, kind, field, contentType, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/media/upload/"+kind, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadAndServePhoto(t *testing.T) {
	app, _ := newMediaApp(t)

	resp, err := app.Test(uploadRequest(t, "photo", "photo", "image/png", "tower.png", pngBytes))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "/api/media/photos/"+out.Filename, out.Path)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, out.Path, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	disposition, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "inline", disposition)
	assert.Equal(t, out.Filename, params["filename"])
	got, _ := io.ReadAll(resp.Body)
	assert.Equal(t, pngBytes, got)
}

func TestServeFallsBackToCategoryType(t *testing.T) {
	app, store := newMediaApp(t)
	name, err := store.Save(Audio, bytes.NewReader([]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x11}), "clip.bin")
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/media/audio/"+name, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
}

func TestUploadRejectsWrongFamily(t *testing.T) {
	app, _ := newMediaApp(t)

	resp, err := app.Test(uploadRequest(t, "photo", "photo", "text/plain", "notes.txt", []byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadRejectsEmptyOrMissingFile(t *testing.T) {
	app, _ := newMediaApp(t)

	resp, err := app.Test(uploadRequest(t, "audio", "audio", "audio/mpeg", "empty.mp3", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(uploadRequest(t, "audio", "other", "audio/mpeg", "song.mp3", []byte("id3")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(uploadRequest(t, "document", "document", "text/plain", "a.txt", []byte("x")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeMissingAndInvalid(t *testing.T) {
	app, _ := newMediaApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/media/photos/missing.png", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/media/documents/a.txt", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/media/photos/a..png", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteMedia(t *testing.T) {
	app, store := newMediaApp(t)
	name, err := store.Save(Videos, bytes.NewReader([]byte("frames")), "clip.mp4")
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/media/videos/"+name, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, _, err = store.Open(Videos, name)
	assert.Error(t, err)
}
