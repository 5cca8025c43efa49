package view

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/album-catalog/internal/album/domain"
	"github.com/AlibekovAA/album-catalog/internal/common/form"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestRenderer(t *testing.T, user string) (*Renderer, *FlashStore) {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "test", "error")
	flashes := NewFlashStore(testSecret, false, log)
	r, err := NewRenderer(flashes, func(*http.Request) (string, bool) {
		return user, user != ""
	}, log)
	require.NoError(t, err)
	return r, flashes
}

func TestRenderer_AllPagesParse(t *testing.T) {
	r, _ := newTestRenderer(t, "")
	for _, name := range []string{
		"index", "about", "history", "albums", "album", "album_form",
		"login", "register", "users", "user_form", "error",
	} {
		assert.Contains(t, r.pages, name)
	}
}

func TestRenderer_RenderEscapesAndShowsUser(t *testing.T) {
	r, _ := newTestRenderer(t, "alice")

	rec := httptest.NewRecorder()
	r.Render(rec, httptest.NewRequest(http.MethodGet, "/login", nil), http.StatusOK, "login", "Log in", struct {
		Form   form.Login
		Errors form.Errors
		Next   string
	}{
		Form:   form.Login{Username: "<script>"},
		Errors: form.Errors{"password": {"This field is required."}},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "This field is required.")
	assert.Contains(t, body, "alice")
}

func TestRenderer_RenderError(t *testing.T) {
	r, _ := newTestRenderer(t, "")

	rec := httptest.NewRecorder()
	r.RenderError(rec, httptest.NewRequest(http.MethodGet, "/album/9", nil), http.StatusNotFound, "album not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "album not found")
}

func TestFlashStore_RoundTrip(t *testing.T) {
	r, flashes := newTestRenderer(t, "")

	rec := httptest.NewRecorder()
	flashes.AddFlash(rec, httptest.NewRequest(http.MethodPost, "/album/add", nil), "success", "Album created")
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/albums", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	r.Render(rec, req, http.StatusOK, "about", "About", nil)

	assert.Contains(t, rec.Body.String(), "Album created")
	assert.NotEmpty(t, rec.Result().Cookies(), "popping flashes rewrites the cookie")
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, _ := newTestRenderer(t, "")

	rec := httptest.NewRecorder()
	r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "missing", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRenderer_RenderFlashShowsMessageImmediately(t *testing.T) {
	r, _ := newTestRenderer(t, "")

	rec := httptest.NewRecorder()
	r.RenderFlash(rec, httptest.NewRequest(http.MethodPost, "/login", nil), http.StatusOK, "login", "Log in", struct {
		Form   form.Login
		Errors form.Errors
		Next   string
	}{}, "danger", "Invalid username or password.")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "flash-danger")
	assert.Contains(t, rec.Body.String(), "Invalid username or password.")
}

func TestRenderer_AlbumWithoutReleaseDate(t *testing.T) {
	r, _ := newTestRenderer(t, "")

	rec := httptest.NewRecorder()
	r.Render(rec, httptest.NewRequest(http.MethodGet, "/album/3", nil), http.StatusOK, "album", "Untitled", struct {
		Album domain.Album
	}{domain.Album{ID: 3, Title: "Untitled"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Released")

	rec = httptest.NewRecorder()
	r.Render(rec, httptest.NewRequest(http.MethodGet, "/album/4", nil), http.StatusOK, "album", "Dated", struct {
		Album domain.Album
	}{domain.Album{ID: 4, Title: "Dated", ReleaseDate: "2020-03-04"}})
	assert.Contains(t, rec.Body.String(), "Released 2020-03-04")
}
