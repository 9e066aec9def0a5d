package preview

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return root
}

func get(t *testing.T, h http.Handler, target string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHandler(t *testing.T) {
	root := newSite(t, map[string]string{
		"index.html":      "home",
		"about.html":      "about",
		"blog/index.html": "blog",
		"blog/first.html": "first",
		"styles.css":      "body{}",
	})
	h := NewHandler(root, nil)

	cases := []struct {
		target string
		code   int
		body   string
	}{
		{"/", http.StatusOK, "home"},
		{"/about", http.StatusOK, "about"},
		{"/about.html", http.StatusOK, "about"},
		{"/blog/", http.StatusOK, "blog"},
		{"/blog", http.StatusOK, "blog"},
		{"/blog/first", http.StatusOK, "first"},
		{"/styles.css", http.StatusOK, "body{}"},
		{"/../../etc/passwd", http.StatusNotFound, ""},
		{"/healthz", http.StatusOK, "ok"},
	}
	for _, tc := range cases {
		code, body := get(t, h, tc.target)
		assert.Equal(t, tc.code, code, tc.target)
		if tc.body != "" {
			assert.Equal(t, tc.body, body, tc.target)
		}
	}
}

func TestHandlerNotFoundPage(t *testing.T) {
	root := newSite(t, map[string]string{"index.html": "home"})
	code, _ := get(t, NewHandler(root, nil), "/missing")
	assert.Equal(t, http.StatusNotFound, code)

	require.NoError(t, os.WriteFile(filepath.Join(root, NotFoundPage), []byte("custom 404"), 0o600))
	code, body := get(t, NewHandler(root, nil), "/missing")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "custom 404", body)
}
