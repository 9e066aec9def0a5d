// Package preview serves a built destination directory over HTTP for local
// review. It never rebuilds; run a build first.
package preview

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// NotFoundPage is served with status 404 when present in the site root.
const NotFoundPage = "404.html"

// NewHandler returns a router serving the site in root with clean URLs:
// /about serves about.html and /blog/ serves blog/index.html.
func NewHandler(root string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &site{root: root}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/*", s.serve)
	r.Head("/*", s.serve)
	return r
}

type site struct {
	root string
}

func (s *site) serve(w http.ResponseWriter, r *http.Request) {
	file, ok := s.resolve(r.URL.Path)
	if !ok {
		s.notFound(w, r)
		return
	}
	s.serveFile(w, r, file, http.StatusOK)
}

// resolve maps a URL path onto a file below root.
func (s *site) resolve(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	target := filepath.Join(s.root, filepath.FromSlash(clean))

	info, err := os.Stat(target)
	switch {
	case err == nil && info.IsDir():
		return isFile(filepath.Join(target, "index.html"))
	case err == nil:
		return target, true
	case errors.Is(err, fs.ErrNotExist) && path.Ext(clean) == "":
		return isFile(target + ".html")
	default:
		return "", false
	}
}

func (s *site) notFound(w http.ResponseWriter, r *http.Request) {
	if page, ok := isFile(filepath.Join(s.root, NotFoundPage)); ok {
		s.serveFile(w, r, page, http.StatusNotFound)
		return
	}
	http.NotFound(w, r)
}

func (s *site) serveFile(w http.ResponseWriter, r *http.Request, file string, status int) {
	f, err := os.Open(filepath.Clean(file))
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if r.Method != http.MethodHead {
			_, _ = io.Copy(w, f)
		}
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func isFile(p string) (string, bool) {
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", false
	}
	return p, true
}

// requestLogger logs method, path, status and duration of every request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("HTTP request",
				logfields.Method(r.Method),
				logfields.Path(r.URL.Path),
				logfields.Status(status),
				slog.Duration("duration", time.Since(start)))
		})
	}
}
