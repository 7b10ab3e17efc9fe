// Package server serves the repository's files over HTTP for local testing.
package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// IndexFile is served for requests to the root path.
const IndexFile = "index.html"

var contentTypes = map[string]string{
	".html": "text/html",
	".js":   "text/javascript",
	".json": "application/json",
	".css":  "text/css",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

// ContentType returns the content type for a file name, falling back to text/plain.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "text/plain"
}

// Static serves files relative to a root directory.
type Static struct {
	root   string
	logger *zap.Logger
}

// NewStatic creates a Static server for root.
func NewStatic(root string, logger *zap.Logger) (*Static, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	return &Static{root: abs, logger: logger}, nil
}

// Handler returns the router serving every GET request from the root.
func (s *Static) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/*", s.serveFile)
	return r
}

func (s *Static) serveFile(w http.ResponseWriter, r *http.Request) {
	pathname := r.URL.Path
	if pathname == "" || pathname == "/" {
		pathname = "/" + IndexFile
	}

	filePath := filepath.Join(s.root, filepath.FromSlash(pathname))
	if !s.contains(filePath) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Warn("failed to read file", zap.String("path", filePath), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentType(filePath))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// contains reports whether p lies inside the root directory.
func (s *Static) contains(p string) bool {
	rel, err := filepath.Rel(s.root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (s *Static) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
