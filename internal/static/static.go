// Package static serves files from a directory under a URL prefix.
package static

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Responder serves the bytes of files below Dir for request paths that
// start with Prefix. Resolved paths are canonicalized and must stay
// inside Dir; anything else is treated as not found rather than served.
type Responder struct {
	Prefix string
	Dir    string
}

// New creates a responder for the (urlPrefix, directory) pair.
func New(urlPrefix, dir string) *Responder {
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Responder{Prefix: urlPrefix, Dir: dir}
}

// Matches reports whether the responder should handle the request path.
func (s *Responder) Matches(urlPath string) bool {
	return strings.HasPrefix(urlPath, s.Prefix)
}

// ServeHTTP strips the prefix, joins the remainder onto the directory,
// and writes the file's bytes with a content type derived from the file
// extension and an explicit Content-Length. Missing or irregular files
// (directories, devices) and traversal attempts get 404; other read
// failures get 500.
func (s *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, s.Prefix), "/")
	path, ok := s.resolve(rel)
	if !ok {
		http.NotFound(w, r)
		return
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// resolve joins rel onto the base directory and verifies the result
// stays inside it.
func (s *Responder) resolve(rel string) (string, bool) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", false
	}
	return filepath.Join(s.Dir, clean), true
}
