package server

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/velumweb/velum/internal/template"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, _ url.Values) {
	s.renderPage(w, r, "index.html", template.Context{})
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request, params url.Values) {
	s.renderPage(w, r, "hello.html", template.Context{
		"message": params.Get("message"),
	})
}

func (s *Server) handleWhatsup(w http.ResponseWriter, r *http.Request, params url.Values) {
	s.renderPage(w, r, "whatsup.html", template.Context{
		"info": params.Get("info"),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// renderPage renders a named template with a fresh per-request context
// and writes it as HTML with an explicit Content-Length. Template
// failures become a plain 500; details go to the log, not the client.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, ctx template.Context) {
	body, err := s.loader.Render(name, ctx)
	if err != nil {
		s.logger.Error(r.Context(), err, "render failed", "template", name, "path", r.URL.Path)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	data := []byte(body)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
