// Package server hosts the HTTP application: it dispatches requests to
// registered routes or the static responder, renders pages through the
// template loader, and optionally hot-reloads templates during
// development.
package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/velumweb/velum/internal/config"
	"github.com/velumweb/velum/internal/livereload"
	"github.com/velumweb/velum/internal/logging"
	"github.com/velumweb/velum/internal/router"
	"github.com/velumweb/velum/internal/static"
	"github.com/velumweb/velum/internal/template"
	"github.com/velumweb/velum/internal/watcher"
)

// Server wires the router, static responder, template loader, and
// development reload machinery behind one HTTP listener.
type Server struct {
	config  *config.Config
	logger  logging.Logger
	router  *router.Router
	statics []*static.Responder
	loader  *template.Loader

	watcher *watcher.FileWatcher
	reload  *livereload.Hub

	httpServer *http.Server
}

// New creates a server from configuration. Default routes and the
// static mount are registered here; additional routes can be added with
// Routes() before Start.
func New(cfg *config.Config, logger logging.Logger) (*Server, error) {
	s := &Server{
		config:  cfg,
		logger:  logger.WithComponent("server"),
		router:  router.New(),
		statics: []*static.Responder{static.New(cfg.Static.URLPrefix, cfg.Static.Dir)},
		loader:  template.NewLoader(cfg.Templates.Dir),
	}

	s.router.Add("GET", "/", s.handleIndex)
	s.router.Add("GET", "/hello", s.handleHello)
	s.router.Add("POST", "/whatsup", s.handleWhatsup)

	if cfg.Development.HotReload {
		fw, err := watcher.New(300*time.Millisecond, logger)
		if err != nil {
			return nil, err
		}
		fw.AddFilter(watcher.NoHiddenFilter)
		fw.AddHandler(s.handleFileChange)
		s.watcher = fw
	}
	if cfg.Development.LiveReload {
		s.reload = livereload.NewHub(logger)
	}

	return s, nil
}

// Routes exposes the router for callers that register handlers beyond
// the defaults.
func (s *Server) Routes() *router.Router {
	return s.router
}

// Static mounts an additional (urlPrefix, directory) pair.
func (s *Server) Static(urlPrefix, dir string) {
	s.statics = append(s.statics, static.New(urlPrefix, dir))
}

// Start runs the server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	if s.watcher != nil {
		if err := s.watcher.AddRecursive(s.config.Templates.Dir); err != nil {
			s.logger.Warn(ctx, err, "cannot watch template dir", "dir", s.config.Templates.Dir)
		}
		// Static changes only matter for the browser notification.
		if err := s.watcher.AddRecursive(s.config.Static.Dir); err != nil {
			s.logger.Warn(ctx, err, "cannot watch static dir", "dir", s.config.Static.Dir)
		}
		s.watcher.Start(ctx)
		defer s.watcher.Stop()
	}
	if s.reload != nil {
		go s.reload.Run(ctx)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.reload != nil {
		mux.Handle("/livereload", s.reload)
	}
	mux.HandleFunc("/", s.dispatch)

	s.httpServer = &http.Server{
		Addr:    s.config.Addr(),
		Handler: s.withRequestLogging(mux),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(shutdownCtx, err, "shutdown did not complete cleanly")
		}
	}()

	s.logger.Info(ctx, "serving", "addr", s.config.Addr(), "templates", s.config.Templates.Dir)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// dispatch is the request entry point: static responders are consulted
// first for GET requests, then the router; anything unmatched is a 404
// with no render attempted.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		for _, resp := range s.statics {
			if resp.Matches(r.URL.Path) {
				resp.ServeHTTP(w, r)
				return
			}
		}
	}

	handler, ok := s.router.Match(r.Method, r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	params, err := s.requestParams(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	handler(w, r, params)
}

// requestParams parses the query string for GET requests and the
// form-encoded body for POST requests, mirroring what handlers expect.
func (s *Server) requestParams(r *http.Request) (url.Values, error) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}
	return r.URL.Query(), nil
}

func (s *Server) handleFileChange(events []watcher.ChangeEvent) {
	for _, event := range events {
		s.logger.Debug(context.Background(), "file changed", "path", event.Path, "type", event.Type.String())
	}
	// Recompiling lazily on next load is cheaper than tracking which
	// template each event maps to.
	s.loader.Reset()
	if s.reload != nil && len(events) > 0 {
		s.reload.NotifyReload(events[0].Path)
	}
}
