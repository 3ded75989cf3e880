// Package router provides exact-match request routing keyed on
// (method, path). No wildcards, path parameters, or query involvement —
// query and body parsing happen in the HTTP layer and reach handlers as
// values.
package router

import (
	"net/http"
	"net/url"
	"strings"
)

// Handler handles one matched request. params carries the parsed query
// string for GET-style routes or the parsed form body for POST-style
// routes.
type Handler func(w http.ResponseWriter, r *http.Request, params url.Values)

type routeKey struct {
	method string
	path   string
}

// Router maps (method, path) pairs to handlers. Methods match
// case-insensitively; paths match exactly. Registration is not safe for
// concurrent use with matching — register all routes before serving.
type Router struct {
	routes map[routeKey]Handler
}

// New creates an empty router.
func New() *Router {
	return &Router{routes: make(map[routeKey]Handler)}
}

// Add registers a handler for an exact (method, path) pair. The last
// registration for the same pair wins.
func (rt *Router) Add(method, path string, h Handler) {
	rt.routes[routeKey{method: strings.ToUpper(method), path: path}] = h
}

// Match looks up the handler for a (method, path) pair. The second
// return value is false when no handler is registered; callers turn
// that into a 404.
func (rt *Router) Match(method, path string) (Handler, bool) {
	h, ok := rt.routes[routeKey{method: strings.ToUpper(method), path: path}]
	return h, ok
}
