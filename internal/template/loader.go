package template

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Loader reads named templates from a base directory and caches their
// parsed programs. Programs are immutable, so the cache is safe to share
// across concurrent renders; only the per-call Context is mutable state.
//
// The base directory is explicit — the loader never consults or changes
// the process working directory.
type Loader struct {
	dir   string
	mu    sync.RWMutex
	cache map[string]Program
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, cache: make(map[string]Program)}
}

// Compile tokenizes and parses template source into a program.
func Compile(src string) (Program, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Load returns the parsed program for the named template, reading and
// compiling it on first use. Template names are relative paths inside
// the base directory; names escaping it are rejected.
func (l *Loader) Load(name string) (Program, error) {
	l.mu.RLock()
	prog, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return prog, nil
	}

	path, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newError(ErrNotFound, "no such template").withName(name)
		}
		return nil, &Error{Kind: ErrNotFound, Message: "cannot read template", Name: name, Cause: err}
	}
	prog, err = Compile(string(src))
	if err != nil {
		if te, ok := err.(*Error); ok {
			return nil, te.withName(name)
		}
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = prog
	l.mu.Unlock()
	return prog, nil
}

// Render loads the named template and renders it against ctx.
func (l *Loader) Render(name string, ctx Context) (string, error) {
	prog, err := l.Load(name)
	if err != nil {
		return "", err
	}
	out, err := Render(prog, ctx)
	if err != nil {
		if te, ok := err.(*Error); ok {
			return "", te.withName(name)
		}
		return "", err
	}
	return out, nil
}

// Invalidate drops one cached program so the next Load recompiles it.
func (l *Loader) Invalidate(name string) {
	l.mu.Lock()
	delete(l.cache, name)
	l.mu.Unlock()
}

// Reset drops every cached program.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.cache = make(map[string]Program)
	l.mu.Unlock()
}

func (l *Loader) resolve(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", newError(ErrNotFound, "template name escapes base directory").withName(name)
	}
	return filepath.Join(l.dir, clean), nil
}
