package router

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedHandler(name string, record *string) Handler {
	return func(http.ResponseWriter, *http.Request, url.Values) {
		*record = name
	}
}

func TestRouterMatch(t *testing.T) {
	var called string
	rt := New()
	rt.Add("GET", "/", namedHandler("index", &called))
	rt.Add("GET", "/hello", namedHandler("hello", &called))
	rt.Add("POST", "/whatsup", namedHandler("whatsup", &called))

	tests := []struct {
		name    string
		method  string
		path    string
		want    string
		matched bool
	}{
		{name: "root", method: "GET", path: "/", want: "index", matched: true},
		{name: "exact path", method: "GET", path: "/hello", want: "hello", matched: true},
		{name: "method is case insensitive", method: "get", path: "/hello", want: "hello", matched: true},
		{name: "method distinguishes routes", method: "POST", path: "/whatsup", want: "whatsup", matched: true},
		{name: "wrong method", method: "GET", path: "/whatsup", matched: false},
		{name: "unknown path", method: "GET", path: "/nope", matched: false},
		{name: "no prefix matching", method: "GET", path: "/hello/extra", matched: false},
		{name: "path is case sensitive", method: "GET", path: "/Hello", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := rt.Match(tt.method, tt.path)
			assert.Equal(t, tt.matched, ok)
			if !tt.matched {
				return
			}
			require.NotNil(t, h)
			called = ""
			h(nil, nil, nil)
			assert.Equal(t, tt.want, called)
		})
	}
}

func TestRouterLastRegistrationWins(t *testing.T) {
	var called string
	rt := New()
	rt.Add("GET", "/", namedHandler("first", &called))
	rt.Add("GET", "/", namedHandler("second", &called))

	h, ok := rt.Match("GET", "/")
	require.True(t, ok)
	h(nil, nil, nil)
	assert.Equal(t, "second", called)
}
