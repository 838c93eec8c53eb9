// Package hxformecho provides Echo framework integration for hxform.
//
// Mount a form handler onto an Echo instance or group:
//
//	e := echo.New()
//	hxformecho.Mount(e, "/signup", &hxform.Handler{Build: buildSignup, Render: renderSignup})
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	hxformecho.MountGroup(g, "/signup", h)
package hxformecho

import (
	"crypto/rand"
	"fmt"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/hxform"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	key       []byte
	sensitive bool
}

// WithKey sets the state token key used when the handler has no Encoder.
// The key should be at least 32 bytes of cryptographically random data.
// If not provided, a random key is generated (suitable for development only).
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithSensitive encrypts state tokens instead of signing them.
func WithSensitive() Option {
	return func(o *options) {
		o.sensitive = true
	}
}

type router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// Mount routes GET and POST on path of an Echo instance to h and returns h.
//
//	h := hxformecho.Mount(e, "/signup", &hxform.Handler{...}, hxformecho.WithKey(key))
func Mount(e *echo.Echo, path string, h *hxform.Handler, opts ...Option) *hxform.Handler {
	return mount(e, path, h, opts)
}

// MountGroup routes GET and POST on path of an Echo group to h. This lets
// forms share middleware with the group (auth, logging, etc.).
func MountGroup(g *echo.Group, path string, h *hxform.Handler, opts ...Option) *hxform.Handler {
	return mount(g, path, h, opts)
}

func mount(r router, path string, h *hxform.Handler, opts []Option) *hxform.Handler {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if h.Encoder == nil {
		key := o.key
		if key == nil {
			key = make([]byte, 32)
			if _, err := rand.Read(key); err != nil {
				panic(fmt.Sprintf("hxformecho: failed to generate random key: %v", err))
			}
		}
		enc, err := hxform.NewEncoder(key)
		if err != nil {
			panic(fmt.Sprintf("hxformecho: %v", err))
		}
		h.Encoder = enc
	}
	if o.sensitive {
		h.Sensitive = true
	}

	wrapped := echo.WrapHandler(h)
	r.GET(path, wrapped)
	r.POST(path, wrapped)
	return h
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return hxformecho.Render(c, myTemplate())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
