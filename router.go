package oasbind

import (
	"net/http"
)

// Router is the part of a router Setup registers routes with.
// chi.Router satisfies it. Wrap a *http.ServeMux with NewServeMux.
type Router interface {
	Method(method, pattern string, h http.Handler)
	Handle(pattern string, h http.Handler)
}

// ServeMux adapts *http.ServeMux to Router.
type ServeMux struct {
	*http.ServeMux
}

// NewServeMux wraps mux, allocating one when mux is nil.
func NewServeMux(mux *http.ServeMux) ServeMux {
	if mux == nil {
		mux = http.NewServeMux()
	}
	return ServeMux{ServeMux: mux}
}

// Method registers h for method and pattern using the "METHOD /path"
// pattern syntax of http.ServeMux.
func (m ServeMux) Method(method, pattern string, h http.Handler) {
	m.ServeMux.Handle(method+" "+pattern, h)
}

// RegisterRoutes adds every non-alias route to router. Routes dispatching
// several methods are registered for all methods.
func RegisterRoutes(router Router, routes []Route) {
	for _, route := range routes {
		if route.Alias {
			continue
		}
		if route.Method == MethodAny {
			router.Handle(route.Path, route.handler)
			continue
		}
		router.Method(route.Method, route.Path, route.handler)
	}
}
